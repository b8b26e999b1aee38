package main

import (
	"fmt"
	"strings"

	"xlib-go/pkg/kexpr"

	"github.com/urfave/cli/v2"
)

var exprCommand = &cli.Command{
	Name:      "expr",
	Usage:     "Convert an infix expression to RPN",
	UsageText: "xlib expr [--tokens] EXPRESSION...",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "tokens",
			Aliases: []string{"t"},
			Usage:   "Print one token per line with its kind",
		},
	},
	Action: exprCmd,
}

func exprCmd(c *cli.Context) error {
	src := strings.Join(c.Args().Slice(), " ")
	if src == "" {
		return cli.Exit("Error: an expression is required.", 1)
	}
	e, err := kexpr.Parse(src)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error parsing expression: %v", err), 1)
	}
	if !c.Bool("tokens") {
		fmt.Println(e)
		return nil
	}
	for _, t := range e.Tokens {
		fmt.Printf("%-10s %s\n", t.Kind, t)
	}
	return nil
}
