package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"xlib-go/pkg/kson"

	"github.com/urfave/cli/v2"
)

var ksonCommand = &cli.Command{
	Name:      "kson",
	Usage:     "Parse a kson document and print it back",
	UsageText: "xlib kson [options] [FILE]",
	Description: `Parses FILE (or stdin when FILE is absent or "-") and prints the first
top-level value in compact form. --query selects a sub-node by a dotted path
whose numeric segments index into containers.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "pretty",
			Aliases: []string{"p"},
			Usage:   "Indent output with `STRING` (e.g. \"  \")",
		},
		&cli.StringFlag{
			Name:    "query",
			Aliases: []string{"q"},
			Usage:   "Print only the node at `PATH` (e.g. servers.0.host)",
		},
		&cli.BoolFlag{
			Name:  "dot",
			Usage: "Print the node tree as a graphviz DOT graph",
		},
		&cli.StringFlag{
			Name:  "svg",
			Usage: "Render the node tree as SVG into `FILE`",
		},
	},
	Action: ksonCmd,
}

func readInput(c *cli.Context) (string, error) {
	name := c.Args().First()
	var b []byte
	var err error
	if name == "" || name == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(name)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// queryPath splits a dotted path; segments that parse as integers select by
// position.
func queryPath(q string) []any {
	if q == "" {
		return nil
	}
	var path []any
	for _, seg := range strings.Split(q, ".") {
		if i, err := strconv.Atoi(seg); err == nil {
			path = append(path, i)
		} else {
			path = append(path, seg)
		}
	}
	return path
}

func ksonCmd(c *cli.Context) error {
	text, err := readInput(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error reading input: %v", err), 1)
	}
	a, consumed, err := kson.ParseLen(text)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error parsing kson: %v", err), 1)
	}
	defer a.Release()
	if consumed < len(text) {
		fmt.Fprintf(os.Stderr, "Warning: %d trailing bytes ignored.\n", len(text)-consumed)
	}

	if q := c.String("query"); q != "" {
		i, ok := a.Query(0, queryPath(q)...)
		if !ok {
			return cli.Exit(fmt.Sprintf("Error: no node at %q", q), 1)
		}
		if n := &a.Nodes[i]; n.Kind.Container() {
			fmt.Println(a.FormatNode(i, c.String("pretty")))
		} else {
			fmt.Println(n.Text())
		}
		return nil
	}

	switch {
	case c.Bool("dot"):
		fmt.Print(a.Dot())
	case c.IsSet("svg"):
		svg, err := a.SVG(context.Background())
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error rendering svg: %v", err), 1)
		}
		if err := os.WriteFile(c.String("svg"), svg, 0644); err != nil {
			return cli.Exit(fmt.Sprintf("Error writing svg: %v", err), 1)
		}
	default:
		fmt.Println(a.Format(c.String("pretty")))
	}
	return nil
}
