package main

import (
	"fmt"

	"xlib-go/pkg/benchmark"

	"github.com/urfave/cli/v2"
)

var benchCommand = &cli.Command{
	Name:  "bench",
	Usage: "Time xhash against the built-in map and the parsers",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "target",
			Usage: "Target to run: xhash, map, kson, kexpr or all",
			Value: "all",
		},
		&cli.IntFlag{
			Name:    "rounds",
			Aliases: []string{"r"},
			Usage:   "Timed `ROUNDS` per target",
			Value:   benchmark.DefaultOptions().Rounds,
		},
		&cli.IntFlag{
			Name:    "keys",
			Aliases: []string{"n"},
			Usage:   "Keys (or document members) per round `NUMBER`",
			Value:   benchmark.DefaultOptions().Keys,
		},
		&cli.Int64Flag{
			Name:  "seed",
			Usage: "Key shuffle `SEED`",
			Value: benchmark.DefaultOptions().Seed,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Also write results as CSV to `FILE`",
		},
	},
	Action: benchCmd,
}

func benchCmd(c *cli.Context) error {
	opts := &benchmark.Options{
		Rounds: c.Int("rounds"),
		Keys:   c.Int("keys"),
		Seed:   c.Int64("seed"),
	}

	var results []*benchmark.Results
	if name := c.String("target"); name == "all" {
		results = benchmark.RunAll(opts)
	} else {
		target, err := benchmark.ParseTarget(name)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		opts.Target = target
		r, err := benchmark.Run(opts)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
		}
		results = append(results, r)
	}

	for _, r := range results {
		benchmark.PrintResults(r)
	}
	if out := c.String("output"); out != "" {
		if err := benchmark.SaveResultsToFile(results, out); err != nil {
			return cli.Exit(fmt.Sprintf("Error writing results: %v", err), 1)
		}
		fmt.Printf("Results written to %s\n", out)
	}
	return nil
}
