package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"xlib-go/pkg/config"
	"xlib-go/pkg/kson"
	"xlib-go/pkg/kvstore"
	"xlib-go/pkg/log"

	"github.com/urfave/cli/v2"
)

var kvCommand = &cli.Command{
	Name:  "kv",
	Usage: "Read and modify the snapshot store",
	Description: `Each subcommand loads the snapshot file (store_path, --store), applies the
change and saves it back. A missing snapshot file starts an empty store.`,
	Subcommands: []*cli.Command{
		{
			Name:      "get",
			Usage:     "Print the value of KEY",
			ArgsUsage: "KEY",
			Action:    kvGetCmd,
		},
		{
			Name:      "set",
			Usage:     "Store VALUE under KEY",
			ArgsUsage: "KEY VALUE",
			Action:    kvSetCmd,
		},
		{
			Name:      "del",
			Usage:     "Delete KEY",
			ArgsUsage: "KEY",
			Action:    kvDelCmd,
		},
		{
			Name:  "list",
			Usage: "List keys in order",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "stats", Usage: "Print table statistics instead"},
			},
			Action: kvListCmd,
		},
		{
			Name:      "import",
			Usage:     "Store every scalar of a kson document under its dotted path",
			ArgsUsage: "[FILE]",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "prefix", Usage: "Key `PREFIX` for imported paths"},
			},
			Action: kvImportCmd,
		},
		{
			Name:   "compact",
			Usage:  "Shrink the table to fit its entries and save",
			Action: kvCompactCmd,
		},
	},
}

// openStore builds a store from cfg and loads its snapshot if there is one.
func openStore(cfg *config.Config) (*kvstore.Store, error) {
	s, err := kvstore.New(cfg.Store())
	if err != nil {
		return nil, err
	}
	if err := s.Load(cfg.StoreFile()); err != nil {
		if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, kvstore.ErrNoSnapshot) {
			return nil, err
		}
		log.Debug().Str("path", cfg.StoreFile()).Msg("no snapshot, starting empty")
	}
	return s, nil
}

func withStore(c *cli.Context, nargs int, save bool, fn func(*kvstore.Store) error) error {
	if c.NArg() != nargs {
		return cli.Exit(fmt.Sprintf("Error: expected %d argument(s), got %d.", nargs, c.NArg()), 1)
	}
	cfg := getConfig(c)
	s, err := openStore(cfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error opening store: %v", err), 1)
	}
	if err := fn(s); err != nil {
		return err
	}
	if save {
		if err := s.Save(cfg.StoreFile()); err != nil {
			return cli.Exit(fmt.Sprintf("Error saving store: %v", err), 1)
		}
	}
	return nil
}

func kvGetCmd(c *cli.Context) error {
	return withStore(c, 1, false, func(s *kvstore.Store) error {
		v, ok := s.Get(c.Args().First())
		if !ok {
			return cli.Exit(fmt.Sprintf("Error: key %q not found.", c.Args().First()), 1)
		}
		os.Stdout.Write(v)
		fmt.Println()
		return nil
	})
}

func kvSetCmd(c *cli.Context) error {
	return withStore(c, 2, true, func(s *kvstore.Store) error {
		if err := s.Set(c.Args().Get(0), []byte(c.Args().Get(1))); err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
		}
		return nil
	})
}

func kvDelCmd(c *cli.Context) error {
	return withStore(c, 1, true, func(s *kvstore.Store) error {
		if !s.Delete(c.Args().First()) {
			fmt.Fprintf(os.Stderr, "Warning: key %q was not present.\n", c.Args().First())
		}
		return nil
	})
}

func kvListCmd(c *cli.Context) error {
	return withStore(c, 0, false, func(s *kvstore.Store) error {
		if c.Bool("stats") {
			st := s.Stats()
			fmt.Printf("size=%d buckets=%d occupied=%d upper_bound=%d hash=%s\n",
				st.Size, st.Buckets, st.Occupied, st.UpperBound, st.Hash)
			return nil
		}
		for _, k := range s.Keys() {
			fmt.Println(k)
		}
		return nil
	})
}

func kvImportCmd(c *cli.Context) error {
	text, err := readInput(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error reading input: %v", err), 1)
	}
	a, err := kson.Parse(text)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error parsing kson: %v", err), 1)
	}
	defer a.Release()

	nargs := min(c.NArg(), 1)
	return withStore(c, nargs, true, func(s *kvstore.Store) error {
		n, err := s.ImportKSON(a, c.String("prefix"))
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error importing: %v", err), 1)
		}
		fmt.Printf("imported %d keys\n", n)
		return nil
	})
}

func kvCompactCmd(c *cli.Context) error {
	return withStore(c, 0, true, func(s *kvstore.Store) error {
		before := s.Stats().Buckets
		if err := s.Compact(); err != nil {
			return cli.Exit(fmt.Sprintf("Error compacting: %v", err), 1)
		}
		fmt.Printf("buckets %d -> %d\n", before, s.Stats().Buckets)
		return nil
	})
}
