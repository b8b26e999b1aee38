package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"xlib-go/internal/fn"
	"xlib-go/pkg/api"
	"xlib-go/pkg/kvstore"
	"xlib-go/pkg/log"
	"xlib-go/pkg/management"

	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Serve the store and parsers over HTTP",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "listen",
			Aliases: []string{"l"},
			Usage:   "Listen `ADDRESS` (default: api_listen_address)",
		},
		&cli.DurationFlag{
			Name:  "save-every",
			Usage: "Save the snapshot every `INTERVAL`; 0 saves only on shutdown",
		},
	},
	Action: serveCmd,
}

func serveCmd(c *cli.Context) error {
	cfg := getConfig(c)
	if c.IsSet("listen") {
		cfg.APIListenAddr = c.String("listen")
	}
	store, err := openStore(cfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error opening store: %v", err), 1)
	}
	srv := api.New(store, cfg.APIListenAddr)

	if path := cfg.SocketFile(); path != "" {
		mgmt := management.NewServer(path, cfg.ManagementPassword)
		registerStoreHandlers(mgmt, store, cfg.StoreFile())
		if err := mgmt.Start(); err != nil {
			log.Warn().Err(err).Msg("management socket unavailable")
		} else {
			defer mgmt.Stop()
		}
	}

	done := make(chan struct{})
	if every := c.Duration("save-every"); every > 0 {
		go func() {
			ticker := time.NewTicker(every)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := store.Save(cfg.StoreFile()); err != nil {
						log.Error().Err(err).Msg("periodic snapshot failed")
					}
				case <-done:
					return
				}
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("shutting down gracefully")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("api shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.APIListenAddr).Str("store", cfg.StoreFile()).
		Str("snapshots", fn.T(c.Duration("save-every") > 0, "periodic", "on shutdown")).Msg("xlib server is running. Press Ctrl+C to stop.")
	runErr := srv.Run()
	close(done)
	signal.Stop(sigChan)

	if err := store.Save(cfg.StoreFile()); err != nil {
		return cli.Exit(fmt.Sprintf("Error saving store: %v", err), 1)
	}
	if runErr != nil {
		return cli.Exit(fmt.Sprintf("Error serving: %v", runErr), 1)
	}
	log.Info().Msg("xlib server has been shut down.")
	return nil
}

func registerStoreHandlers(mgmt *management.Server, store *kvstore.Store, path string) {
	mgmt.RegisterHandler("stats", "Show table statistics", func(args []string) (string, error) {
		st := store.Stats()
		return fmt.Sprintf("size=%d buckets=%d occupied=%d upper_bound=%d hash=%s",
			st.Size, st.Buckets, st.Occupied, st.UpperBound, st.Hash), nil
	})
	mgmt.RegisterHandler("get", "Print a value. Usage: get KEY", func(args []string) (string, error) {
		if len(args) != 1 {
			return "", fmt.Errorf("usage: get KEY")
		}
		v, ok := store.Get(args[0])
		if !ok {
			return "", fmt.Errorf("key %q not found", args[0])
		}
		return string(v), nil
	})
	mgmt.RegisterHandler("keys", "List keys in order", func(args []string) (string, error) {
		return strings.Join(store.Keys(), "\n"), nil
	})
	mgmt.RegisterHandler("save", "Write the snapshot now", func(args []string) (string, error) {
		if err := store.Save(path); err != nil {
			return "", err
		}
		return "OK: saved to " + path, nil
	})
	mgmt.RegisterHandler("compact", "Shrink the table to fit its entries", func(args []string) (string, error) {
		if err := store.Compact(); err != nil {
			return "", err
		}
		return fmt.Sprintf("OK: %d buckets", store.Stats().Buckets), nil
	})
}
