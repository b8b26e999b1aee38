package main

import (
	"fmt"
	"strings"

	"xlib-go/pkg/management"

	"github.com/urfave/cli/v2"
)

var ctlCommand = &cli.Command{
	Name:      "ctl",
	Usage:     "Send a command to a running server over its management socket",
	UsageText: "xlib ctl [command [args...]]",
	Description: `Runs one management command (status, stats, get KEY, keys, save, compact,
logs [N] [pretty], help) against the server started with "xlib serve".`,
	Action: ctlCmd,
}

func ctlCmd(c *cli.Context) error {
	cfg := getConfig(c)
	if cfg.SocketFile() == "" {
		return cli.Exit("Error: management_socket is not configured.", 1)
	}
	client := management.NewClient(cfg.SocketFile(), cfg.ManagementPassword)
	res, err := client.SendCommand(strings.Join(c.Args().Slice(), " "))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	fmt.Println(res)
	return nil
}
