package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"xlib-go/pkg/log"

	"github.com/urfave/cli/v2"
)

// timeFormats are tried in order when a time spec is not a duration.
var timeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimeSpec accepts a duration back from now ("1h", "30m") or an absolute
// timestamp in one of timeFormats.
func parseTimeSpec(spec string) (time.Time, error) {
	if d, err := time.ParseDuration(spec); err == nil {
		return time.Now().Add(-d), nil
	}
	for _, layout := range timeFormats {
		if ts, err := time.ParseInLocation(layout, spec, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time specification: '%s'. Use relative duration (e.g., '1h', '30m') or absolute format (e.g., '2023-10-27T15:04:05Z')", spec)
}

var logsCommand = &cli.Command{
	Name:      "logs",
	Usage:     "Retrieve JSON log entries from the SQLite log sink",
	UsageText: "xlib logs [-f FILE] [--last|--since|--between] [mode options]",
	Description: `Reads the log database given with -f, or log_db from the configuration.
Defaults to --last when no mode is given.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "dbfile",
			Aliases: []string{"f"},
			Usage:   "Path to the SQLite log database file `PATH`",
		},
		&cli.BoolFlag{
			Name:    "pretty",
			Aliases: []string{"p"},
			Usage:   "Print level, time and message instead of raw JSON",
		},
		&cli.BoolFlag{Name: "last", Usage: "Mode: Retrieve the most recent N log entries (default)"},
		&cli.BoolFlag{Name: "since", Usage: "Mode: Retrieve logs since a specific start time"},
		&cli.BoolFlag{Name: "between", Usage: "Mode: Retrieve logs between a specific start and end time"},
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"n"},
			Usage:   "Number of entries for --last mode `NUMBER`",
			Value:   100,
		},
		&cli.StringFlag{
			Name:    "start",
			Aliases: []string{"s"},
			Usage:   "Start time for --since/--between `TIME_SPEC` (e.g., '1h', '2023-10-27T10:00:00Z')",
		},
		&cli.StringFlag{
			Name:    "end",
			Aliases: []string{"e"},
			Usage:   "End time for --between `TIME_SPEC`",
		},
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"l"},
			Usage:   "Max entries for --since/--between `NUMBER`",
			Value:   1000,
		},
	},
	Action: logsCmd,
}

func logsCmd(c *cli.Context) error {
	dbFile := c.String("dbfile")
	if dbFile == "" {
		dbFile = getConfig(c).LogDB
	}
	if dbFile == "" {
		return cli.Exit("Error: no log database; pass -f or set log_db.", 1)
	}

	modes := 0
	for _, m := range []string{"last", "since", "between"} {
		if c.Bool(m) {
			modes++
		}
	}
	if modes > 1 {
		return cli.Exit("Error: Only one mode flag (--last, --since, --between) can be specified at a time.", 1)
	}

	// the global setup may already hold a sink; reopen on the requested file
	if err := log.Close(); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if err := log.Init(dbFile); err != nil {
		return cli.Exit(fmt.Sprintf("Error opening log database: %v", err), 1)
	}

	var results []log.LogEntry
	var err error
	switch {
	case c.Bool("since"):
		if !c.IsSet("start") {
			return cli.Exit("Error: --start (-s) flag is required for --since mode.", 1)
		}
		start, perr := parseTimeSpec(c.String("start"))
		if perr != nil {
			return cli.Exit(fmt.Sprintf("Error parsing start time: %v", perr), 1)
		}
		results, err = log.GetLogsSince(start, c.Int("limit"))
	case c.Bool("between"):
		if !c.IsSet("start") || !c.IsSet("end") {
			return cli.Exit("Error: --start (-s) and --end (-e) are required for --between mode.", 1)
		}
		start, perr := parseTimeSpec(c.String("start"))
		if perr != nil {
			return cli.Exit(fmt.Sprintf("Error parsing start time: %v", perr), 1)
		}
		end, perr := parseTimeSpec(c.String("end"))
		if perr != nil {
			return cli.Exit(fmt.Sprintf("Error parsing end time: %v", perr), 1)
		}
		if start.After(end) {
			fmt.Fprintf(os.Stderr, "Warning: Start time (%s) is after end time (%s).\n", start.Format(time.RFC3339), end.Format(time.RFC3339))
		}
		results, err = log.GetLogsBetween(start, end, c.Int("limit"))
	default:
		if c.Int("count") <= 0 {
			return cli.Exit("Error: --count (-n) must be a positive number.", 1)
		}
		results, err = log.GetLastNLogs(c.Int("count"))
	}
	if err != nil {
		if errors.Is(err, log.ErrNotInitialized) {
			return cli.Exit("Internal Error: Logger DB handle became unavailable.", 2)
		}
		return cli.Exit(fmt.Sprintf("Error retrieving logs: %v", err), 1)
	}

	if len(results) == 0 {
		fmt.Fprintln(os.Stderr, "No log entries found matching the criteria.")
		return nil
	}
	for _, e := range results {
		if c.Bool("pretty") {
			fmt.Println(prettyEntry(e))
		} else {
			fmt.Println(e.LogData)
		}
	}
	return nil
}

func prettyEntry(e log.LogEntry) string {
	var rec map[string]any
	if err := json.Unmarshal([]byte(e.LogData), &rec); err != nil {
		return e.LogData
	}
	level, _ := rec["level"].(string)
	ts, _ := rec["time"].(string)
	msg, _ := rec["message"].(string)
	delete(rec, "level")
	delete(rec, "time")
	delete(rec, "message")
	line := fmt.Sprintf("%s %-5s %s", ts, level, msg)
	if len(rec) > 0 {
		extra, _ := json.Marshal(rec)
		line += " " + string(extra)
	}
	return line
}
