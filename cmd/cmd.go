// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// sessionCommand handles session occurrence operations
func sessionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "session",
		Aliases: []string{"sess"},
		Usage:   "Session occurrence operations",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a new session occurrence",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Session name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "date",
						Usage: "Occurrence date (YYYY-MM-DD, defaults to today)",
					},
				},
				Action: r.SessionCreate,
			},
			{
				Name:  "list",
				Usage: "List session occurrences",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SessionList,
			},
			{
				Name:  "show",
				Usage: "Show a session's tune log grouped into sets",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "session",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SessionShow,
			},
			{
				Name:  "export",
				Usage: "Export a session's tune log to a file",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "session",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format (csv, markdown or text)",
						Value: "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file or directory path",
					},
				},
				Action: r.SessionExport,
			},
		},
	}
}

// logCommand handles tune-log editing from the command line
func logCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "log",
		Usage: "Tune-log editing operations",
		Commands: []*cli.Command{
			{
				Name:  "paste",
				Usage: "Paste clipboard content onto the end of a session's tune log",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "session",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "text",
						Aliases: []string{"t"},
						Usage:   "Paste this text instead of reading the OS clipboard",
					},
				},
				Action: r.LogPaste,
			},
		},
	}
}

// tokensCommand handles order-token maintenance
func tokensCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tokens",
		Usage: "Order-token maintenance",
		Commands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Check a session's order tokens for duplicates and ordering violations",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "session",
					},
				},
				Action: r.TokensValidate,
			},
			{
				Name:  "rebalance",
				Usage: "Rewrite a session's order tokens as an evenly spaced set",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "session",
					},
				},
				Action: r.TokensRebalance,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive tune-log editing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for tune-log editing",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "session",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-save",
				Usage: "Discard edits instead of saving on exit",
			},
		},
		Action: r.TUI,
	}
}
