// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/desertthunder/yday/internal/formatter"
	"github.com/urfave/cli/v3"
)

func accountFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "Discogs username",
			Sources: cli.EnvVars("DISCOGS_USERNAME"),
		},
		&cli.StringFlag{
			Name:    "token",
			Aliases: []string{"t"},
			Usage:   "Discogs personal access token",
			Sources: cli.EnvVars("DISCOGS_TOKEN"),
		},
	}
}

func releaseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "folder",
			Aliases: []string{"f"},
			Usage:   "Collection folder name (default from config)",
		},
		&cli.StringFlag{
			Name:  "ids",
			Usage: "Comma-separated release ids",
		},
		&cli.StringFlag{
			Name:  "file",
			Usage: "File with release ids, one per line ('-' reads stdin)",
		},
	}
}

// serveCommand runs the HTTP upload service.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve POST /api/upload-releases over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (overrides server.port)",
			},
		},
		Action: r.Serve,
	}
}

// uploadCommand adds releases to a collection folder.
func uploadCommand(r *Runner) *cli.Command {
	flags := append(accountFlags(), releaseFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write a report of the results to this file",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Report format: " + strings.Join(formatter.Formats, ", ") + " (default from --output extension)",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the results as JSON instead of a table",
		},
		&cli.BoolFlag{
			Name:  "tui",
			Usage: "Show the plan and live progress in an interactive terminal UI",
		},
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "Skip the confirmation step in the terminal UI",
		},
	)

	return &cli.Command{
		Name:      "upload",
		Aliases:   []string{"add"},
		Usage:     "Add releases to a collection folder, skipping ones already there",
		ArgsUsage: "[release id...]",
		Flags:     flags,
		Action:    r.Upload,
	}
}

// planCommand shows what upload would do without adding anything.
func planCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "plan",
		Aliases:   []string{"diff"},
		Usage:     "Dry run: show which releases would be added",
		ArgsUsage: "[release id...]",
		Flags:     append(accountFlags(), releaseFlags()...),
		Action:    r.Plan,
	}
}

// foldersCommand lists collection folders.
func foldersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "folders",
		Usage:  "List collection folders",
		Flags:  accountFlags(),
		Action: r.Folders,
	}
}

// setupCommand writes a starter config file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a config file with default settings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "output",
				Usage: "Where to write the config (default: --config path)",
			},
		},
		Action: r.Setup,
	}
}
