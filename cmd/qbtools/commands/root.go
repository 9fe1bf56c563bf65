package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/florianilch/qbtools/internal/app"
	"github.com/florianilch/qbtools/internal/format"
	"github.com/florianilch/qbtools/internal/observability"
)

// streams are the process I/O handles; tests replace them.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string) error {
	return newRootCommand(streams{in: os.Stdin, out: os.Stdout, err: os.Stderr}).Run(ctx, args)
}

func newRootCommand(s streams) *cli.Command {
	return &cli.Command{
		Name:      "qbtools",
		Usage:     "QuickBooks Online export tool",
		Reader:    s.in,
		Writer:    s.out,
		ErrWriter: s.err,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "settings",
				Usage: "path to settings file (.json, .yaml/.yml, otherwise TOML)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: slog.LevelInfo.String(),
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json|otel)",
				Value: string(app.DefaultConfigLogFormat),
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "do not report the authorized company",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "report result counts",
			},
			&cli.StringFlag{
				Name:  "credentials--base-path",
				Usage: "credential file path without extension",
				Value: app.DefaultConfigBasePath,
			},
			&cli.StringFlag{
				Name:  "api--environment",
				Usage: "QuickBooks environment (sandbox|production)",
				Value: string(app.DefaultConfigEnvironment),
			},
			&cli.StringFlag{
				Name:  "api--base-url",
				Usage: "QuickBooks API base URL (defaults per environment)",
			},
			&cli.DurationFlag{
				Name:  "api--timeout",
				Usage: "timeout per API request",
				Value: app.DefaultConfigTimeout,
			},
			&cli.IntFlag{
				Name:  "api--page-size",
				Usage: "entities per query page (1-1000)",
				Value: app.DefaultConfigPageSize,
			},
			&cli.StringFlag{
				Name:  "oauth--client-id",
				Usage: "OAuth client id used for refreshing",
			},
			&cli.StringFlag{
				Name:  "oauth--secret-storage",
				Usage: "where the OAuth client secret is kept (config|file|env|keyring)",
				Value: string(app.DefaultConfigSecretStorage),
			},
			&cli.StringFlag{
				Name:  "oauth--secret-file",
				Usage: "client secret file for file storage",
			},
			&cli.StringFlag{
				Name:  "oauth--secret-env-key",
				Usage: "environment variable holding the client secret for env storage",
			},
			&cli.StringFlag{
				Name:  "oauth--keyring-user",
				Usage: "keyring user for keyring storage",
			},
		},
		Commands: []*cli.Command{
			exportCommand(s),
			getCommand(s),
			configCommand(s),
			secretCommand(s),
		},
	}
}

// action runs fn with settings loaded and logging set up for the invocation.
type action func(ctx context.Context, cmd *cli.Command, application *app.App) error

func withApp(s streams, fn action) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) (err error) {
		cfg, err := loadConfig(cmd.String("settings"), cmd, os.Environ)
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}

		// Set up observability before creating app
		shutdown, err := observability.Instrument(cfg.LogLevel, string(cfg.LogFormat), s.err)
		if err != nil {
			return fmt.Errorf("failed to set up observability layer: %w", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if shutdownErr := shutdown(flushCtx); shutdownErr != nil {
				fmt.Fprintf(s.err, "failed to flush logs: %v\n", shutdownErr)
			}
		}()

		application, err := app.New(cfg, app.WithStdout(s.out))
		if err != nil {
			return fmt.Errorf("failed to create app: %w", err)
		}
		slog.SetDefault(slog.Default().With("run_id", application.RunID()))

		return fn(ctx, cmd, application)
	}
}

// outputFlags are shared by every command that writes a result.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "output format (" + format.Names() + ")",
			Value:   format.Default.String(),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output file (default: stdout)",
		},
		&cli.BoolFlag{
			Name:    "pretty",
			Aliases: []string{"p"},
			Usage:   "pretty-print JSON (default: on when writing to a terminal)",
		},
	}
}

// destination reads the output flags. Without an explicit --pretty, output to an
// interactive terminal is pretty-printed.
func destination(cmd *cli.Command, stdout io.Writer) (app.Destination, error) {
	tag, err := format.Parse(cmd.String("format"))
	if err != nil {
		return app.Destination{}, err
	}

	dest := app.Destination{
		Path:   cmd.String("output"),
		Format: tag,
		Pretty: cmd.Bool("pretty"),
	}
	if !cmd.IsSet("pretty") && dest.Path == "" {
		dest.Pretty = isTerminal(stdout)
	}
	return dest, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// exactlyOneArg returns the single positional argument named name.
func exactlyOneArg(cmd *cli.Command, name string) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", fmt.Errorf("%s: expected exactly one %s argument, got %d", cmd.Name, name, cmd.Args().Len())
	}
	return cmd.Args().First(), nil
}
