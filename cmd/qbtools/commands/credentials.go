package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/florianilch/qbtools/internal/app"
)

func configCommand(s streams) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "inspect the credential file",
		Commands: []*cli.Command{
			{
				Name:  "path",
				Usage: "print the credential file in use",
				Action: withApp(s, func(ctx context.Context, _ *cli.Command, application *app.App) error {
					loc := application.ConfigLocation()
					if _, err := fmt.Fprintln(s.out, loc.Path); err != nil {
						return err
					}
					if !loc.Exists {
						fmt.Fprintf(s.err, "not created yet; looked for %s\n", application.ConfigCandidates())
					}
					return nil
				}),
			},
			{
				Name:  "example",
				Usage: "print a placeholder credential file",
				Flags: outputFlags(),
				Action: withApp(s, func(_ context.Context, cmd *cli.Command, application *app.App) error {
					dest, err := destination(cmd, s.out)
					if err != nil {
						return err
					}
					return application.WriteExample(dest)
				}),
			},
		},
	}
}
