package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/florianilch/qbtools/internal/app"
)

func exportCommand(s streams) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "export a collection of entities",
		Flags: outputFlags(),
		Commands: []*cli.Command{
			{
				Name:  "customers",
				Usage: "export all customers",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "where",
						Usage: "query filter, e.g. \"Active = true\"",
					},
				},
				Action: withApp(s, exportAction(s, app.EntityCustomer)),
			},
			{
				Name:   "items",
				Usage:  "export all items",
				Action: withApp(s, exportAction(s, app.EntityItem)),
			},
		},
	}
}

func exportAction(s streams, entity string) action {
	return func(ctx context.Context, cmd *cli.Command, application *app.App) error {
		dest, err := destination(cmd, s.out)
		if err != nil {
			return err
		}

		where := ""
		if entity == app.EntityCustomer {
			where = cmd.String("where")
		}

		return application.Export(ctx, entity, where, dest)
	}
}
