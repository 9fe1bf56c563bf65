package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/florianilch/qbtools/internal/app"
)

func getCommand(s streams) *cli.Command {
	return &cli.Command{
		Name:  "get",
		Usage: "fetch a single entity",
		Flags: outputFlags(),
		Commands: []*cli.Command{
			{
				Name:      "customer",
				Usage:     "fetch a customer by id",
				ArgsUsage: "ID",
				Action:    withApp(s, getAction(s, app.EntityCustomer)),
			},
			{
				Name:      "item",
				Usage:     "fetch an item by id",
				ArgsUsage: "ID",
				Action:    withApp(s, getAction(s, app.EntityItem)),
			},
			{
				Name:  "company-info",
				Usage: "fetch the company profile",
				Action: withApp(s, func(ctx context.Context, cmd *cli.Command, application *app.App) error {
					dest, err := destination(cmd, s.out)
					if err != nil {
						return err
					}
					return application.CompanyInfo(ctx, dest)
				}),
			},
		},
	}
}

func getAction(s streams, entity string) action {
	return func(ctx context.Context, cmd *cli.Command, application *app.App) error {
		id, err := exactlyOneArg(cmd, "ID")
		if err != nil {
			return err
		}

		dest, err := destination(cmd, s.out)
		if err != nil {
			return err
		}

		return application.Get(ctx, entity, id, dest)
	}
}
