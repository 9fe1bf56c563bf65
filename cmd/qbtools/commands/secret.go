package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/florianilch/qbtools/internal/app"
)

func secretCommand(s streams) *cli.Command {
	return &cli.Command{
		Name:  "secret",
		Usage: "manage the OAuth client secret",
		Commands: []*cli.Command{
			{
				Name:  "set",
				Usage: "store the OAuth client secret in the configured secret storage",
				Action: withApp(s, func(ctx context.Context, _ *cli.Command, application *app.App) error {
					secret, err := readSecret(s)
					if err != nil {
						return fmt.Errorf("failed to read client secret: %w", err)
					}
					return application.SetClientSecret(ctx, secret)
				}),
			},
		},
	}
}

// readSecret prompts without echo on a terminal and reads a single line otherwise.
func readSecret(s streams) (string, error) {
	if f, ok := s.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(s.err, "OAuth client secret: ")
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(s.err)
		if err != nil {
			return "", err
		}
		return validSecret(string(raw))
	}

	line, err := bufio.NewReader(s.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return validSecret(line)
}

func validSecret(raw string) (string, error) {
	secret := strings.TrimSpace(raw)
	if secret == "" {
		return "", fmt.Errorf("secret cannot be empty")
	}
	return secret, nil
}
