package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/rest0-go/internal/cli/output"
	"github.com/yndnr/rest0-go/pkg/token"
)

// TokenResult is printed by the token subcommand.
type TokenResult struct {
	Token string `json:"token" yaml:"token"`
	Hash  string `json:"hash" yaml:"hash"`
}

// TokenCommand returns the token subcommand.
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Generate a bearer token for the metrics listener and its metrics.auth_token_hash",
		Flags: []cli.Flag{
			outputFlag("text"),
			&cli.StringFlag{
				Name:  "from",
				Usage: "Hash an existing token instead of generating one",
			},
		},
		Action: func(c *cli.Context) error {
			format, err := output.ParseFormat(c.String("output"))
			if err != nil {
				return err
			}

			tok := c.String("from")
			if tok == "" {
				if tok, err = token.Generate(); err != nil {
					return err
				}
			}
			return output.NewFormatter(format).Format(c.App.Writer, TokenResult{
				Token: tok,
				Hash:  token.Hash(tok),
			})
		},
	}
}
