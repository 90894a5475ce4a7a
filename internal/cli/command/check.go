package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rest0-go/internal/cli/output"
	"github.com/yndnr/rest0-go/internal/host"
	"github.com/yndnr/rest0-go/internal/server/apiservice"
	"github.com/yndnr/rest0-go/internal/server/config"
)

// CheckCommand returns the check subcommand.
func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Validate the configuration and print the effective settings",
		Flags: []cli.Flag{
			outputFlag("text"),
		},
		Action: check,
	}
}

func outputFlag(def string) cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output format: text, json, yaml",
		Value:   def,
	}
}

func check(c *cli.Context) error {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}

	cfg, loader, err := loadConfig(ParseGlobalFlags(c))
	if err != nil {
		return err
	}
	initLogger(c, cfg)

	// Handler settings are validated the way the host would on startup.
	values := host.ValuesFromMap(loader.Section("handler"))
	svc := apiservice.New()
	if err := svc.Configure(context.Background(), nil, values); err != nil {
		return fmt.Errorf("invalid handler settings: %w", err)
	}
	if err := svc.Validate(); err != nil {
		return fmt.Errorf("invalid handler settings: %w", err)
	}

	return output.NewFormatter(format).Format(c.App.Writer, config.Sanitize(cfg))
}
