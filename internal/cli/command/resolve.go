package command

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rest0-go/internal/cli/output"
	"github.com/yndnr/rest0-go/internal/host"
	"github.com/yndnr/rest0-go/internal/server/apiservice"
)

// ResolveResult is what the resolve command prints.
type ResolveResult struct {
	Hash       string    `json:"hash" yaml:"hash"`
	Source     string    `json:"source" yaml:"source"`
	ResolvedAt time.Time `json:"resolved_at" yaml:"resolved_at"`
	Config     any       `json:"config" yaml:"config"`
}

// ResolveCommand returns the resolve subcommand.
func ResolveCommand() *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Fetch the configuration document once and print it with its hash",
		Flags: []cli.Flag{
			outputFlag("json"),
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Overall time limit",
				Value: 30 * time.Second,
			},
		},
		Action: resolve,
	}
}

func resolve(c *cli.Context) error {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}

	cfg, loader, err := loadConfig(ParseGlobalFlags(c))
	if err != nil {
		return err
	}
	initLogger(c, cfg)

	svc := apiservice.New()
	values := host.ValuesFromMap(loader.Section("handler"))
	if err := svc.Configure(c.Context, nil, values); err != nil {
		return fmt.Errorf("invalid handler settings: %w", err)
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	snap, err := svc.ResolveOnce(ctx)
	if err != nil {
		return err
	}

	doc := snap.Document()
	if format != output.FormatJSON {
		doc = output.PlainNumbers(doc)
	}
	return output.NewFormatter(format).Format(c.App.Writer, ResolveResult{
		Hash:       snap.Hex(),
		Source:     string(snap.Source()),
		ResolvedAt: snap.ResolvedAt().UTC(),
		Config:     doc,
	})
}
