package command

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rest0-go/internal/infra/buildinfo"
	"github.com/yndnr/rest0-go/internal/infra/confloader"
	"github.com/yndnr/rest0-go/internal/server/config"
	"github.com/yndnr/rest0-go/internal/telemetry/logger"
)

// App creates the rest0-server application. Without a subcommand it serves.
func App() *cli.App {
	info := buildinfo.Get()
	return &cli.App{
		Name:                      "rest0-server",
		Usage:                     "Serve a periodically refreshed configuration document over HTTP",
		Version:                   fmt.Sprintf("%s (commit: %s, built: %s, %s)", info.Version, info.Commit, info.BuildTime, info.GoVersion),
		Flags:                     globalFlags(),
		Action:                    serve,
		DisableSliceFlagSeparator: true,
		Commands: []*cli.Command{
			ServeCommand(),
			CheckCommand(),
			ResolveCommand(),
			TokenCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the YAML configuration file",
			EnvVars: []string{"REST0_CONFIG"},
		},
		&cli.StringSliceFlag{
			Name:    "prefix",
			Aliases: []string{"p"},
			Usage:   "Listener prefix, e.g. http://+:8080/ (repeatable, replaces server.prefixes)",
		},
		&cli.StringSliceFlag{
			Name:  "set",
			Usage: "Handler setting as key=value, e.g. config.Url=https://cfg/app.json (repeatable)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	ConfigFile string
	Prefixes   []string
	Sets       []string
	LogLevel   string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		ConfigFile: c.String("config"),
		Prefixes:   c.StringSlice("prefix"),
		Sets:       c.StringSlice("set"),
		LogLevel:   c.String("log-level"),
	}
}

// Overrides converts the flags to dot-delimited configuration keys. A
// handler key given more than once keeps every value.
func (f *GlobalFlags) Overrides() (map[string]any, error) {
	out := make(map[string]any)

	if len(f.Prefixes) > 0 {
		out["server.prefixes"] = f.Prefixes
	}
	if f.LogLevel != "" {
		out["log.level"] = f.LogLevel
	}

	for _, kv := range f.Sets {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("--set %q: expected key=value", kv)
		}
		full := "handler." + key
		switch prev := out[full].(type) {
		case nil:
			out[full] = value
		case string:
			out[full] = []string{prev, value}
		case []string:
			out[full] = append(prev, value)
		}
	}
	return out, nil
}

// loadConfig loads configuration from file, environment and flags.
func loadConfig(flags *GlobalFlags) (*config.ServerConfig, *confloader.Loader, error) {
	overrides, err := flags.Overrides()
	if err != nil {
		return nil, nil, err
	}

	cfg := config.Default()

	opts := []confloader.Option{confloader.WithOverrides(overrides)}
	if flags.ConfigFile != "" {
		opts = append(opts, confloader.WithConfigFile(flags.ConfigFile))
	}
	loader := confloader.NewLoader(opts...)

	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, loader, nil
}

// initLogger creates the process logger and makes it the default.
func initLogger(c *cli.Context, cfg *config.ServerConfig) {
	out := c.App.ErrWriter
	if out == nil {
		out = os.Stderr
	}
	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: out,
	})
	logger.SetDefault(log)
}
