package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ztk/internal"
	"github.com/starford/ztk/internal/apperr"
	pkgconfig "github.com/starford/ztk/pkg/config"
)

const version = "0.3.0"

func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to an optional YAML config file",
			Value:   "ztk.yaml",
			Sources: cli.EnvVars("ZTK_CONFIG_FILE"),
		},
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"I"},
			Usage:   "Directory holding the notes",
			Sources: cli.EnvVars("ZTK_INPUT"),
		},
		&cli.StringSliceFlag{
			Name:    "tag",
			Aliases: []string{"t"},
			Usage:   "Only include notes carrying this tag (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:    "without-tag",
			Aliases: []string{"T"},
			Usage:   "Exclude notes carrying this tag (repeatable)",
		},
	}
}

func siteFlags() []cli.Flag {
	return append(inputFlags(),
		&cli.StringFlag{
			Name:    "name",
			Aliases: []string{"n"},
			Usage:   "Site name appended to page titles",
			Sources: cli.EnvVars("ZTK_SITE_NAME"),
		},
		&cli.StringFlag{
			Name:    "style",
			Aliases: []string{"s"},
			Usage:   "Stylesheet copied into the site",
			Sources: cli.EnvVars("ZTK_STYLE"),
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Number of pages rendered concurrently",
		},
		&cli.BoolFlag{
			Name:    "watch",
			Aliases: []string{"w"},
			Usage:   "Rebuild the site whenever a note changes",
		},
	)
}

// loadConfig layers defaults, the optional config file and the flags that
// were set explicitly, in that order.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()

	path := cmd.String("config")
	loaded, err := pkgconfig.LoadOptional(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !loaded && cmd.IsSet("config") {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	if cmd.IsSet("input") {
		cfg.Site.Input = cmd.String("input")
	}
	if cmd.IsSet("tag") {
		cfg.Filter.Required = cmd.StringSlice("tag")
	}
	if cmd.IsSet("without-tag") {
		cfg.Filter.Forbidden = cmd.StringSlice("without-tag")
	}
	if cmd.IsSet("name") {
		cfg.Site.Name = cmd.String("name")
	}
	if cmd.IsSet("style") {
		cfg.Site.Style = cmd.String("style")
	}
	if cmd.IsSet("workers") {
		cfg.Export.Workers = int(cmd.Int("workers"))
	}
	if cmd.IsSet("watch") {
		cfg.Site.Watch = cmd.Bool("watch")
	}
	return cfg, nil
}

// outputArg applies the single OUTPUT_DIR positional argument.
func outputArg(cmd *cli.Command, cfg *internal.Config) error {
	switch cmd.NArg() {
	case 0:
		if cfg.Site.Output == "" {
			return fmt.Errorf("%w: missing OUTPUT_DIR", apperr.ErrUsage)
		}
	case 1:
		cfg.Site.Output = cmd.Args().First()
	default:
		return fmt.Errorf("%w: expected one OUTPUT_DIR, got %d arguments", apperr.ErrUsage, cmd.NArg())
	}
	return nil
}

func runBuild(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := outputArg(cmd, cfg); err != nil {
		return err
	}
	return internal.Build(ctx, internal.WithConfig(cfg))
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := outputArg(cmd, cfg); err != nil {
		return err
	}
	if cmd.IsSet("addr") {
		host, port, err := net.SplitHostPort(cmd.String("addr"))
		if err != nil {
			return fmt.Errorf("%w: invalid --addr: %v", apperr.ErrUsage, err)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("%w: invalid --addr port: %v", apperr.ErrUsage, err)
		}
		cfg.HTTP.Host, cfg.HTTP.Port = host, p
	}
	return internal.Serve(ctx, internal.WithConfig(cfg))
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() > 0 {
		return fmt.Errorf("%w: mcp takes no arguments", apperr.ErrUsage)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:      "ztk",
		Usage:     "Render a directory of tagged plain-text notes into a hypertext site",
		Version:   version,
		ArgsUsage: "OUTPUT_DIR",
		Flags:     siteFlags(),
		Action:    runBuild,
		Commands: []*cli.Command{
			{
				Name:      "build",
				Usage:     "Export the site to OUTPUT_DIR",
				ArgsUsage: "OUTPUT_DIR",
				Flags:     siteFlags(),
				Action:    runBuild,
			},
			{
				Name:      "serve",
				Usage:     "Build the site and serve it with live rebuilds and a search API",
				ArgsUsage: "OUTPUT_DIR",
				Flags: append(siteFlags(), &cli.StringFlag{
					Name:    "addr",
					Usage:   "HTTP listen address",
					Sources: cli.EnvVars("ZTK_HTTP_ADDR"),
				}),
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the notes to an MCP client over stdio",
				Flags:  inputFlags(),
				Action: runMCP,
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newApp().Run(ctx, os.Args)
	stop()
	if err == nil {
		return
	}

	if errors.Is(err, apperr.ErrUsage) {
		fmt.Fprintf(os.Stderr, "ztk: %v\nRun 'ztk --help' for usage.\n", err)
		os.Exit(2)
	}
	slog.Error("application error", slog.String("error", err.Error()))
	os.Exit(1)
}
