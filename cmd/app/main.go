package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/starford/postmigrate/internal"
	pkgconfig "github.com/starford/postmigrate/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadWithDefaults(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if v := cmd.String("input"); v != "" {
		cfg.Posts.InputDir = v
	}
	if v := cmd.String("output"); v != "" {
		cfg.Posts.OutputDir = v
	}
	if v := cmd.String("journal"); v != "" {
		cfg.Journal.Path = v
	}
	if cmd.Bool("incremental") {
		cfg.Journal.Incremental = true
	}
	if v := cmd.String("layout"); v != "" {
		cfg.Posts.Layout = v
	}
	if cmd.Bool("no-verify") {
		cfg.Verify.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runMode(mode internal.Mode) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		opts := []internal.Option{
			internal.WithConfig(cfg),
			internal.WithMode(mode),
			internal.WithVersion(version),
			internal.WithColor(isatty.IsTerminal(os.Stdout.Fd()) && os.Getenv("NO_COLOR") == ""),
			internal.WithDryRun(cmd.Bool("dry-run")),
			internal.WithDiff(cmd.Bool("diff")),
			internal.WithForce(cmd.Bool("force")),
			internal.WithJSON(cmd.Bool("json")),
		}

		if err := internal.Run(ctx, opts...); err != nil {
			return fmt.Errorf("app run error: %w", err)
		}

		return nil
	}
}

func main() {
	// Flags live on the root command; subcommands look them up through
	// the command lineage, so they can be given before or after the name.
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to config file (missing file means defaults)",
			DefaultText: "config/config.yaml",
			Value:       "config/config.yaml",
			Sources:     cli.EnvVars("APP_CONFIG_FILE"),
		},
		&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "Directory of legacy posts"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Directory for converted posts"},
		&cli.StringFlag{Name: "layout", Usage: "Output layout: flat or bundle"},
		&cli.StringFlag{Name: "journal", Usage: "Path to the SQLite migration journal"},
		&cli.BoolFlag{Name: "incremental", Usage: "Leave sources unchanged since the last run alone (needs --journal)"},
		&cli.BoolFlag{Name: "no-verify", Usage: "Skip re-reading converted posts"},
		&cli.BoolFlag{Name: "json", Usage: "Print the report as JSON"},
		&cli.BoolFlag{Name: "dry-run", Aliases: []string{"n"}, Usage: "Convert without writing anything"},
		&cli.BoolFlag{Name: "diff", Usage: "With --dry-run, print a line diff per post"},
		&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Reconvert posts the journal reports as unchanged"},
	}

	cmd := &cli.Command{
		Name:    "postmigrate",
		Usage:   "Convert Jekyll blog posts to Astro content collection posts",
		Version: version,
		Flags:   flags,
		Action:  runMode(internal.ModeMigrate),
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Convert every post once and print a report (default)",
				Action: runMode(internal.ModeMigrate),
			},
			{
				Name:   "watch",
				Usage:  "Migrate, then keep converting posts as they change",
				Action: runMode(internal.ModeWatch),
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API with live migration events",
				Action: runMode(internal.ModeServe),
			},
			{
				Name:   "mcp",
				Usage:  "Expose the converter to MCP clients over stdio",
				Action: runMode(internal.ModeMCP),
			},
			{
				Name:   "verify",
				Usage:  "Re-check converted posts in the output directory",
				Action: runMode(internal.ModeVerify),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
