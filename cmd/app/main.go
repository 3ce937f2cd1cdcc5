package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/mysticcoders/voicenotes-sync/internal"
	pkgconfig "github.com/mysticcoders/voicenotes-sync/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	loaded, err := pkgconfig.LoadIfPresent(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !loaded {
		if cmd.IsSet("config") {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("default config invalid: %w", err)
		}
	}
	return cfg, nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:  "voicenotes-sync",
		Usage: "One-way sync of voice recordings into a local Markdown vault",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authenticate against the recording service and store the session token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "Account email", Sources: cli.EnvVars("VOICENOTES_EMAIL")},
					&cli.StringFlag{Name: "password", Usage: "Account password", Sources: cli.EnvVars("VOICENOTES_PASSWORD")},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.RunLogin(ctx, cfg, cmd.String("email"), cmd.String("password"))
				},
			},
			{
				Name:  "logout",
				Usage: "Discard the stored session token",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.RunLogout(ctx, cfg)
				},
			},
			{
				Name:  "sync",
				Usage: "Run one sync pass",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "full", Usage: "Walk every remote page instead of only the most recent recordings"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.RunSync(ctx, cfg, cmd.Bool("full"))
				},
			},
			{
				Name:  "today",
				Usage: "List the notes synced from today's recordings",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.RunToday(ctx, cfg)
				},
			},
			{
				Name:      "search",
				Usage:     "Full-text search over synced notes",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Usage: "Max results", Value: 20},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
					if query == "" {
						return fmt.Errorf("search query is required")
					}
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.RunSearch(ctx, cfg, query, int(cmd.Int("limit")))
				},
			},
			{
				Name:  "user",
				Usage: "Show the authenticated remote profile",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.RunUser(ctx, cfg)
				},
			},
			{
				Name:  "serve",
				Usage: "Run the sync daemon with HTTP API, SSE and scheduled passes",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.Run(ctx, internal.WithConfig(cfg))
				},
			},
			{
				Name:  "mcp",
				Usage: "Serve sync tools over the Model Context Protocol on stdio",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.RunMCP(ctx, cfg)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
