package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/esurat/internal"
	pkgconfig "github.com/starford/esurat/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
}

func login(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	u, err := internal.Login(ctx, cmd.String("username"), cmd.String("password"),
		internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
	if err != nil {
		return err
	}
	fmt.Printf("Masuk sebagai %s (%s)\n", u.Name, u.Role.Label())
	return nil
}

func logout(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Logout(ctx, internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
}

func whoami(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	u, ok, err := internal.Whoami(ctx, internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Belum login.")
		return nil
	}
	fmt.Printf("%s (%s), peran %s\n", u.Name, u.Username, u.Role.Label())
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "esurat",
		Usage:  "Correspondence archive for incoming and outgoing letters, dispositions and daily agendas",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio as the signed-in user",
				Action: runMCP,
			},
			{
				Name:   "login",
				Usage:  "Sign in and remember the user for later commands",
				Action: login,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Sources: cli.EnvVars("ESURAT_PASSWORD")},
				},
			},
			{
				Name:   "logout",
				Usage:  "Forget the signed-in user",
				Action: logout,
			},
			{
				Name:   "whoami",
				Usage:  "Show the signed-in user",
				Action: whoami,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
