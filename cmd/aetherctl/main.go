// Command aetherctl runs operator tasks against the AetherInc database and services.
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/aetherinc/aether-waitlist/config"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("could not read .env", "err", err)
	}

	runner := NewRunner(RunnerOpts{
		Config: config.FromEnv(),
		Logger: logger,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:  "aetherctl",
		Usage: "Operate the AetherInc waitlist backend",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				logger.SetLevel(log.DebugLevel)
			}
			return ctx, nil
		},
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		runner.Close()
		logger.Fatal("command failed", "err", err)
	}
}
