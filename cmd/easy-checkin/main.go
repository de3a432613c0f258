// Terminal client for the easy check-in dialog
package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"hrtime.service/internal/config"
	"hrtime.service/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}
	logger.Setup("easy-checkin", cfg.IsLocalDev)

	cmd := &cli.Command{
		Name:  "easy-checkin",
		Usage: "check in and out of work from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "api",
				Usage: "base URL of the HR time API",
				Value: cfg.APIBaseURL,
			},
			&cli.StringFlag{
				Name:  "user",
				Usage: "user to act as",
				Value: cfg.User,
			},
		},
		Commands: []*cli.Command{
			checkinCommand(cfg),
			worklogCommand(cfg),
			statusCommand(cfg),
			presentCommand(cfg),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Error().Err(err).Msg("easy-checkin failed")
		os.Exit(1)
	}
}
