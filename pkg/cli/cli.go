package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/fa-friend/fa/pkg/utils/logging"
	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	if err := loadEnvFile(); err != nil {
		return &Error{Code: 1, Message: err.Error()}
	}

	cmd := &cli.Command{
		Name:  "fa",
		Usage: "Thai AI friend: chat, reminders, routines and disaster alerts",
		Commands: []*cli.Command{
			serveCommand(),
			chatCommand(),
			registerCommand(),
			historyCommand(),
			exportCommand(),
			briefCommand(),
			alertCommand(),
			mcpCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		logging.Default().Error("command failed", logging.ErrAttr(err))
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}

// loadEnvFile reads FA_ENV_FILE or ./.env into the environment so that flag
// env sources can see it. A missing file is fine.
func loadEnvFile() error {
	path := os.Getenv("FA_ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return goerr.Wrap(err, "failed to load env file", goerr.V("path", path))
	}
	return nil
}

type logConfig struct {
	level  string
	format string
}

func logFlags(cfg *logConfig) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("FA_LOG_LEVEL"),
			Destination: &cfg.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json)",
			Value:       string(logging.FormatConsole),
			Sources:     cli.EnvVars("FA_LOG_FORMAT"),
			Destination: &cfg.format,
		},
	}
}

// withLogger installs the configured logger before running action
func withLogger(cfg *logConfig, action cli.ActionFunc) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		logger := logging.New(os.Stderr,
			logging.WithLevel(cfg.level),
			logging.WithFormat(logging.Format(cfg.format)),
		)
		logging.SetDefault(logger)
		return action(logging.With(ctx, logger), c)
	}
}
