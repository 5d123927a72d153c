package cli

import (
	"context"
	"fmt"

	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/usecase/history"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func historyCommand() *cli.Command {
	var (
		cfg    config
		logCfg logConfig
		userID string
		limit  int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Aliases:     []string{"u"},
			Usage:       "User ID to list conversation for",
			Sources:     cli.EnvVars("FA_USER_ID"),
			Destination: &userID,
			Required:    true,
		},
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "Number of turns to show",
			Value:       history.DefaultLimit,
			Destination: &limit,
		},
	}
	flags = append(flags, logFlags(&logCfg)...)
	flags = append(flags, repositoryFlags(&cfg)...)

	return &cli.Command{
		Name:  "history",
		Usage: "Show the recent conversation of a user",
		Flags: flags,
		Action: withLogger(&logCfg, func(ctx context.Context, c *cli.Command) error {
			repo, closer, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer closer.Close()

			messages, err := history.List(ctx, repo, model.UserID(userID), int(limit))
			if err != nil {
				return goerr.Wrap(err, "failed to list history")
			}

			if len(messages) == 0 {
				fmt.Fprintf(c.Root().Writer, "No conversation found for user %s\n", userID)
				return nil
			}

			for _, m := range messages {
				fmt.Fprintf(c.Root().Writer, "%s\t%s\t%s\n",
					m.CreatedAt.Format("2006-01-02 15:04:05"),
					m.Role,
					m.Content,
				)
			}

			return nil
		}),
	}
}
