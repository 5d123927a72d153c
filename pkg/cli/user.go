package cli

import (
	"context"
	"fmt"

	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/usecase/user"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func registerCommand() *cli.Command {
	var (
		cfg    config
		logCfg logConfig
		in     user.RegisterInput
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "name",
			Usage:       "Name ฟ้า calls the user by",
			Destination: &in.Name,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "personality",
			Usage:       "friendly, caring, cheerful or professional",
			Value:       string(model.PersonaFriendly),
			Destination: (*string)(&in.Persona),
		},
		&cli.StringFlag{
			Name:        "wake-time",
			Usage:       "Wake time (HH:MM)",
			Value:       model.DefaultWakeTime,
			Destination: &in.WakeTime,
		},
		&cli.StringFlag{
			Name:        "sleep-time",
			Usage:       "Sleep time (HH:MM)",
			Value:       model.DefaultSleepTime,
			Destination: &in.SleepTime,
		},
	}
	flags = append(flags, logFlags(&logCfg)...)
	flags = append(flags, repositoryFlags(&cfg)...)

	return &cli.Command{
		Name:  "register",
		Usage: "Register a new user",
		Flags: flags,
		Action: withLogger(&logCfg, func(ctx context.Context, c *cli.Command) error {
			repo, closer, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer closer.Close()

			result, err := user.New(repo).Register(ctx, in)
			if err != nil {
				return goerr.Wrap(err, "failed to register user")
			}

			fmt.Fprintf(c.Root().Writer, "user_id: %s\n%s\n", result.UserID, result.Message)
			return nil
		}),
	}
}

func exportCommand() *cli.Command {
	var (
		cfg    config
		logCfg logConfig
		userID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Aliases:     []string{"u"},
			Usage:       "User ID to export",
			Sources:     cli.EnvVars("FA_USER_ID"),
			Destination: &userID,
			Required:    true,
		},
	}
	flags = append(flags, logFlags(&logCfg)...)
	flags = append(flags, repositoryFlags(&cfg)...)
	flags = append(flags, storageFlags(&cfg)...)

	return &cli.Command{
		Name:  "export",
		Usage: "Export all data of a user to Cloud Storage as JSON",
		Flags: flags,
		Action: withLogger(&logCfg, func(ctx context.Context, c *cli.Command) error {
			if cfg.exportBucket == "" {
				return goerr.New("export-bucket is required")
			}

			repo, closer, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer closer.Close()

			uc, err := cfg.newUser(ctx, repo)
			if err != nil {
				return err
			}

			key, err := uc.Export(ctx, model.UserID(userID))
			if err != nil {
				return goerr.Wrap(err, "failed to export user data")
			}

			fmt.Fprintf(c.Root().Writer, "exported to gs://%s/%s\n", cfg.exportBucket, key)
			return nil
		}),
	}
}

func briefCommand() *cli.Command {
	return &cli.Command{
		Name:  "brief",
		Usage: "Print the morning brief or the night wrap",
		Commands: []*cli.Command{
			briefSubcommand("morning", "Today's reminders and routines", (*user.UseCase).MorningBrief),
			briefSubcommand("night", "Today's routine completion, mood and streak", (*user.UseCase).NightWrap),
		},
	}
}

func briefSubcommand(name, usage string, build func(*user.UseCase, context.Context, model.UserID) (string, error)) *cli.Command {
	var (
		cfg    config
		logCfg logConfig
		userID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Aliases:     []string{"u"},
			Usage:       "User ID to summarize",
			Sources:     cli.EnvVars("FA_USER_ID"),
			Destination: &userID,
			Required:    true,
		},
	}
	flags = append(flags, logFlags(&logCfg)...)
	flags = append(flags, repositoryFlags(&cfg)...)

	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: flags,
		Action: withLogger(&logCfg, func(ctx context.Context, c *cli.Command) error {
			repo, closer, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer closer.Close()

			msg, err := build(user.New(repo), ctx, model.UserID(userID))
			if err != nil {
				return goerr.Wrap(err, "failed to build brief", goerr.V("kind", name))
			}
			fmt.Fprintln(c.Root().Writer, msg)
			return nil
		}),
	}
}
