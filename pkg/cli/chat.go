package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/fa-friend/fa/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var (
		cfg    config
		logCfg logConfig
		userID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Aliases:     []string{"u"},
			Usage:       "User ID to chat as",
			Sources:     cli.EnvVars("FA_USER_ID"),
			Destination: &userID,
			Required:    true,
		},
	}
	flags = append(flags, logFlags(&logCfg)...)
	flags = append(flags, repositoryFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Chat with ฟ้า in the terminal",
		Flags: flags,
		Action: withLogger(&logCfg, func(ctx context.Context, c *cli.Command) error {
			repo, closer, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer closer.Close()

			uc, err := cfg.newChat(ctx, repo)
			if err != nil {
				return err
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "> ",
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
			})
			if err != nil {
				return goerr.Wrap(err, "failed to start line editor")
			}
			defer rl.Close()

			w := c.Root().Writer
			fmt.Fprintf(w, "Chat started as %s. Type 'exit' to quit.\n", userID)

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}

				message := strings.TrimSpace(line)
				if message == "exit" {
					break
				}
				if message == "" {
					continue
				}

				sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
				sp.Suffix = " ฟ้ากำลังพิมพ์..."
				sp.Start()
				result, err := uc.Send(ctx, model.UserID(userID), message)
				sp.Stop()
				if err != nil {
					return goerr.Wrap(err, "failed to send message")
				}

				fmt.Fprintf(w, "ฟ้า: %s\n", result.Reply)
				if result.HasReminder {
					fmt.Fprintf(w, "⏰ %s %s\n", result.ReminderTime, result.ReminderMessage)
				}
			}

			fmt.Fprintf(w, "\nChat session completed\n")
			return nil
		}),
	}
}
