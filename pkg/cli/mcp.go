package cli

import (
	"context"

	"github.com/fa-friend/fa/pkg/service/mcp"
	"github.com/urfave/cli/v3"
)

func mcpCommand() *cli.Command {
	var (
		cfg    config
		logCfg logConfig
	)

	var flags []cli.Flag
	flags = append(flags, logFlags(&logCfg)...)
	flags = append(flags, repositoryFlags(&cfg)...)
	flags = append(flags, alertFlags(&cfg)...)

	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve alerts, memory and reminders as MCP tools over stdio",
		Flags: flags,
		Action: withLogger(&logCfg, func(ctx context.Context, c *cli.Command) error {
			repo, closer, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer closer.Close()

			alertUC, err := cfg.newAlert(ctx, repo)
			if err != nil {
				return err
			}
			userUC, err := cfg.newUser(ctx, repo)
			if err != nil {
				return err
			}

			return mcp.New(userUC, alertUC).ServeStdio(ctx)
		}),
	}
}
