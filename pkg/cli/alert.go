package cli

import (
	"context"
	"fmt"

	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/usecase/alert"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func alertCommand() *cli.Command {
	return &cli.Command{
		Name:  "alert",
		Usage: "Earthquake and news alerts",
		Commands: []*cli.Command{
			alertFetchCommand(),
			alertListCommand(),
		},
	}
}

func alertFetchCommand() *cli.Command {
	var (
		cfg    config
		logCfg logConfig
	)

	var flags []cli.Flag
	flags = append(flags, logFlags(&logCfg)...)
	flags = append(flags, repositoryFlags(&cfg)...)
	flags = append(flags, alertFlags(&cfg)...)

	return &cli.Command{
		Name:  "fetch",
		Usage: "Run one fetch cycle now",
		Flags: flags,
		Action: withLogger(&logCfg, func(ctx context.Context, c *cli.Command) error {
			repo, closer, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer closer.Close()

			uc, err := cfg.newAlert(ctx, repo)
			if err != nil {
				return err
			}

			result, err := uc.RunFetchCycle(ctx)
			if err != nil {
				return goerr.Wrap(err, "alert fetch cycle failed")
			}

			fmt.Fprintf(c.Root().Writer, "earthquakes: %d\tnews: %d\texpired: %d\n",
				result.Earthquakes, result.News, result.Expired)
			return nil
		}),
	}
}

func alertListCommand() *cli.Command {
	var (
		cfg      config
		logCfg   logConfig
		severity string
		limit    int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "severity",
			Aliases:     []string{"s"},
			Usage:       "Only CRITICAL, WARNING or INFO",
			Destination: &severity,
		},
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "Maximum number of alerts to list",
			Value:       alert.DefaultListLimit,
			Destination: &limit,
		},
	}
	flags = append(flags, logFlags(&logCfg)...)
	flags = append(flags, repositoryFlags(&cfg)...)

	return &cli.Command{
		Name:  "list",
		Usage: "List active alerts",
		Flags: flags,
		Action: withLogger(&logCfg, func(ctx context.Context, c *cli.Command) error {
			repo, closer, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer closer.Close()

			alerts, err := alert.New(repo).ListActive(ctx, alert.ListOptions{
				Severity: model.Severity(severity),
				Limit:    int(limit),
			})
			if err != nil {
				return goerr.Wrap(err, "failed to list alerts")
			}

			for _, a := range alerts {
				fmt.Fprintf(c.Root().Writer, "%s\t%s\t%s\n",
					a.FetchedAt.Format("2006-01-02 15:04"),
					a.Severity.Label(),
					a.Title,
				)
			}
			return nil
		}),
	}
}
