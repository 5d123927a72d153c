package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fa-friend/fa/pkg/server"
	"github.com/fa-friend/fa/pkg/service/mcp"
	"github.com/fa-friend/fa/pkg/usecase/alert"
	"github.com/fa-friend/fa/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 30 * time.Second

func serveCommand() *cli.Command {
	var (
		cfg           config
		logCfg        logConfig
		addr          string
		fetchInterval time.Duration
		mountMCP      bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Listen address",
			Value:       ":8000",
			Sources:     cli.EnvVars("FA_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "fetch-interval",
			Usage:       "Interval of the alert fetch cycle, 0 disables it",
			Value:       7 * time.Minute,
			Sources:     cli.EnvVars("FA_FETCH_INTERVAL"),
			Destination: &fetchInterval,
		},
		&cli.BoolFlag{
			Name:        "mcp",
			Usage:       "Serve MCP tools over streamable HTTP at /mcp",
			Sources:     cli.EnvVars("FA_SERVE_MCP"),
			Destination: &mountMCP,
		},
	}
	flags = append(flags, logFlags(&logCfg)...)
	flags = append(flags, repositoryFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, alertFlags(&cfg)...)
	flags = append(flags, storageFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API and the periodic alert fetcher",
		Flags: flags,
		Action: withLogger(&logCfg, func(ctx context.Context, c *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			logger := logging.From(ctx)

			repo, closer, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer closer.Close()

			chatUC, err := cfg.newChat(ctx, repo)
			if err != nil {
				return err
			}
			alertUC, err := cfg.newAlert(ctx, repo)
			if err != nil {
				return err
			}
			userUC, err := cfg.newUser(ctx, repo)
			if err != nil {
				return err
			}

			var opts []server.Option
			if mountMCP {
				opts = append(opts, server.WithMCP(mcp.New(userUC, alertUC).HTTPHandler()))
			}

			if fetchInterval > 0 {
				scheduler, err := startFetcher(ctx, alertUC, fetchInterval)
				if err != nil {
					return err
				}
				defer scheduler.Stop()
			}

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           server.New(chatUC, userUC, alertUC, opts...),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("starting server", "addr", addr)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return goerr.Wrap(err, "server stopped", goerr.V("addr", addr))
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shut down server")
			}
			return nil
		}),
	}
}

// startFetcher runs one fetch cycle right away and then on a schedule.
// A cycle still running when the next tick fires is not started twice,
// including the first one.
func startFetcher(ctx context.Context, uc *alert.UseCase, interval time.Duration) (*cron.Cron, error) {
	logger := logging.From(ctx)
	job := newFetchJob(ctx, uc)

	scheduler := cron.New()
	if _, err := scheduler.AddJob("@every "+interval.String(), job); err != nil {
		return nil, goerr.Wrap(err, "failed to schedule alert fetch", goerr.V("interval", interval))
	}

	go job.Run()
	scheduler.Start()
	logger.Info("alert fetcher scheduled", "interval", interval)
	return scheduler, nil
}

// newFetchJob wraps one fetch cycle so that calls overlapping a running
// cycle are skipped
func newFetchJob(ctx context.Context, uc *alert.UseCase) cron.Job {
	return cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		if _, err := uc.RunFetchCycle(ctx); err != nil {
			logging.From(ctx).Error("alert fetch cycle failed", logging.ErrAttr(err))
		}
	}))
}
