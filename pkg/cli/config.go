package cli

import (
	"context"
	"io"
	"time"

	"github.com/fa-friend/fa/pkg/adapter"
	"github.com/fa-friend/fa/pkg/repository"
	"github.com/fa-friend/fa/pkg/usecase/alert"
	"github.com/fa-friend/fa/pkg/usecase/chat"
	"github.com/fa-friend/fa/pkg/usecase/user"
	"github.com/fa-friend/fa/pkg/utils/logging"
	"github.com/fa-friend/fa/pkg/workflow"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

const (
	backendSQLite    = "sqlite"
	backendFirestore = "firestore"

	providerClaude = "claude"
	providerGemini = "gemini"
)

// config holds configuration values
type config struct {
	// Repository
	backend    string
	sqlitePath string
	project    string
	database   string

	// Model gateway
	provider        string
	anthropicAPIKey string
	claudeModel     string
	llmTimeout      time.Duration
	geminiProject   string
	geminiLocation  string
	geminiModel     string

	// Alerts
	feedConfig string
	policyDir  string

	// Export
	exportBucket string
	exportPrefix string
}

// repositoryFlags returns flags selecting and configuring the store
func repositoryFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "backend",
			Usage:       "Storage backend (sqlite, firestore)",
			Value:       backendSQLite,
			Sources:     cli.EnvVars("FA_BACKEND"),
			Destination: &cfg.backend,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Usage:       "Path of the SQLite database file",
			Value:       "fa.db",
			Sources:     cli.EnvVars("FA_SQLITE_PATH"),
			Destination: &cfg.sqlitePath,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
	}
}

// llmFlags returns flags for the model gateway
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm",
			Usage:       "Model provider (claude, gemini)",
			Value:       providerClaude,
			Sources:     cli.EnvVars("FA_LLM"),
			Destination: &cfg.provider,
		},
		&cli.StringFlag{
			Name:        "anthropic-api-key",
			Usage:       "Anthropic API key",
			Sources:     cli.EnvVars("ANTHROPIC_API_KEY"),
			Destination: &cfg.anthropicAPIKey,
		},
		&cli.StringFlag{
			Name:        "claude-model",
			Usage:       "Claude model name",
			Value:       adapter.DefaultClaudeModel,
			Sources:     cli.EnvVars("FA_CLAUDE_MODEL"),
			Destination: &cfg.claudeModel,
		},
		&cli.DurationFlag{
			Name:        "llm-timeout",
			Usage:       "Timeout of one model call",
			Value:       30 * time.Second,
			Sources:     cli.EnvVars("FA_LLM_TIMEOUT"),
			Destination: &cfg.llmTimeout,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model name",
			Value:       adapter.DefaultGeminiModel,
			Sources:     cli.EnvVars("GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
	}
}

// alertFlags returns flags for the feed fetcher
func alertFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "feed-config",
			Usage:       "YAML file listing news feeds and earthquake endpoints",
			Sources:     cli.EnvVars("FA_FEED_CONFIG"),
			Destination: &cfg.feedConfig,
		},
		&cli.StringFlag{
			Name:        "policy-dir",
			Usage:       "Directory of Rego policies (package feed) applied to fetched items",
			Sources:     cli.EnvVars("FA_POLICY_DIR"),
			Destination: &cfg.policyDir,
		},
	}
}

// storageFlags returns flags for user data export
func storageFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "export-bucket",
			Usage:       "Cloud Storage bucket for user data export",
			Sources:     cli.EnvVars("FA_EXPORT_BUCKET"),
			Destination: &cfg.exportBucket,
		},
		&cli.StringFlag{
			Name:        "export-prefix",
			Usage:       "Object prefix inside the export bucket",
			Sources:     cli.EnvVars("FA_EXPORT_PREFIX"),
			Destination: &cfg.exportPrefix,
		},
	}
}

// newRepository opens the configured store. The returned closer must be called.
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, io.Closer, error) {
	switch cfg.backend {
	case backendSQLite, "":
		if cfg.sqlitePath == "" {
			return nil, nil, goerr.New("sqlite-path is required")
		}
		repo, err := repository.NewSQLite(ctx, cfg.sqlitePath)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to open sqlite repository")
		}
		return repo, repo, nil

	case backendFirestore:
		if cfg.project == "" {
			return nil, nil, goerr.New("project is required")
		}
		if cfg.database == "" {
			return nil, nil, goerr.New("database is required")
		}
		repo, err := repository.NewFirestore(ctx, cfg.project, cfg.database)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create firestore repository")
		}
		return repo, repo, nil

	default:
		return nil, nil, goerr.New("unknown backend", goerr.V("backend", cfg.backend))
	}
}

// newLLM creates the configured model gateway. A missing key is not fatal:
// chat keeps answering locally and apologizes when the model is needed.
func (cfg *config) newLLM(ctx context.Context) (adapter.LLM, error) {
	switch cfg.provider {
	case providerClaude, "":
		if cfg.anthropicAPIKey == "" {
			logging.From(ctx).Warn("anthropic-api-key is not set, only local replies are available")
			return nil, nil
		}
		return adapter.NewClaude(cfg.anthropicAPIKey,
			adapter.WithClaudeModel(cfg.claudeModel),
			adapter.WithClaudeTimeout(cfg.llmTimeout),
		)

	case providerGemini:
		if cfg.geminiProject == "" {
			return nil, goerr.New("gemini-project is required")
		}
		if cfg.geminiLocation == "" {
			return nil, goerr.New("gemini-location is required")
		}
		return adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation,
			adapter.WithGenerativeModel(cfg.geminiModel),
			adapter.WithGeminiTimeout(cfg.llmTimeout),
		)

	default:
		return nil, goerr.New("unknown llm provider", goerr.V("llm", cfg.provider))
	}
}

// newChat builds the chat usecase around the configured gateway
func (cfg *config) newChat(ctx context.Context, repo repository.Repository) (*chat.UseCase, error) {
	llm, err := cfg.newLLM(ctx)
	if err != nil {
		return nil, err
	}
	return chat.New(repo, llm), nil
}

// newAlert builds the alert usecase with feeds and optional policy
func (cfg *config) newAlert(ctx context.Context, repo repository.Repository) (*alert.UseCase, error) {
	feeds := alert.DefaultFeedConfig()
	if cfg.feedConfig != "" {
		loaded, err := alert.LoadFeedConfig(cfg.feedConfig)
		if err != nil {
			return nil, err
		}
		feeds = loaded
	}
	opts := feeds.Options()

	if cfg.policyDir != "" {
		engine, err := workflow.New(ctx, cfg.policyDir)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load feed policy")
		}
		opts = append(opts, alert.WithPolicy(engine))
	}

	return alert.New(repo, opts...), nil
}

// newUser builds the user usecase. Export is enabled only with a bucket.
func (cfg *config) newUser(ctx context.Context, repo repository.Repository) (*user.UseCase, error) {
	var opts []user.Option
	if cfg.exportBucket != "" {
		storage, err := adapter.NewStorage(ctx, cfg.exportBucket, cfg.exportPrefix)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create storage")
		}
		opts = append(opts, user.WithStorage(storage))
	}
	return user.New(repo, opts...), nil
}
