package main

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/client"
	"github.com/spec-kit/helpdesk/internal/config"
)

// cli carries everything a command needs. It is built once per invocation.
type cli struct {
	format   string
	verbose  bool
	apiURL   string
	stateDir string
	backend  string

	logger  *zap.Logger
	session *client.Session
	cleanup []func()
}

func newRootCmd() *cobra.Command {
	app := &cli{}
	root := &cobra.Command{
		Use:   "helpdesk",
		Short: "Helpdesk ticket client",
		Long: `helpdesk talks to a helpdesk API server and keeps a local cache of
tickets, agents, filters and recent activity between runs.

Examples:
  helpdesk login --email ana@example.com --password secret
  helpdesk tickets create "Printer jam" --priority High --agent Ana
  helpdesk filter --status Open --search printer
  helpdesk tickets list --sort title --order asc`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			app.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&app.format, "format", "f", formatTable, "Output format: table|json|yaml")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "Log to stderr")
	flags.StringVar(&app.apiURL, "api", "", "API base URL (default $HELPDESK_API_URL)")
	flags.StringVar(&app.stateDir, "state-dir", "", "Directory of the local cache (default $CLIENT_STATE_DIR)")
	flags.StringVar(&app.backend, "state-backend", "", "Cache backend: file|redis (default $CLIENT_STATE_BACKEND)")

	root.AddCommand(
		newLoginCmd(app),
		newRegisterCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newTicketsCmd(app),
		newAgentsCmd(app),
		newFilterCmd(app),
		newSortCmd(app),
		newDashboardCmd(app),
		newReportCmd(app),
		newActivityCmd(app),
		newAICmd(app),
	)
	return root
}

func (a *cli) setup(cmd *cobra.Command) error {
	switch a.format {
	case formatTable, formatJSON, formatYAML:
	default:
		return fmt.Errorf("unknown format %q", a.format)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.Client.APIBaseURL = a.apiURL
	}
	if a.stateDir != "" {
		cfg.Client.StateDir = a.stateDir
	}
	if a.backend != "" {
		cfg.Client.StateBackend = a.backend
	}

	a.logger = zap.NewNop()
	if a.verbose {
		if a.logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}

	store, err := a.openStore(cfg)
	if err != nil {
		return err
	}
	a.session = client.NewSession(client.Options{
		API:           client.NewHTTPAPI(cfg.Client.APIBaseURL, cfg.Client.Timeout()),
		Store:         store,
		ActivityLimit: cfg.Client.ActivityLimit,
		Logger:        a.logger,
	})
	a.logger.Debug("loading state",
		zap.String("backend", cfg.Client.StateBackend),
		zap.String("api", cfg.Client.APIBaseURL))
	return a.session.Load(cmd.Context())
}

func (a *cli) openStore(cfg *config.Config) (client.StateStore, error) {
	switch cfg.Client.StateBackend {
	case config.StateBackendRedis:
		if cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("state backend redis requires REDIS_ADDR")
		}
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.cleanup = append(a.cleanup, func() { _ = rdb.Close() })
		return client.NewRedisStore(rdb, "helpdesk:"), nil
	case config.StateBackendFile:
		return client.NewFileStore(cfg.Client.StateDir)
	}
	return nil, fmt.Errorf("unknown state backend %q", cfg.Client.StateBackend)
}

func (a *cli) close() {
	for _, fn := range a.cleanup {
		fn()
	}
	a.cleanup = nil
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
