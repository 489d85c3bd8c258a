package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dotask/internal/config"
	"dotask/internal/logging"
	"dotask/internal/storage"
	"dotask/internal/ui"
)

type options struct {
	configPath string
	dbPath     string
}

// session is everything a command needs once the config has been read.
type session struct {
	cfg   config.Config
	log   *zap.Logger
	store *storage.Store
}

func (s *session) Close() {
	s.store.Close()
	_ = s.log.Sync()
}

func New() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:           "todo",
		Short:         "Manage tasks in the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open()
			if err != nil {
				return err
			}
			defer s.Close()
			if err := ui.Run(s.store, s.cfg, s.log); err != nil {
				return fmt.Errorf("error running program: %w", err)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&o.configPath, "config", "", "config file (default $DOTASK_CONFIG or ~/.config/dotask/config.toml)")
	cmd.PersistentFlags().StringVar(&o.dbPath, "db", "", "task database, overrides db_path from the config")

	addList(cmd, o)
	addStats(cmd, o)
	addShow(cmd, o)
	return cmd
}

func (o *options) open() (*session, error) {
	path := o.configPath
	if path == "" {
		path = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}

	log, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	store, err := storage.Open(cfg.DBPath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	log.Info("session started", zap.String("config", path), zap.String("db", cfg.DBPath))
	return &session{cfg: cfg, log: log, store: store}, nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := New().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
