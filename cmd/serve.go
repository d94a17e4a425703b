package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/pubzy/giveaways/internal/api"
	"github.com/pubzy/giveaways/internal/config"
	"github.com/pubzy/giveaways/internal/notify/email"
	"github.com/pubzy/giveaways/internal/scheduler"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the giveaways server",
	Long:  `Start the API server together with the background jobs.`,
	Example: `giveaways serve --config config.yml
giveaways serve -c /path/to/config.yml --log-level debug
`,
	RunE: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func startServer(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := openStack(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer st.Close()

	if err := st.storage.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize tables: %w", err)
	}

	sched, err := scheduler.New()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	jobs := []scheduler.Job{
		scheduler.CommunityStatsJob(st.storage),
	}
	if cfg.Cache.Type == config.CacheTypeMemory {
		jobs = append(jobs, scheduler.CacheSweepJob(st.cache, cfg.Cache.GetSweepInterval()))
	}
	for _, job := range jobs {
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("failed to add job %s: %w", job.ID, err)
		}
	}

	opts := []api.Option{
		api.WithCache(st.cache),
		api.WithScheduler(sched),
	}
	if notifier := email.New(cfg.Email, cfg.ServerURL); notifier.Enabled() {
		opts = append(opts, api.WithNotifier(notifier))
	}

	server, err := api.New(cfg, st.storage, log.GetLevel() == log.DebugLevel, opts...)
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			log.Error("failed to stop scheduler", "error", err)
		}
	}()
	log.Info("giveaways started successfully", "listen", cfg.Listen)
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("API server error: %w", err)
	}
	log.Info("shut down gracefully")
	return nil
}
