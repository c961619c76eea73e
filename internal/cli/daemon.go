package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/kofuk/dnssync/internal/config"
	"github.com/kofuk/dnssync/internal/statusapi"
	"github.com/kofuk/dnssync/internal/syncer"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

type Daemon struct {
	ConfigPath string
	StatusAddr string
}

func NewDaemonCommand(settings *config.Settings) *cobra.Command {
	daemon := &Daemon{}

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Reconcile DNS records periodically",
		RunE: func(cmd *cobra.Command, args []string) error {
			return daemon.Run(cmd.Context())
		},
	}

	flags := cmd.Flags()

	flags.StringVarP(&daemon.ConfigPath, "config", "c", settings.ConfigPath, "Path to the configuration file")
	flags.StringVar(&daemon.StatusAddr, "status-addr", settings.StatusAddr, "Address to serve the status API on (empty disables it)")

	return cmd
}

// cronLogger routes the scheduler's messages to slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error(msg, append([]any{slog.Any("error", err)}, keysAndValues...)...)
}

func (d *Daemon) Run(ctx context.Context) error {
	cfg, err := config.Load(d.ConfigPath)
	if err != nil {
		return err
	}

	syn, err := syncer.New(cfg)
	if err != nil {
		return err
	}

	store := statusapi.NewStore()
	if d.StatusAddr != "" {
		server := statusapi.NewServer(store)
		go func() {
			if err := server.Start(d.StatusAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Status API server failed.", slog.Any("error", err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Error("Failed to shut down status API server.", slog.Any("error", err))
			}
		}()
		slog.Info("Status API listening.", slog.String("addr", d.StatusAddr))
	}

	pass := func() {
		// Run logs its own failures; the report keeps them for /status.
		report, _ := syn.Run(ctx)
		store.Set(report)
	}

	pass()

	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{})),
	)
	if _, err := c.AddFunc(fmt.Sprintf("@every %ds", cfg.CheckInterval), pass); err != nil {
		return err
	}
	c.Start()
	slog.Info("Scheduler started.", slog.Int("check_interval", cfg.CheckInterval))

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
