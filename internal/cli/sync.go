package cli

import (
	"context"

	"github.com/kofuk/dnssync/internal/config"
	"github.com/kofuk/dnssync/internal/syncer"
	"github.com/spf13/cobra"
)

type Sync struct {
	ConfigPath string
}

func NewSyncCommand(settings *config.Settings) *cobra.Command {
	sync := &Sync{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a single reconciliation pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sync.Run(cmd.Context())
		},
	}

	flags := cmd.Flags()

	flags.StringVarP(&sync.ConfigPath, "config", "c", settings.ConfigPath, "Path to the configuration file")

	return cmd
}

func (s *Sync) Run(ctx context.Context) error {
	cfg, err := config.Load(s.ConfigPath)
	if err != nil {
		return err
	}

	syn, err := syncer.New(cfg)
	if err != nil {
		return err
	}

	_, err = syn.Run(ctx)
	return err
}
