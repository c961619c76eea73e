package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kofuk/dnssync/internal/config"
	"github.com/spf13/cobra"
)

func Run(settings *config.Settings, args []string) int {
	cmd := &cobra.Command{
		Use:   "dnssync",
		Short: "Keep DNS records pointed at this network's public addresses",
	}
	cmd.SetArgs(args)
	cmd.AddCommand(
		NewSyncCommand(settings),
		NewDaemonCommand(settings),
		NewIPCommand(),
	)

	ctx, cancelFn := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancelFn()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	return 0
}
