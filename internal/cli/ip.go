package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/kofuk/dnssync/internal/fetcher"
	"github.com/spf13/cobra"
)

type IP struct {
	Backend string
}

func NewIPCommand() *cobra.Command {
	ip := &IP{}

	cmd := &cobra.Command{
		Use:   "ip",
		Short: "Detect and print this network's public addresses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ip.Run(cmd.Context())
		},
	}

	flags := cmd.Flags()

	flags.StringVarP(&ip.Backend, "backend", "b", "", "Query a single detection backend")

	return cmd
}

func (i *IP) Run(ctx context.Context) error {
	var options []fetcher.Option
	if i.Backend != "" {
		backend, err := fetcher.BackendByName(i.Backend)
		if err != nil {
			return err
		}
		options = append(options, fetcher.WithBackends(backend))
	}

	set, err := fetcher.NewHTTPFetcher(options...).Fetch(ctx)
	if err != nil {
		return err
	}

	ip := set.PublicIP()
	if !ip.HasV4() && !ip.HasV6() {
		return errors.New("no public address detected")
	}
	if ip.HasV4() {
		fmt.Println(ip.V4)
	}
	if ip.HasV6() {
		fmt.Println(ip.V6)
	}
	return nil
}
