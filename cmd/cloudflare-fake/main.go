package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/kofuk/dnssync/internal/fake/cloudflare"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelDebug,
	})))

	token := os.Getenv("FAKE_CLOUDFLARE_TOKEN")
	if token == "" {
		token = "xxxxxxxxxx"
	}

	cf := cloudflare.NewCloudflare(cloudflare.Token(token))

	for _, name := range strings.Split(os.Getenv("FAKE_CLOUDFLARE_ZONES"), ",") {
		if name == "" {
			continue
		}
		zoneID := cf.AddZone(name)
		slog.Info("Zone created.", slog.String("zone", name), slog.String("id", zoneID))
	}

	addr := os.Getenv("FAKE_CLOUDFLARE_ADDR")
	if addr == "" {
		addr = "127.0.0.1:8020"
	}
	if err := cf.Start(addr); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
