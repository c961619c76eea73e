package provider

import (
	"context"
	"fmt"

	"github.com/kofuk/dnssync/internal/config"
	"github.com/kofuk/dnssync/internal/provider/cloudflare"
	"github.com/kofuk/dnssync/internal/record"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Provider reconciles declared records against one DNS provider account.
type Provider interface {
	Name() string
	Sync(ctx context.Context, zones record.ZoneRecords, ip record.PublicIP) error
}

var _ Provider = (*cloudflare.Provider)(nil)

// New builds the implementation a provider declaration names.
func New(cfg config.Provider) (Provider, error) {
	switch cfg.Type {
	case "cloudflare":
		auth, err := cloudflareAuth(cfg.Authentication)
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", cfg.Name, err)
		}

		options := []cloudflare.Option{cloudflare.WithHTTPClient(otelhttp.DefaultClient)}
		if cfg.Endpoint != "" {
			options = append(options, cloudflare.WithBaseURL(cfg.Endpoint))
		}

		p, err := cloudflare.New(cfg.Name, auth, options...)
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", cfg.Name, err)
		}
		return p, nil

	default:
		return nil, fmt.Errorf("provider %q: unknown type %q", cfg.Name, cfg.Type)
	}
}

func cloudflareAuth(auth config.Authentication) (cloudflare.Auth, error) {
	switch auth.Method {
	case "api_token":
		token, _ := auth.Param("api_token")
		return cloudflare.AuthToken(token), nil
	case "api_key":
		email, _ := auth.Param("email")
		key, _ := auth.Param("key")
		return cloudflare.AuthKey(email, key), nil
	default:
		return cloudflare.Auth{}, fmt.Errorf("unknown authentication method %q", auth.Method)
	}
}
