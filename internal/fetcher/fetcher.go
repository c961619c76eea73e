package fetcher

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"time"

	"github.com/kofuk/dnssync/internal/record"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Fetcher detects the host's current public IP addresses.
type Fetcher interface {
	Fetch(ctx context.Context) (record.FetcherRecordSet, error)
}

// HTTPFetcher queries a set of IP detection backends over HTTP, once per
// address family each. Any failing request or unparsable body fails the
// whole fetch; there are no partial results.
type HTTPFetcher struct {
	backends []Backend
	v4Client *http.Client
	v6Client *http.Client
}

var _ Fetcher = (*HTTPFetcher)(nil)

type Option func(f *HTTPFetcher)

func WithBackends(backends ...Backend) Option {
	return func(f *HTTPFetcher) {
		f.backends = backends
	}
}

func WithV4Client(client *http.Client) Option {
	return func(f *HTTPFetcher) {
		f.v4Client = client
	}
}

func WithV6Client(client *http.Client) Option {
	return func(f *HTTPFetcher) {
		f.v6Client = client
	}
}

func NewHTTPFetcher(options ...Option) *HTTPFetcher {
	fetcher := &HTTPFetcher{
		backends: Backends(),
		v4Client: familyClient("tcp4"),
		v6Client: familyClient("tcp6"),
	}

	for _, opt := range options {
		opt(fetcher)
	}

	return fetcher
}

// familyClient builds an HTTP client whose connections are pinned to one
// address family, so the echoed address is of that family.
func familyClient(network string) *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
	}
	return &http.Client{
		Transport: otelhttp.NewTransport(transport),
		Timeout:   15 * time.Second,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context) (record.FetcherRecordSet, error) {
	var set record.FetcherRecordSet

	for _, backend := range f.backends {
		v4, err := f.fetchV4(ctx, backend)
		if err != nil {
			return nil, err
		}
		set = append(set, v4)

		v6, err := f.fetchV6(ctx, backend)
		if err != nil {
			return nil, err
		}
		set = append(set, v6)
	}

	return set, nil
}

func (f *HTTPFetcher) fetchV4(ctx context.Context, backend Backend) (record.FetcherRecord, error) {
	addr, err := f.fetchAddr(ctx, f.v4Client, backend, backend.V4URL())
	if err != nil {
		return record.FetcherRecord{}, err
	}
	if !addr.Is4() {
		return record.FetcherRecord{}, fmt.Errorf("backend %s: %s is not an IPv4 address", backend.Name(), addr)
	}
	return record.FetcherRecord{
		Content: record.NewA(addr),
		Labels:  []record.Label{{Key: "backend", Value: backend.Name()}},
	}, nil
}

func (f *HTTPFetcher) fetchV6(ctx context.Context, backend Backend) (record.FetcherRecord, error) {
	addr, err := f.fetchAddr(ctx, f.v6Client, backend, backend.V6URL())
	if err != nil {
		return record.FetcherRecord{}, err
	}
	if !addr.Is6() || addr.Is4() {
		return record.FetcherRecord{}, fmt.Errorf("backend %s: %s is not an IPv6 address", backend.Name(), addr)
	}
	return record.FetcherRecord{
		Content: record.NewAAAA(addr),
		Labels:  []record.Label{{Key: "backend", Value: backend.Name()}},
	}, nil
}

func (f *HTTPFetcher) fetchAddr(ctx context.Context, client *http.Client, backend Backend, url string) (netip.Addr, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("backend %s: %w", backend.Name(), err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("backend %s: %w", backend.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return netip.Addr{}, fmt.Errorf("backend %s: unexpected status %s", backend.Name(), resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("backend %s: %w", backend.Name(), err)
	}

	literal, err := backend.Parse(string(body))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("backend %s: %w", backend.Name(), err)
	}

	addr, err := netip.ParseAddr(literal)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("backend %s: invalid address %q: %w", backend.Name(), literal, err)
	}

	return addr, nil
}
