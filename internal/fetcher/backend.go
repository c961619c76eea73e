package fetcher

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoIPInTrace is returned when a trace response has no usable ip= line.
var ErrNoIPInTrace = errors.New("no ip line in trace response")

// Backend is one IP detection service. Each backend publishes one URL per
// address family; the service echoes the caller's observed address for
// whichever family carried the connection.
type Backend interface {
	Name() string
	V4URL() string
	V6URL() string
	Parse(body string) (string, error)
}

const (
	BackendCloudflareTrace = "cloudflare-trace"
	BackendIpw             = "ipw"
)

// Backends returns every known backend, in default query order.
func Backends() []Backend {
	return []Backend{cloudflareTraceBackend{}, ipwBackend{}}
}

// BackendByName resolves a backend name from config.
func BackendByName(name string) (Backend, error) {
	switch name {
	case BackendCloudflareTrace:
		return cloudflareTraceBackend{}, nil
	case BackendIpw:
		return ipwBackend{}, nil
	default:
		return nil, fmt.Errorf("unknown fetcher backend %q", name)
	}
}

// cloudflareTraceBackend reads the ip= line of Cloudflare's cdn-cgi/trace
// key=value response.
type cloudflareTraceBackend struct{}

func (cloudflareTraceBackend) Name() string {
	return BackendCloudflareTrace
}

func (cloudflareTraceBackend) V4URL() string {
	return "https://1.1.1.1/cdn-cgi/trace"
}

func (cloudflareTraceBackend) V6URL() string {
	return "https://[2606:4700:4700::1111]/cdn-cgi/trace"
}

func (cloudflareTraceBackend) Parse(body string) (string, error) {
	for _, line := range strings.Split(body, "\n") {
		value, ok := strings.CutPrefix(line, "ip=")
		if !ok {
			continue
		}
		if value == "" {
			return "", fmt.Errorf("%w: empty ip value", ErrNoIPInTrace)
		}
		return value, nil
	}
	return "", ErrNoIPInTrace
}

// ipwBackend answers with the bare address as the whole response body.
type ipwBackend struct{}

func (ipwBackend) Name() string {
	return BackendIpw
}

func (ipwBackend) V4URL() string {
	return "http://4.ipw.cn"
}

func (ipwBackend) V6URL() string {
	return "http://6.ipw.cn"
}

func (ipwBackend) Parse(body string) (string, error) {
	return strings.TrimSpace(body), nil
}
