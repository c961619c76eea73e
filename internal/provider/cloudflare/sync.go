package cloudflare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/kofuk/dnssync/internal/record"
)

var (
	// ErrAmbiguousZone means a zone name lookup matched more than one zone.
	ErrAmbiguousZone = errors.New("cloudflare: multiple zones found")
	// ErrMissingAddress means an unassigned record could not be filled
	// because the needed address family was not detected.
	ErrMissingAddress = errors.New("cloudflare: no detected address for record")
)

// Provider reconciles records against one Cloudflare account. Every record
// is applied with purge semantics: all remote records sharing the name are
// deleted and the desired record is created, in one atomic batch per record.
type Provider struct {
	name   string
	client *Client
}

func New(name string, auth Auth, options ...Option) (*Provider, error) {
	client, err := NewClient(auth, options...)
	if err != nil {
		return nil, err
	}

	return &Provider{name: name, client: client}, nil
}

func (p *Provider) Name() string {
	return p.name
}

// Sync reconciles the pending records of each zone. A zone whose name
// resolves to nothing is logged and skipped; any other zone failure stops
// the provider.
func (p *Provider) Sync(ctx context.Context, zones record.ZoneRecords, ip record.PublicIP) error {
	for _, zoneName := range slices.Sorted(maps.Keys(zones)) {
		if err := p.syncZone(ctx, zoneName, zones[zoneName], ip); err != nil {
			return fmt.Errorf("zone %s: %w", zoneName, err)
		}
	}
	return nil
}

func (p *Provider) syncZone(ctx context.Context, zoneName string, pending []record.Pending, ip record.PublicIP) error {
	zone, found, err := p.findZone(ctx, zoneName)
	if err != nil {
		return err
	}
	if !found {
		slog.Warn("Zone not found; skipping.",
			slog.String("provider", p.name),
			slog.String("zone", zoneName))
		return nil
	}

	for _, rec := range pending {
		if err := p.syncRecord(ctx, zone, rec, ip); err != nil {
			return err
		}
	}

	return nil
}

func (p *Provider) findZone(ctx context.Context, name string) (Zone, bool, error) {
	zones, err := p.client.ListZones(ctx, name)
	if err != nil {
		return Zone{}, false, err
	}

	switch len(zones) {
	case 0:
		return Zone{}, false, nil
	case 1:
		return zones[0], true, nil
	default:
		return Zone{}, false, fmt.Errorf("%w: %s", ErrAmbiguousZone, name)
	}
}

func (p *Provider) syncRecord(ctx context.Context, zone Zone, rec record.Pending, ip record.PublicIP) error {
	// Both ops take the same path here: purge whatever matches, then recreate.
	name := qualifyName(rec.Name, zone.Name)

	content, err := fillContent(rec.Content, ip)
	if err != nil {
		return fmt.Errorf("record %s: %w", name, err)
	}

	existing, err := p.client.ListRecordsByName(ctx, zone.ID, name)
	if err != nil {
		return fmt.Errorf("record %s: %w", name, err)
	}

	deletes := make([]string, 0, len(existing))
	for _, r := range existing {
		deletes = append(deletes, r.ID)
	}

	post := Record{
		Type:    string(content.Type()),
		Name:    name,
		Content: content.Value(),
		TTL:     ttlValue(rec.TTL),
		Proxied: rec.Params.IsTrue("proxied"),
		Comment: rec.Comment,
	}

	if err := p.client.BatchRecords(ctx, zone.ID, deletes, []Record{post}); err != nil {
		return fmt.Errorf("record %s: %w", name, err)
	}

	slog.Debug("Applied record batch.",
		slog.String("provider", p.name),
		slog.String("zone", zone.Name),
		slog.String("record", name),
		slog.Int("deleted", len(deletes)))

	return nil
}

// qualifyName appends the zone to a record name unless the name already
// ends with it.
func qualifyName(name, zone string) string {
	if strings.HasSuffix(name, zone) {
		return name
	}
	return name + "." + zone
}

// fillContent resolves unassigned content from the detected public IP.
// A missing address family fails the whole zone rather than letting a
// purge run without a replacement.
func fillContent(content record.Content, ip record.PublicIP) (record.Content, error) {
	if !content.Unassigned() {
		return content, nil
	}

	switch content.Type() {
	case record.TypeA:
		if !ip.HasV4() {
			return record.Content{}, fmt.Errorf("%w: IPv4 not detected", ErrMissingAddress)
		}
		return record.NewA(ip.V4), nil

	case record.TypeAAAA:
		if !ip.HasV6() {
			return record.Content{}, fmt.Errorf("%w: IPv6 not detected", ErrMissingAddress)
		}
		return record.NewAAAA(ip.V6), nil

	default:
		return record.Content{}, fmt.Errorf("%w: %s content cannot be detected", ErrMissingAddress, content.Type())
	}
}

// ttlValue maps auto TTLs to Cloudflare's sentinel value.
func ttlValue(ttl record.TTL) uint32 {
	if ttl.IsAuto() {
		return 1
	}
	return uint32(ttl)
}
