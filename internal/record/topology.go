package record

// ZoneRecords maps a zone name to the records pending for it.
type ZoneRecords map[string][]Pending

// ProviderTopology groups pending records by provider name, then zone name.
type ProviderTopology map[string]ZoneRecords

// BuildTopology projects the configured records into per-provider, per-zone
// pending record lists. Records sharing a provider and zone accumulate in
// declaration order. Providers nobody references do not appear in the result.
func BuildTopology(records []Configured) ProviderTopology {
	topology := make(ProviderTopology)

	for _, rec := range records {
		for _, attachment := range rec.Providers {
			zones, ok := topology[attachment.Provider]
			if !ok {
				zones = make(ZoneRecords)
				topology[attachment.Provider] = zones
			}

			for _, zone := range attachment.Zones {
				zones[zone] = append(zones[zone], rec.pending(attachment))
			}
		}
	}

	return topology
}

func (r Configured) pending(attachment Attachment) Pending {
	params := make(Params, 0, len(r.Params)+len(attachment.Params))
	params = append(params, r.Params...)
	params = append(params, attachment.Params...)

	return Pending{
		Name:    r.Name,
		Content: r.Content,
		Comment: r.Comment,
		TTL:     r.TTL,
		Op:      r.Op,
		Params:  params,
	}
}

// ReferencedFetchers returns the fetcher names the records mention, in first
// reference order, deduplicated.
func ReferencedFetchers(records []Configured) []string {
	var names []string
	seen := make(map[string]struct{})

	for _, rec := range records {
		for _, name := range rec.Fetchers {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}

	return names
}
