package record

import "net/netip"

// Label annotates a fetched record with its origin.
type Label struct {
	Key   string
	Value string
}

// FetcherRecord is one IP detection result from one backend.
type FetcherRecord struct {
	Content Content
	Labels  []Label
}

// FetcherRecordSet collects the results of one full fetch pass across all
// enabled backends, in backend order.
type FetcherRecordSet []FetcherRecord

func (s FetcherRecordSet) Empty() bool {
	return len(s) == 0
}

// PublicIP reduces the set to at most one address per family. When several
// backends report the same family, the last one wins.
func (s FetcherRecordSet) PublicIP() PublicIP {
	var ip PublicIP
	for _, rec := range s {
		switch rec.Content.Type() {
		case TypeA:
			ip.V4 = rec.Content.Addr()
		case TypeAAAA:
			ip.V6 = rec.Content.Addr()
		}
	}
	return ip
}

// PublicIP is the host's detected public address per family. An invalid
// (zero) Addr means the family was not detected.
type PublicIP struct {
	V4 netip.Addr
	V6 netip.Addr
}

func (ip PublicIP) HasV4() bool {
	return ip.V4.IsValid()
}

func (ip PublicIP) HasV6() bool {
	return ip.V6.IsValid()
}
