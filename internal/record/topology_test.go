package record_test

import (
	"net/netip"

	"github.com/kofuk/dnssync/internal/record"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BuildTopology", func() {
	It("groups records by provider and zone", func() {
		records := []record.Configured{
			{
				Name:    "home",
				Content: record.NewUnassigned(record.TypeA),
				Providers: []record.Attachment{
					{Provider: "cf1", Zones: []string{"example.com", "example.org"}},
				},
			},
			{
				Name:    "office",
				Content: record.NewA(netip.MustParseAddr("192.0.2.10")),
				Providers: []record.Attachment{
					{Provider: "cf1", Zones: []string{"example.com"}},
					{Provider: "cf2", Zones: []string{"example.net"}},
				},
			},
		}

		topology := record.BuildTopology(records)

		Expect(topology).To(HaveLen(2))
		Expect(topology["cf1"]).To(HaveLen(2))
		Expect(topology["cf1"]["example.com"]).To(HaveLen(2))
		Expect(topology["cf1"]["example.com"][0].Name).To(Equal("home"))
		Expect(topology["cf1"]["example.com"][1].Name).To(Equal("office"))
		Expect(topology["cf1"]["example.org"]).To(HaveLen(1))
		Expect(topology["cf2"]["example.net"]).To(HaveLen(1))
	})

	It("appends pending records across items sharing a zone", func() {
		attachment := record.Attachment{Provider: "cf1", Zones: []string{"example.com"}}
		records := []record.Configured{
			{Name: "a", Providers: []record.Attachment{attachment}},
			{Name: "b", Providers: []record.Attachment{attachment}},
			{Name: "c", Providers: []record.Attachment{attachment}},
		}

		topology := record.BuildTopology(records)

		names := []string{}
		for _, pending := range topology["cf1"]["example.com"] {
			names = append(names, pending.Name)
		}
		Expect(names).To(Equal([]string{"a", "b", "c"}))
	})

	It("merges record params with attachment params", func() {
		records := []record.Configured{
			{
				Name:   "home",
				Params: record.Params{{Name: "note", Value: "x"}},
				Providers: []record.Attachment{
					{
						Provider: "cf1",
						Zones:    []string{"example.com"},
						Params:   record.Params{{Name: "proxied", Value: "true"}},
					},
				},
			},
		}

		topology := record.BuildTopology(records)

		pending := topology["cf1"]["example.com"][0]
		Expect(pending.Params).To(HaveLen(2))
		Expect(pending.Params.IsTrue("proxied")).To(BeTrue())
		value, ok := pending.Params.Get("note")
		Expect(ok).To(BeTrue())
		Expect(value).To(Equal("x"))
	})

	It("omits providers nothing references", func() {
		topology := record.BuildTopology([]record.Configured{
			{Name: "home", Providers: []record.Attachment{{Provider: "cf1", Zones: []string{"example.com"}}}},
		})

		_, ok := topology["cf2"]
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("ReferencedFetchers", func() {
	It("deduplicates in first reference order", func() {
		records := []record.Configured{
			{Name: "a", Fetchers: []string{"default"}},
			{Name: "b", Fetchers: []string{"alt", "default"}},
		}

		Expect(record.ReferencedFetchers(records)).To(Equal([]string{"default", "alt"}))
	})

	It("returns nothing when no record names a fetcher", func() {
		Expect(record.ReferencedFetchers([]record.Configured{{Name: "a"}})).To(BeEmpty())
	})
})
