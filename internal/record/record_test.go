package record_test

import (
	"net/netip"
	"testing"

	"github.com/kofuk/dnssync/internal/record"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Content", func() {
	DescribeTable("ParseContent", func(typeName, value string, expectsError bool, expected record.Content) {
		content, err := record.ParseContent(typeName, value)
		if expectsError {
			Expect(err).To(HaveOccurred())
		} else {
			Expect(err).NotTo(HaveOccurred())
			Expect(content).To(Equal(expected))
		}
	},
		Entry("A", "A", "8.8.8.8", false, record.NewA(netip.MustParseAddr("8.8.8.8"))),
		Entry("A lowercase type", "a", "8.8.8.8", false, record.NewA(netip.MustParseAddr("8.8.8.8"))),
		Entry("A with v6 literal", "A", "2001:db8::1", true, record.Content{}),
		Entry("A with garbage", "A", "not-an-ip", true, record.Content{}),
		Entry("A unassigned", "A", "", false, record.NewUnassigned(record.TypeA)),
		Entry("AAAA", "AAAA", "2001:db8::1", false, record.NewAAAA(netip.MustParseAddr("2001:db8::1"))),
		Entry("AAAA with v4 literal", "AAAA", "8.8.8.8", true, record.Content{}),
		Entry("AAAA unassigned", "aaaa", "", false, record.NewUnassigned(record.TypeAAAA)),
		Entry("CNAME", "CNAME", "web.example.com", false, record.NewCNAME("web.example.com")),
		Entry("CNAME unassigned", "cname", "", false, record.NewUnassigned(record.TypeCNAME)),
		Entry("Unknown type", "TXT", "hello", true, record.Content{}),
		Entry("Empty type", "", "8.8.8.8", true, record.Content{}),
	)

	It("reports unassigned content", func() {
		content := record.NewUnassigned(record.TypeA)
		Expect(content.Unassigned()).To(BeTrue())
		Expect(content.Value()).To(BeEmpty())

		content = record.NewA(netip.MustParseAddr("203.0.113.5"))
		Expect(content.Unassigned()).To(BeFalse())
		Expect(content.Value()).To(Equal("203.0.113.5"))
	})

	It("renders CNAME value", func() {
		Expect(record.NewCNAME("web.example.com").Value()).To(Equal("web.example.com"))
	})
})

var _ = Describe("TTL", func() {
	It("treats zero as auto", func() {
		Expect(record.TTLAuto.IsAuto()).To(BeTrue())
		Expect(record.TTL(300).IsAuto()).To(BeFalse())
		Expect(record.TTL(300).String()).To(Equal("300"))
		Expect(record.TTLAuto.String()).To(Equal("auto"))
	})
})

var _ = Describe("Params", func() {
	params := record.Params{
		{Name: "proxied", Value: "true"},
		{Name: "note", Value: "x"},
	}

	It("finds values by name", func() {
		value, ok := params.Get("note")
		Expect(ok).To(BeTrue())
		Expect(value).To(Equal("x"))

		_, ok = params.Get("missing")
		Expect(ok).To(BeFalse())
	})

	It("evaluates boolean params", func() {
		Expect(params.IsTrue("proxied")).To(BeTrue())
		Expect(params.IsTrue("note")).To(BeFalse())
		Expect(params.IsTrue("missing")).To(BeFalse())
	})
})

var _ = Describe("FetcherRecordSet", func() {
	It("takes the last record per family", func() {
		set := record.FetcherRecordSet{
			{Content: record.NewA(netip.MustParseAddr("192.0.2.1"))},
			{Content: record.NewAAAA(netip.MustParseAddr("2001:db8::1"))},
			{Content: record.NewA(netip.MustParseAddr("192.0.2.2"))},
		}

		ip := set.PublicIP()
		Expect(ip.HasV4()).To(BeTrue())
		Expect(ip.V4).To(Equal(netip.MustParseAddr("192.0.2.2")))
		Expect(ip.HasV6()).To(BeTrue())
		Expect(ip.V6).To(Equal(netip.MustParseAddr("2001:db8::1")))
	})

	It("leaves missing families invalid", func() {
		set := record.FetcherRecordSet{
			{Content: record.NewA(netip.MustParseAddr("192.0.2.1"))},
		}

		ip := set.PublicIP()
		Expect(ip.HasV4()).To(BeTrue())
		Expect(ip.HasV6()).To(BeFalse())
	})

	It("reports emptiness", func() {
		Expect(record.FetcherRecordSet{}.Empty()).To(BeTrue())
	})
})

func Test(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Record Suite")
}
