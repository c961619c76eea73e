package record

import (
	"fmt"
	"net/netip"
	"strings"
)

// Type is a DNS record type we know how to manage.
type Type string

const (
	TypeUnknown Type = ""
	TypeA       Type = "A"
	TypeAAAA    Type = "AAAA"
	TypeCNAME   Type = "CNAME"
)

// ParseType normalizes a record type name from config.
func ParseType(name string) Type {
	switch strings.ToUpper(name) {
	case "A":
		return TypeA
	case "AAAA":
		return TypeAAAA
	case "CNAME":
		return TypeCNAME
	default:
		return TypeUnknown
	}
}

// Content is the value of a record. A content without an assigned value
// (its type is known but the literal was left empty) is filled from the
// detected public IP just before it is sent to a provider.
type Content struct {
	typ      Type
	addr     netip.Addr
	target   string
	assigned bool
}

func NewA(addr netip.Addr) Content {
	return Content{typ: TypeA, addr: addr, assigned: true}
}

func NewAAAA(addr netip.Addr) Content {
	return Content{typ: TypeAAAA, addr: addr, assigned: true}
}

func NewCNAME(target string) Content {
	return Content{typ: TypeCNAME, target: target, assigned: true}
}

func NewUnassigned(typ Type) Content {
	return Content{typ: typ}
}

// ParseContent builds a Content from the type and value literals found in
// config. An empty value with a known type yields an unassigned content.
func ParseContent(typeName, value string) (Content, error) {
	typ := ParseType(typeName)
	if typ == TypeUnknown {
		return Content{}, fmt.Errorf("unknown record type %q", typeName)
	}

	if value == "" {
		return NewUnassigned(typ), nil
	}

	switch typ {
	case TypeA:
		addr, err := netip.ParseAddr(value)
		if err != nil {
			return Content{}, fmt.Errorf("invalid A content %q: %w", value, err)
		}
		if !addr.Is4() {
			return Content{}, fmt.Errorf("invalid A content %q: not an IPv4 address", value)
		}
		return NewA(addr), nil

	case TypeAAAA:
		addr, err := netip.ParseAddr(value)
		if err != nil {
			return Content{}, fmt.Errorf("invalid AAAA content %q: %w", value, err)
		}
		if !addr.Is6() {
			return Content{}, fmt.Errorf("invalid AAAA content %q: not an IPv6 address", value)
		}
		return NewAAAA(addr), nil

	default:
		return NewCNAME(value), nil
	}
}

func (c Content) Type() Type {
	return c.typ
}

// Unassigned reports whether the content still needs a value filled in.
func (c Content) Unassigned() bool {
	return c.typ != TypeUnknown && !c.assigned
}

func (c Content) Addr() netip.Addr {
	return c.addr
}

func (c Content) Target() string {
	return c.target
}

// Value returns the content literal sent to a provider. It is empty for
// unassigned content.
func (c Content) Value() string {
	if !c.assigned {
		return ""
	}
	switch c.typ {
	case TypeA, TypeAAAA:
		return c.addr.String()
	case TypeCNAME:
		return c.target
	default:
		return ""
	}
}

func (c Content) String() string {
	if c.typ == TypeUnknown {
		return "(unknown)"
	}
	if !c.assigned {
		return fmt.Sprintf("%s (unassigned)", c.typ)
	}
	return fmt.Sprintf("%s %s", c.typ, c.Value())
}

// TTL is a record TTL in seconds. The zero value means "auto", letting the
// provider choose.
type TTL uint32

const TTLAuto TTL = 0

func (t TTL) IsAuto() bool {
	return t == TTLAuto
}

func (t TTL) String() string {
	if t.IsAuto() {
		return "auto"
	}
	return fmt.Sprintf("%d", uint32(t))
}

// Op is the declared intent for a record. Providers that reconcile by
// purge-and-create treat every op as a purge.
type Op string

const (
	OpCreate Op = "create"
	OpPurge  Op = "purge"
)

// Param is a provider-specific flag attached to a record, e.g. proxied.
type Param struct {
	Name  string
	Value string
}

type Params []Param

func (p Params) Get(name string) (string, bool) {
	for _, param := range p {
		if param.Name == name {
			return param.Value, true
		}
	}
	return "", false
}

func (p Params) IsTrue(name string) bool {
	value, ok := p.Get(name)
	return ok && value == "true"
}

// Attachment binds a record to zones of one provider.
type Attachment struct {
	Provider string
	Zones    []string
	Params   Params
}

// Configured is one record as declared in config, with its provider
// attachments and the fetchers it may take its content from.
type Configured struct {
	Name      string
	Content   Content
	Comment   string
	TTL       TTL
	Op        Op
	Params    Params
	Providers []Attachment
	Fetchers  []string
}

// Pending is the per-attachment projection of a Configured record, destined
// for one zone under one provider.
type Pending struct {
	Name    string
	Content Content
	Comment string
	TTL     TTL
	Op      Op
	Params  Params
}
