package catalog

import "fmt"

// Kind identifies one of the four catalog entity kinds.
type Kind string

const (
	KindBusinessObject Kind = "business_object"
	KindDataElement    Kind = "data_element"
	KindDomain         Kind = "domain"
	KindRule           Kind = "rule"
)

// Kinds returns all entity kinds in their canonical order.
func Kinds() []Kind {
	return []Kind{KindBusinessObject, KindDataElement, KindDomain, KindRule}
}

// ParseKind validates a raw kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindBusinessObject, KindDataElement, KindDomain, KindRule:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown entity kind: %q", s)
}

// IDPrefix returns the id prefix used when minting ids for this kind.
func (k Kind) IDPrefix() string {
	switch k {
	case KindBusinessObject:
		return "BO"
	case KindDataElement:
		return "DE"
	case KindDomain:
		return "DOM"
	case KindRule:
		return "R"
	}
	return ""
}

func (k Kind) String() string {
	return string(k)
}
