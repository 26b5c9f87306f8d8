package protection

import (
	"fmt"
	"strconv"
	"strings"
)

// AnySubKind marks an identity that matches every sub-kind of its kind.
const AnySubKind = -1

// MaxSubKind is the largest sub-kind value a configuration key may carry.
const MaxSubKind = 255

// Kind identifies a resource type (a block material).
type Kind int

// Identity is a (kind, sub-kind) pair. A SubKind of AnySubKind is a wildcard.
type Identity struct {
	Kind    Kind
	SubKind int
}

// NewIdentity returns an identity matching every sub-kind of k.
func NewIdentity(k Kind) Identity {
	return Identity{Kind: k, SubKind: AnySubKind}
}

// WithSubKind returns a copy of the identity narrowed to one sub-kind.
func (i Identity) WithSubKind(sub int) Identity {
	i.SubKind = sub
	return i
}

// Wildcard reports whether the identity matches any sub-kind.
func (i Identity) Wildcard() bool {
	return i.SubKind == AnySubKind
}

// Matches reports whether two identities describe the same resource. A wildcard on
// either side matches any sub-kind.
func (i Identity) Matches(o Identity) bool {
	if i.Kind != o.Kind {
		return false
	}
	return i.Wildcard() || o.Wildcard() || i.SubKind == o.SubKind
}

// ParseIdentity parses a configuration key of the form NAME, ID, NAME~SUB or ID~SUB.
func ParseIdentity(key string, cat Catalog) (Identity, error) {
	kindPart, subPart, hasSub := strings.Cut(strings.TrimSpace(key), "~")

	var kind Kind
	if id, err := strconv.Atoi(kindPart); err == nil {
		kind = Kind(id)
	} else {
		k, ok := cat.Lookup(kindPart)
		if !ok {
			return Identity{}, fmt.Errorf("%w: %q", ErrUnknownMaterial, kindPart)
		}
		kind = k
	}

	id := NewIdentity(kind)
	if !hasSub {
		return id, nil
	}

	sub, err := strconv.Atoi(subPart)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %q is not a number", ErrSubKindRange, subPart)
	}
	if sub == AnySubKind {
		return id, nil
	}
	if sub < 0 || sub > MaxSubKind {
		return Identity{}, fmt.Errorf("%w: %d", ErrSubKindRange, sub)
	}

	return id.WithSubKind(sub), nil
}

// Key returns the canonical configuration key for the identity.
func (i Identity) Key(cat Catalog) string {
	key := strconv.Itoa(int(i.Kind))
	if name, ok := cat.Name(i.Kind); ok {
		key = name
	}
	if !i.Wildcard() {
		key += "~" + strconv.Itoa(i.SubKind)
	}
	return key
}
