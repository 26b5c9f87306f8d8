package protection

import "strings"

// Catalog maps material names to kinds.
type Catalog interface {
	Lookup(name string) (Kind, bool)
	Name(k Kind) (string, bool)
}

// Materials is a name keyed Catalog. Names are case-insensitive.
type Materials struct {
	byName map[string]Kind
	byKind map[Kind]string
}

// The legacy numeric ids of the ores and stones most servers protect.
var defaultMaterials = map[string]Kind{
	"STONE":                1,
	"GOLD_ORE":             14,
	"IRON_ORE":             15,
	"COAL_ORE":             16,
	"LAPIS_ORE":            21,
	"WOOL":                 35,
	"DIAMOND_ORE":          56,
	"REDSTONE_ORE":         73,
	"GLOWING_REDSTONE_ORE": 74,
	"MOSSY_COBBLESTONE":    48,
	"OBSIDIAN":             49,
	"EMERALD_ORE":          129,
	"QUARTZ_ORE":           153,
	"ANCIENT_DEBRIS":       2001,
}

// NewMaterials returns a catalog seeded with the built-in materials plus extra.
// Entries in extra replace built-ins with the same name.
func NewMaterials(extra map[string]int) *Materials {
	m := &Materials{
		byName: make(map[string]Kind, len(defaultMaterials)+len(extra)),
		byKind: make(map[Kind]string, len(defaultMaterials)+len(extra)),
	}
	for name, k := range defaultMaterials {
		m.add(name, k)
	}
	for name, k := range extra {
		m.add(name, Kind(k))
	}
	return m
}

func (m *Materials) add(name string, k Kind) {
	name = normalizeName(name)
	if old, ok := m.byName[name]; ok {
		delete(m.byKind, old)
	}
	m.byName[name] = k
	m.byKind[k] = name
}

func (m *Materials) Lookup(name string) (Kind, bool) {
	k, ok := m.byName[normalizeName(name)]
	return k, ok
}

func (m *Materials) Name(k Kind) (string, bool) {
	n, ok := m.byKind[k]
	return n, ok
}

func normalizeName(name string) string {
	name = strings.TrimSpace(strings.ToUpper(name))
	return strings.ReplaceAll(name, " ", "_")
}
