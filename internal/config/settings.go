package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	goerrors "github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"

	"github.com/pixil98/go-antixray/internal/economy"
	"github.com/pixil98/go-antixray/internal/ledger"
	"github.com/pixil98/go-antixray/internal/protection"
)

// Settings is the reloadable settings document.
type Settings struct {
	Debug bool `yaml:"debug"`

	NewPlayerStartingPoints      int  `yaml:"new_player_starting_points"`
	PointsPerHour                int  `yaml:"points_per_hour"`
	MaximumPoints                int  `yaml:"maximum_points"`
	IgnoreMaxPointsForBlockRatio bool `yaml:"ignore_max_points_for_block_ratio"`
	ExemptCreativeModePlayers    bool `yaml:"exempt_creative_mode_players"`
	NotifyOnLimitReached         bool `yaml:"notify_on_limit_reached"`

	DefaultMaxHeight int            `yaml:"default_max_height"`
	Materials        map[string]int `yaml:"materials,omitempty"`
	ProtectedBlocks  BlockTable     `yaml:"protected_blocks"`
	Worlds           WorldTable     `yaml:"worlds"`
}

// Default returns the settings written when no document exists yet.
func Default() Settings {
	return Settings{
		NewPlayerStartingPoints:      -400,
		PointsPerHour:                800,
		MaximumPoints:                1600,
		IgnoreMaxPointsForBlockRatio: true,
		ExemptCreativeModePlayers:    true,
		NotifyOnLimitReached:         false,
		DefaultMaxHeight:             63,
		ProtectedBlocks: BlockTable{
			{Key: "DIAMOND_ORE", Block: Block{Value: intPtr(100), MaxHeight: intPtr(20)}},
			{Key: "EMERALD_ORE", Block: Block{Value: intPtr(50), MaxHeight: intPtr(35)}},
		},
		Worlds: WorldTable{
			{Name: "world", World: &World{
				ProtectedBlocks: BlockTable{
					{Key: "DIAMOND_ORE", Block: Block{Value: intPtr(100), MaxHeight: intPtr(20)}},
				},
			}},
			{Name: "world_nether", World: &World{DefaultMaxHeight: intPtr(256)}},
			{Name: "world_the_end", World: &World{DefaultMaxHeight: intPtr(256)}},
		},
	}
}

// Load reads the settings document at path. Keys missing from the document keep their
// default values. A missing document is created from the defaults.
func Load(path string) (Settings, error) {
	s := Default()

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("settings not found, writing defaults", "path", path)
		return s, Write(path, s)
	}
	if err != nil {
		return s, fmt.Errorf("reading settings: %w", err)
	}

	// An empty document keeps every default.
	if len(bytes.TrimSpace(b)) == 0 {
		return s, s.Validate()
	}

	if err := yaml.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return s, nil
}

// Write stores the settings document at path.
func Write(path string, s Settings) error {
	b, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshalling settings: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating settings dir: %w", err)
		}
	}

	err = os.WriteFile(path, b, 0644)
	if err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

func (s *Settings) Validate() error {
	el := goerrors.NewErrorList()

	if s.PointsPerHour <= 0 {
		el.Add(fmt.Errorf("points_per_hour must be positive"))
	}
	if s.MaximumPoints < s.NewPlayerStartingPoints {
		el.Add(fmt.Errorf("maximum_points must not be below new_player_starting_points"))
	}
	for name, id := range s.Materials {
		if name == "" {
			el.Add(fmt.Errorf("materials: name must be set"))
		}
		if id < 0 {
			el.Add(fmt.Errorf("materials %q: id must not be negative", name))
		}
	}
	for _, w := range s.Worlds {
		if w.Name == "" {
			el.Add(fmt.Errorf("worlds: name must be set"))
		}
	}

	return el.Err()
}

// Catalog returns the material catalog extended with the document's materials.
func (s *Settings) Catalog() *protection.Materials {
	return protection.NewMaterials(s.Materials)
}

// Layers converts the document into the input of protection.Build.
func (s *Settings) Layers() protection.Layers {
	l := protection.Layers{
		DefaultDepth: s.DefaultMaxHeight,
		Defaults:     entries(s.ProtectedBlocks),
	}

	for _, w := range s.Worlds {
		wl := protection.WorldLayer{Name: w.Name}
		if w.World != nil {
			wl.Configured = true
			wl.DefaultDepth = w.World.DefaultMaxHeight
			wl.Entries = entries(w.World.ProtectedBlocks)
		}
		l.Worlds = append(l.Worlds, wl)
	}

	return l
}

// Protections builds the protection snapshot. Skipped entries are returned as a
// non-fatal error next to a usable snapshot.
func (s *Settings) Protections() (*protection.Snapshot, error) {
	return protection.Build(s.Layers(), s.Catalog())
}

func (s *Settings) Policy() economy.Policy {
	return economy.Policy{
		PointsPerHour:                s.PointsPerHour,
		MaxPoints:                    s.MaximumPoints,
		IgnoreMaxPointsForBlockRatio: s.IgnoreMaxPointsForBlockRatio,
		NotifyOnLimitReached:         s.NotifyOnLimitReached,
	}
}

func (s *Settings) Seed() ledger.Seed {
	return ledger.Seed{
		StartingPoints: s.NewPlayerStartingPoints,
		MaxPoints:      s.MaximumPoints,
	}
}

// LogLevel is the slog level the document asks for.
func (s *Settings) LogLevel() slog.Level {
	if s.Debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func entries(t BlockTable) []protection.Entry {
	list := make([]protection.Entry, 0, len(t))
	for _, e := range t {
		list = append(list, protection.Entry{
			Key:          e.Key,
			Cost:         e.Block.Value,
			DepthCeiling: e.Block.MaxHeight,
		})
	}
	return list
}

func intPtr(i int) *int {
	return &i
}
