package config

import (
	"context"
	"log/slog"

	"github.com/pixil98/go-antixray/internal/economy"
	"github.com/pixil98/go-antixray/internal/ledger"
	"github.com/pixil98/go-antixray/internal/protection"
)

type PolicySetter interface {
	SetPolicy(economy.Policy)
}

type SeedSetter interface {
	SetSeed(ledger.Seed)
}

type ExemptSetter interface {
	SetExemptCreative(bool)
}

// MessageLoader re-reads the message texts.
type MessageLoader interface {
	Load(path string) error
}

// Reloader re-reads the settings and messages documents and swaps the results into
// the running components.
type Reloader struct {
	settingsPath string
	messagesPath string

	registry *protection.Registry
	policy   PolicySetter
	seed     SeedSetter
	exempt   ExemptSetter
	messages MessageLoader
	level    *slog.LevelVar
}

func NewReloader(
	settingsPath string,
	messagesPath string,
	registry *protection.Registry,
	policy PolicySetter,
	seed SeedSetter,
	exempt ExemptSetter,
	messages MessageLoader,
	level *slog.LevelVar,
) *Reloader {
	return &Reloader{
		settingsPath: settingsPath,
		messagesPath: messagesPath,
		registry:     registry,
		policy:       policy,
		seed:         seed,
		exempt:       exempt,
		messages:     messages,
		level:        level,
	}
}

// Reload applies the settings on disk. A document that cannot be read or fails
// validation is rejected and the running settings stay in place. Skipped protection
// entries and broken message texts are logged, the rest still applies.
func (r *Reloader) Reload(ctx context.Context) error {
	s, err := Load(r.settingsPath)
	if err != nil {
		return err
	}

	r.Apply(ctx, s)

	err = r.messages.Load(r.messagesPath)
	if err != nil {
		slog.WarnContext(ctx, "some messages were not loaded", "path", r.messagesPath, "error", err)
	}

	return nil
}

// Apply swaps s into the running components.
func (r *Reloader) Apply(ctx context.Context, s Settings) {
	snap, err := s.Protections()
	if err != nil {
		slog.WarnContext(ctx, "skipped protected blocks", "error", err)
	}

	r.registry.Replace(snap)
	r.policy.SetPolicy(s.Policy())
	r.seed.SetSeed(s.Seed())
	r.exempt.SetExemptCreative(s.ExemptCreativeModePlayers)
	r.level.Set(s.LogLevel())

	slog.InfoContext(ctx, "settings applied",
		"worlds", len(snap.Worlds()),
		"points_per_hour", s.PointsPerHour,
		"maximum_points", s.MaximumPoints,
		"debug", s.Debug)
}
