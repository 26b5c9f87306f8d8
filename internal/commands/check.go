package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pixil98/go-antixray/internal/ledger"
	"github.com/pixil98/go-antixray/internal/lookup"
	"github.com/pixil98/go-antixray/internal/messages"
)

// check shows the sender's own points, or with a name those of another player.
func (h *Handler) check(ctx context.Context, req *Request, reply Reply) error {
	if len(req.Args) < 2 {
		if !req.IsPlayer() {
			return h.userError(messages.OnlyAsPlayer, nil)
		}
		if !req.Can(PermCheckSelf) {
			return h.noPermission()
		}

		l, ok := h.self(ctx, *req.SenderID)
		if !ok {
			return h.userError(messages.NoPlayerDataFound, messages.Args{"Player": req.SenderName})
		}
		reply(h.info(req.SenderName, l), nil)
		return nil
	}

	if !req.Can(PermCheckOthers) {
		return h.noPermission()
	}

	name := req.Args[1]
	h.lookup.Lookup(ctx, name, func(ctx context.Context, res lookup.Result, err error) {
		l, _, ok := h.find(ctx, name, res, err)
		if !ok {
			reply(nil, h.missing(name, err))
			return
		}
		reply(h.info(displayName(name, res), l), nil)
	})
	return nil
}

// self returns the sender's ledger. An online sender's ledger is seeded the same way
// the join seeded it. Offline senders are never given a new ledger.
func (h *Handler) self(ctx context.Context, id uuid.UUID) (*ledger.Ledger, bool) {
	if p, online := h.players.Get(id); online {
		return h.ledgers.GetOrCreate(ctx, id, p.Hydration()), true
	}
	return h.ledgers.GetIfPresent(ctx, id)
}

func (h *Handler) info(name string, l *ledger.Ledger) []string {
	lines := h.wrap(h.say(messages.CurrentPoints, messages.Args{"Player": name, "Points": l.Points}))
	return append(lines, h.wrap(h.say(messages.ReachedLimitCount, messages.Args{"Player": name, "Count": l.LimitReachedCount}))...)
}

// find returns the ledger of a looked up player, falling back to the legacy record
// stored under the name. legacy reports which of the two was found.
func (h *Handler) find(ctx context.Context, name string, res lookup.Result, lookupErr error) (l *ledger.Ledger, legacy bool, ok bool) {
	if lookupErr != nil {
		slog.WarnContext(ctx, "player lookup failed", "name", name, "error", lookupErr)
	} else if res.Found {
		l, ok = h.ledgers.GetIfPresent(ctx, res.ID)
		if ok {
			return l, false, true
		}
	}

	l, ok = h.ledgers.GetLegacy(ctx, name)
	return l, ok, ok
}

// missing is the error for a player without data. A failed lookup is reported as such
// because the player may well have data the host could not tell us about.
func (h *Handler) missing(name string, lookupErr error) error {
	if lookupErr != nil {
		return h.userError(messages.LookupFailed, messages.Args{"Player": name})
	}
	return h.userError(messages.NoPlayerDataFound, messages.Args{"Player": name})
}

func displayName(name string, res lookup.Result) string {
	if res.Found && res.Name != "" {
		return res.Name
	}
	return name
}
