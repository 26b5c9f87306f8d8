package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pixil98/go-antixray/internal/ledger"
	"github.com/pixil98/go-antixray/internal/lookup"
	"github.com/pixil98/go-antixray/internal/messages"
)

const (
	fieldPoints  = "points"
	fieldCounter = "counter"
)

// set overwrites a player's points or limit counter: set <player> <points|counter> <value>
func (h *Handler) set(ctx context.Context, req *Request, reply Reply) error {
	if !req.Can(PermSet) {
		return h.noPermission()
	}
	if len(req.Args) != 4 {
		return h.userError(messages.CommandSetCmd, nil)
	}

	name := req.Args[1]
	field := strings.ToLower(req.Args[2])
	raw := req.Args[3]

	if field != fieldPoints && field != fieldCounter {
		return h.userError(messages.CommandSetCmd, nil)
	}
	value, err := strconv.Atoi(raw)
	if err != nil || (field == fieldCounter && value < 0) {
		return h.userError(messages.InvalidNumber, messages.Args{"Value": raw})
	}

	h.lookup.Lookup(ctx, name, func(ctx context.Context, res lookup.Result, err error) {
		l, legacy, ok := h.find(ctx, name, res, err)
		if !ok {
			reply(nil, h.missing(name, err))
			return
		}

		if !apply(l, field, value) {
			reply(h.wrap(h.say(messages.ChangesAreDone, nil)), nil)
			return
		}

		if legacy {
			err = h.ledgers.SaveLegacy(ctx, name, l)
		} else {
			err = h.ledgers.Save(ctx, res.ID, l)
		}
		if err != nil {
			reply(nil, fmt.Errorf("saving %s: %w", name, err))
			return
		}

		slog.InfoContext(ctx, "ledger changed by command",
			"sender", req.SenderName, "player", name, "field", field, "value", value, "legacy", legacy)
		reply(h.wrap(h.say(messages.ChangesAreDone, nil)), nil)
	})
	return nil
}

// apply sets the field and reports whether the value changed.
func apply(l *ledger.Ledger, field string, value int) bool {
	switch field {
	case fieldPoints:
		if l.Points == value {
			return false
		}
		l.Points = value
	case fieldCounter:
		if l.LimitReachedCount == value {
			return false
		}
		l.LimitReachedCount = value
	}
	return true
}
