package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/pixil98/go-antixray/internal/display"
	"github.com/pixil98/go-antixray/internal/economy"
	"github.com/pixil98/go-antixray/internal/messages"
	"github.com/pixil98/go-antixray/internal/protocol"
)

// Publisher sends a message without waiting for an answer.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// AlertPublisher tells staff when a player reaches the mining limit. The alert is
// logged and published for the host to relay to players holding the monitor
// capability.
type AlertPublisher struct {
	publisher Publisher
	messages  *messages.Catalog
}

func NewAlertPublisher(p Publisher, catalog *messages.Catalog) *AlertPublisher {
	return &AlertPublisher{
		publisher: p,
		messages:  catalog,
	}
}

func (a *AlertPublisher) LimitReached(ctx context.Context, ev economy.LimitEvent) {
	msg := a.messages.Render(messages.AdminNotification, messages.Args{
		"Player": ev.PlayerName,
		"Count":  ev.LimitReachedCount,
	})

	slog.InfoContext(ctx, display.StripCodes(msg),
		"player", ev.PlayerName, "id", ev.PlayerID, "pos", ev.Position.String())

	data, err := json.Marshal(protocol.LimitAlert{
		PlayerID:          ev.PlayerID,
		PlayerName:        ev.PlayerName,
		LimitReachedCount: ev.LimitReachedCount,
		Block:             protocol.BlockOf(ev.Identity),
		Pos:               ev.Position,
		Message:           msg,
	})
	if err != nil {
		slog.ErrorContext(ctx, "encoding limit alert", "error", err)
		return
	}

	err = a.publisher.Publish(protocol.SubjectLimitAlert, data)
	if err != nil {
		slog.WarnContext(ctx, "publishing limit alert", "player", ev.PlayerName, "error", err)
	}
}
