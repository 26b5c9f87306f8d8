package commands

import (
	"context"
	"log/slog"

	"github.com/pixil98/go-antixray/internal/messages"
)

func (h *Handler) reload(ctx context.Context, req *Request, reply Reply) error {
	if !req.Can(PermReload) {
		return h.noPermission()
	}

	err := h.reloader.Reload(ctx)
	if err != nil {
		slog.WarnContext(ctx, "reload failed", "sender", req.SenderName, "error", err)
		return h.userError(messages.ReloadFailed, messages.Args{"Error": err.Error()})
	}

	slog.InfoContext(ctx, "reloaded", "sender", req.SenderName)
	reply(h.wrap(h.say(messages.ReloadDone, nil)), nil)
	return nil
}
