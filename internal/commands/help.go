package commands

import (
	"context"
	"strings"

	"github.com/pixil98/go-antixray/internal/display"
	"github.com/pixil98/go-antixray/internal/messages"
)

var helpEntries = []struct {
	perm string
	cmd  messages.ID
	desc messages.ID
}{
	{PermReload, messages.CommandReloadCmd, messages.CommandReloadDesc},
	{PermCheckSelf, messages.CommandCheckCmd, messages.CommandCheckDesc},
	{PermSet, messages.CommandSetCmd, messages.CommandSetDesc},
}

func (h *Handler) help(ctx context.Context, req *Request, reply Reply) error {
	if !req.Can(PermHelp) {
		return h.noPermission()
	}

	lines := h.wrap(h.say(messages.CommandHelpHeader, nil))
	for _, e := range helpEntries {
		lines = append(lines, h.wrap(h.say(e.cmd, nil))...)
		lines = append(lines, h.wrap(h.say(e.desc, nil))...)
	}

	reply(lines, nil)
	return nil
}

func (h *Handler) wrap(text string) []string {
	return strings.Split(display.Wrap(text), "\n")
}
