package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/pixil98/go-antixray/internal/ledger"
	"github.com/pixil98/go-antixray/internal/lookup"
	"github.com/pixil98/go-antixray/internal/messages"
	"github.com/pixil98/go-antixray/internal/session"
)

// Capabilities the host may grant a command sender.
const (
	PermHelp        = "antixray.help"
	PermReload      = "antixray.reload"
	PermCheckSelf   = "antixray.check.self"
	PermCheckOthers = "antixray.check.others"
	PermSet         = "antixray.set"
)

// Request is one invocation of the admin command.
type Request struct {
	// SenderID is nil when the command comes from the console.
	SenderID    *uuid.UUID
	SenderName  string
	Permissions []string
	Args        []string
}

func (r *Request) Can(perm string) bool {
	return slices.Contains(r.Permissions, perm)
}

func (r *Request) IsPlayer() bool {
	return r.SenderID != nil
}

// Reply delivers the output of a command. It is called exactly once per Exec,
// possibly after Exec has returned.
type Reply func(lines []string, err error)

// CommandFunc runs a command. A returned error is delivered through the reply, so a
// command either returns an error or calls reply itself, never both.
type CommandFunc func(ctx context.Context, req *Request, reply Reply) error

// Ledgers is the part of the ledger store the commands use.
type Ledgers interface {
	GetOrCreate(ctx context.Context, id uuid.UUID, h ledger.Hydration) *ledger.Ledger
	GetIfPresent(ctx context.Context, id uuid.UUID) (*ledger.Ledger, bool)
	GetLegacy(ctx context.Context, name string) (*ledger.Ledger, bool)
	Save(ctx context.Context, id uuid.UUID, l *ledger.Ledger) error
	SaveLegacy(ctx context.Context, name string, l *ledger.Ledger) error
}

// Players reports who is online.
type Players interface {
	Get(id uuid.UUID) (session.Player, bool)
}

// Lookup resolves a player name, calling back on the driver loop.
type Lookup interface {
	Lookup(ctx context.Context, name string, cb lookup.Callback)
}

// Reloader re-reads the settings and messages.
type Reloader interface {
	Reload(ctx context.Context) error
}

type Handler struct {
	ledgers  Ledgers
	players  Players
	lookup   Lookup
	reloader Reloader
	messages *messages.Catalog

	commands map[string]CommandFunc
}

func NewHandler(l Ledgers, p Players, lk Lookup, r Reloader, catalog *messages.Catalog) *Handler {
	h := &Handler{
		ledgers:  l,
		players:  p,
		lookup:   lk,
		reloader: r,
		messages: catalog,
		commands: map[string]CommandFunc{},
	}

	// Register built-in commands
	h.mustRegister(h.help, "help", "?")
	h.mustRegister(h.reload, "reload")
	h.mustRegister(h.check, "check", "points")
	h.mustRegister(h.set, "set")
	return h
}

// Register adds a command under one or more names.
func (h *Handler) Register(fn CommandFunc, names ...string) error {
	if fn == nil {
		return fmt.Errorf("command func cannot be nil")
	}
	if len(names) == 0 {
		return fmt.Errorf("command needs a name")
	}
	for _, name := range names {
		key := strings.ToLower(name)
		if _, exists := h.commands[key]; exists {
			return fmt.Errorf("command %q already registered", name)
		}
		h.commands[key] = fn
	}
	return nil
}

func (h *Handler) mustRegister(fn CommandFunc, names ...string) {
	if err := h.Register(fn, names...); err != nil {
		panic(err)
	}
}

// Exec runs the sub command named by the first argument. No arguments shows help.
// Must be called on the driver loop.
func (h *Handler) Exec(ctx context.Context, req *Request, reply Reply) {
	name := "help"
	if len(req.Args) > 0 {
		name = strings.ToLower(req.Args[0])
	}

	fn, ok := h.commands[name]
	if !ok {
		reply(nil, h.userError(messages.UnknownCommand, messages.Args{"Command": name}))
		return
	}

	err := fn(ctx, req, reply)
	if err != nil {
		var ue *UserError
		if !errors.As(err, &ue) {
			slog.ErrorContext(ctx, "running command", "command", name, "sender", req.SenderName, "error", err)
		}
		reply(nil, err)
	}
}

func (h *Handler) say(id messages.ID, args messages.Args) string {
	return h.messages.Render(id, args)
}

func (h *Handler) userError(id messages.ID, args messages.Args) *UserError {
	return NewUserError(h.say(id, args))
}

func (h *Handler) noPermission() *UserError {
	return h.userError(messages.NoPermission, nil)
}
