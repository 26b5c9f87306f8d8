package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pixil98/go-testutil"

	"github.com/pixil98/go-antixray/internal/ledger"
	"github.com/pixil98/go-antixray/internal/lookup"
	"github.com/pixil98/go-antixray/internal/messages"
	"github.com/pixil98/go-antixray/internal/session"
)

type fakeLedgers struct {
	byID     map[uuid.UUID]*ledger.Ledger
	hydrated map[uuid.UUID]ledger.Hydration
	legacy   map[string]*ledger.Ledger
	saved    map[uuid.UUID]ledger.Record
	legSave  map[string]ledger.Record
	saveErr  error
}

func newFakeLedgers() *fakeLedgers {
	return &fakeLedgers{
		byID:     map[uuid.UUID]*ledger.Ledger{},
		hydrated: map[uuid.UUID]ledger.Hydration{},
		legacy:   map[string]*ledger.Ledger{},
		saved:    map[uuid.UUID]ledger.Record{},
		legSave:  map[string]ledger.Record{},
	}
}

func (f *fakeLedgers) GetOrCreate(ctx context.Context, id uuid.UUID, h ledger.Hydration) *ledger.Ledger {
	if l, ok := f.byID[id]; ok {
		return l
	}
	l := &ledger.Ledger{PlayerID: id, Name: h.Name}
	f.byID[id] = l
	f.hydrated[id] = h
	return l
}

func (f *fakeLedgers) GetIfPresent(ctx context.Context, id uuid.UUID) (*ledger.Ledger, bool) {
	l, ok := f.byID[id]
	return l, ok
}

func (f *fakeLedgers) GetLegacy(ctx context.Context, name string) (*ledger.Ledger, bool) {
	l, ok := f.legacy[name]
	return l, ok
}

func (f *fakeLedgers) Save(ctx context.Context, id uuid.UUID, l *ledger.Ledger) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[id] = l.Record()
	return nil
}

func (f *fakeLedgers) SaveLegacy(ctx context.Context, name string, l *ledger.Ledger) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.legSave[name] = l.Record()
	return nil
}

// fakeLookup answers synchronously from a fixed table.
type fakeLookup struct {
	players map[string]uuid.UUID
	err     error
	calls   int
}

func (f *fakeLookup) Lookup(ctx context.Context, name string, cb lookup.Callback) {
	f.calls++
	if f.err != nil {
		cb(ctx, lookup.Result{Name: name}, f.err)
		return
	}
	id, ok := f.players[strings.ToLower(name)]
	cb(ctx, lookup.Result{ID: id, Name: name, Found: ok}, nil)
}

type fakeReloader struct {
	err   error
	calls int
}

func (f *fakeReloader) Reload(ctx context.Context) error {
	f.calls++
	return f.err
}

type result struct {
	lines []string
	err   error
	calls int
}

func (r *result) reply(lines []string, err error) {
	r.calls++
	r.lines = lines
	r.err = err
}

func (r *result) text() string {
	if r.err != nil {
		return r.err.Error()
	}
	return strings.Join(r.lines, "\n")
}

var allPerms = []string{PermHelp, PermReload, PermCheckSelf, PermCheckOthers, PermSet}

func newTestHandler() (*Handler, *fakeLedgers, *fakeLookup, *fakeReloader) {
	ls := newFakeLedgers()
	lk := &fakeLookup{players: map[string]uuid.UUID{}}
	rl := &fakeReloader{}
	return NewHandler(ls, session.NewTracker(), lk, rl, messages.NewCatalog()), ls, lk, rl
}

func exec(h *Handler, req *Request) *result {
	r := &result{}
	h.Exec(context.Background(), req, r.reply)
	return r
}

func TestHandler_Register(t *testing.T) {
	h, _, _, _ := newTestHandler()

	err := h.Register(func(ctx context.Context, req *Request, reply Reply) error { return nil }, "CHECK")
	testutil.AssertErrorContains(t, err, "already registered")

	err = h.Register(nil, "other")
	testutil.AssertErrorContains(t, err, "cannot be nil")

	err = h.Register(func(ctx context.Context, req *Request, reply Reply) error {
		reply([]string{"pong"}, nil)
		return nil
	}, "ping")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := exec(h, &Request{Args: []string{"PING"}})
	testutil.AssertEqual(t, "lines", r.lines, []string{"pong"})
}

func TestHandler_Help(t *testing.T) {
	tests := map[string]struct {
		args   []string
		perms  []string
		expErr bool
	}{
		"no args":       {perms: allPerms},
		"help":          {args: []string{"help"}, perms: allPerms},
		"question mark": {args: []string{"?"}, perms: allPerms},
		"no permission": {args: []string{"help"}, expErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h, _, _, _ := newTestHandler()

			r := exec(h, &Request{Args: tt.args, Permissions: tt.perms})
			testutil.AssertEqual(t, "reply calls", r.calls, 1)
			if tt.expErr {
				testutil.AssertErrorContains(t, r.err, "no permission")
				return
			}
			if r.err != nil {
				t.Fatalf("unexpected error: %v", r.err)
			}
			testutil.AssertEqual(t, "header", r.lines[0], "&2--- &4AntiXRay &2---")
			for _, cmd := range []string{"/antixray reload", "/antixray check", "/antixray set"} {
				if !strings.Contains(r.text(), cmd) {
					t.Errorf("help is missing %q", cmd)
				}
			}
		})
	}
}

func TestHandler_UnknownCommand(t *testing.T) {
	h, _, _, _ := newTestHandler()

	r := exec(h, &Request{Args: []string{"dance"}, Permissions: allPerms})
	var ue *UserError
	if !errors.As(r.err, &ue) {
		t.Fatalf("expected user error, got %v", r.err)
	}
	testutil.AssertErrorContains(t, r.err, "Unknown command 'dance'")
}

func TestHandler_Reload(t *testing.T) {
	tests := map[string]struct {
		perms     []string
		reloadErr error
		expCalls  int
		expText   string
	}{
		"success": {
			perms:    allPerms,
			expCalls: 1,
			expText:  "AntiXRay was reloaded",
		},
		"failure": {
			perms:     allPerms,
			reloadErr: fmt.Errorf("settings.yml: bad yaml"),
			expCalls:  1,
			expText:   "previous settings are still active: settings.yml: bad yaml",
		},
		"no permission": {
			expText: "no permission",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h, _, _, rl := newTestHandler()
			rl.err = tt.reloadErr

			r := exec(h, &Request{Args: []string{"reload"}, Permissions: tt.perms})
			testutil.AssertEqual(t, "reload calls", rl.calls, tt.expCalls)
			if !strings.Contains(r.text(), tt.expText) {
				t.Errorf("reply %q does not contain %q", r.text(), tt.expText)
			}
		})
	}
}

func TestHandler_CheckSelf(t *testing.T) {
	id := uuid.New()

	tests := map[string]struct {
		sender  *uuid.UUID
		perms   []string
		expText string
	}{
		"player": {
			sender:  &id,
			perms:   []string{PermCheckSelf},
			expText: "Steve currently has 120 points.\n&eSteve has reached the limit 2 times.",
		},
		"console": {
			perms:   allPerms,
			expText: "can only be executed as a player",
		},
		"no permission": {
			sender:  &id,
			expText: "no permission",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h, ls, lk, _ := newTestHandler()
			ls.byID[id] = &ledger.Ledger{PlayerID: id, Points: 120, LimitReachedCount: 2}

			r := exec(h, &Request{SenderID: tt.sender, SenderName: "Steve", Permissions: tt.perms, Args: []string{"points"}})
			if !strings.Contains(r.text(), tt.expText) {
				t.Errorf("reply %q does not contain %q", r.text(), tt.expText)
			}
			testutil.AssertEqual(t, "lookups", lk.calls, 0)
		})
	}
}

func TestHandler_CheckSelfSeeding(t *testing.T) {
	id := uuid.New()

	tests := map[string]struct {
		online       bool
		playedBefore bool
		expText      string
		expHydration *ledger.Hydration
	}{
		"online veteran": {
			online:       true,
			playedBefore: true,
			expText:      "Steve currently has 0 points.",
			expHydration: &ledger.Hydration{Name: "Steve", PlayedBefore: true},
		},
		"online newcomer": {
			online:       true,
			expText:      "Steve currently has 0 points.",
			expHydration: &ledger.Hydration{Name: "Steve"},
		},
		"offline": {
			expText: "No player data was found for 'Steve'.",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ls := newFakeLedgers()
			tracker := session.NewTracker()
			if tt.online {
				tracker.Join(session.Player{ID: id, Name: "Steve", PlayedBefore: tt.playedBefore})
			}
			h := NewHandler(ls, tracker, &fakeLookup{}, &fakeReloader{}, messages.NewCatalog())

			r := exec(h, &Request{SenderID: &id, SenderName: "Steve", Permissions: []string{PermCheckSelf}, Args: []string{"check"}})
			if !strings.Contains(r.text(), tt.expText) {
				t.Errorf("reply %q does not contain %q", r.text(), tt.expText)
			}

			hyd, created := ls.hydrated[id]
			testutil.AssertEqual(t, "created", created, tt.expHydration != nil)
			if tt.expHydration != nil {
				testutil.AssertEqual(t, "hydration", hyd, *tt.expHydration)
			}
		})
	}
}

func TestHandler_CheckOthers(t *testing.T) {
	id := uuid.New()

	tests := map[string]struct {
		stored    bool
		legacy    bool
		lookupErr error
		perms     []string
		expText   string
	}{
		"stored ledger": {
			stored:  true,
			perms:   []string{PermCheckOthers},
			expText: "Alex currently has 300 points.",
		},
		"legacy only": {
			legacy:  true,
			perms:   []string{PermCheckOthers},
			expText: "Alex currently has 40 points.",
		},
		"legacy after failed lookup": {
			legacy:    true,
			lookupErr: fmt.Errorf("timeout"),
			perms:     []string{PermCheckOthers},
			expText:   "Alex currently has 40 points.",
		},
		"no data": {
			perms:   []string{PermCheckOthers},
			expText: "No player data was found for 'Alex'.",
		},
		"failed lookup without legacy": {
			lookupErr: fmt.Errorf("timeout"),
			perms:     []string{PermCheckOthers},
			expText:   "Could not look up 'Alex'",
		},
		"no permission": {
			stored:  true,
			perms:   []string{PermCheckSelf},
			expText: "no permission",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h, ls, lk, _ := newTestHandler()
			lk.players["alex"] = id
			lk.err = tt.lookupErr
			if tt.stored {
				ls.byID[id] = &ledger.Ledger{PlayerID: id, Points: 300}
			}
			if tt.legacy {
				ls.legacy["Alex"] = &ledger.Ledger{Name: "Alex", Points: 40}
			}

			r := exec(h, &Request{SenderName: "CONSOLE", Permissions: tt.perms, Args: []string{"check", "Alex"}})
			testutil.AssertEqual(t, "reply calls", r.calls, 1)
			if !strings.Contains(r.text(), tt.expText) {
				t.Errorf("reply %q does not contain %q", r.text(), tt.expText)
			}
		})
	}
}

func TestHandler_Set(t *testing.T) {
	id := uuid.New()

	tests := map[string]struct {
		args      []string
		legacy    bool
		saveErr   error
		expText   string
		expLookup bool
		expSaved  *ledger.Record
		expLegacy *ledger.Record
	}{
		"set points": {
			args:      []string{"set", "Alex", "points", "-50"},
			expText:   "Changes were successfully made.",
			expLookup: true,
			expSaved:  &ledger.Record{Points: -50, LimitReachedCount: 1},
		},
		"set counter": {
			args:      []string{"set", "Alex", "COUNTER", "7"},
			expText:   "Changes were successfully made.",
			expLookup: true,
			expSaved:  &ledger.Record{Points: 10, LimitReachedCount: 7},
		},
		"unchanged value skips save": {
			args:      []string{"set", "Alex", "points", "10"},
			expText:   "Changes were successfully made.",
			expLookup: true,
		},
		"legacy record": {
			args:      []string{"set", "Old", "points", "99"},
			legacy:    true,
			expText:   "Changes were successfully made.",
			expLookup: true,
			expLegacy: &ledger.Record{Points: 99},
		},
		"not a number": {
			args:    []string{"set", "Alex", "points", "lots"},
			expText: "'lots' is not a valid number.",
		},
		"negative counter": {
			args:    []string{"set", "Alex", "counter", "-1"},
			expText: "'-1' is not a valid number.",
		},
		"unknown field": {
			args:    []string{"set", "Alex", "gold", "1"},
			expText: "/antixray set <player> <points|counter> <value>",
		},
		"too few args": {
			args:    []string{"set", "Alex", "points"},
			expText: "/antixray set <player> <points|counter> <value>",
		},
		"unknown player": {
			args:      []string{"set", "Nobody", "points", "1"},
			expText:   "No player data was found for 'Nobody'.",
			expLookup: true,
		},
		"save failure": {
			args:      []string{"set", "Alex", "points", "1"},
			saveErr:   fmt.Errorf("disk full"),
			expText:   "disk full",
			expLookup: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h, ls, lk, _ := newTestHandler()
			lk.players["alex"] = id
			ls.byID[id] = &ledger.Ledger{PlayerID: id, Points: 10, LimitReachedCount: 1}
			ls.saveErr = tt.saveErr
			if tt.legacy {
				ls.legacy["Old"] = &ledger.Ledger{Name: "Old"}
			}

			r := exec(h, &Request{SenderName: "CONSOLE", Permissions: []string{PermSet}, Args: tt.args})
			testutil.AssertEqual(t, "reply calls", r.calls, 1)
			testutil.AssertEqual(t, "looked up", lk.calls > 0, tt.expLookup)
			if !strings.Contains(r.text(), tt.expText) {
				t.Errorf("reply %q does not contain %q", r.text(), tt.expText)
			}

			saved, ok := ls.saved[id]
			testutil.AssertEqual(t, "saved", ok, tt.expSaved != nil)
			if tt.expSaved != nil {
				testutil.AssertEqual(t, "saved record", saved, *tt.expSaved)
			}

			legacy, ok := ls.legSave["Old"]
			testutil.AssertEqual(t, "legacy saved", ok, tt.expLegacy != nil)
			if tt.expLegacy != nil {
				testutil.AssertEqual(t, "legacy record", legacy, *tt.expLegacy)
			}
		})
	}
}

func TestHandler_SetNoPermission(t *testing.T) {
	h, _, lk, _ := newTestHandler()

	r := exec(h, &Request{Permissions: []string{PermCheckOthers}, Args: []string{"set", "Alex", "points", "1"}})
	testutil.AssertErrorContains(t, r.err, "no permission")
	testutil.AssertEqual(t, "lookups", lk.calls, 0)
}
