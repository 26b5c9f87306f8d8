package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pixil98/go-antixray/internal/commands"
	"github.com/pixil98/go-antixray/internal/driver"
	"github.com/pixil98/go-antixray/internal/economy"
	"github.com/pixil98/go-antixray/internal/guard"
	"github.com/pixil98/go-antixray/internal/protocol"
	"github.com/pixil98/go-antixray/internal/session"
	"github.com/pixil98/go-antixray/internal/world"
)

const (
	DefaultEventTimeout = 5 * time.Second
	DefaultAdminTimeout = 10 * time.Second
)

// Runner executes a task on the driver loop and waits for it.
type Runner interface {
	Do(ctx context.Context, task driver.Task) error
}

// Gateway decodes host events arriving over NATS and runs them on the driver loop.
type Gateway struct {
	server   *NatsServer
	runner   Runner
	guard    *guard.Guard
	commands *commands.Handler

	eventTimeout time.Duration
	adminTimeout time.Duration
}

func NewGateway(s *NatsServer, r Runner, g *guard.Guard, h *commands.Handler, opts ...GatewayOpt) *Gateway {
	gw := &Gateway{
		server:       s,
		runner:       r,
		guard:        g,
		commands:     h,
		eventTimeout: DefaultEventTimeout,
		adminTimeout: DefaultAdminTimeout,
	}

	for _, opt := range opts {
		opt(gw)
	}

	return gw
}

// Start subscribes to the host subjects once the server is up and stays subscribed
// until ctx is cancelled.
func (g *Gateway) Start(ctx context.Context) error {
	select {
	case <-g.server.Ready():
	case <-ctx.Done():
		return nil
	}

	// One subscription keeps player and block events in publish order. Admin commands
	// may wait on lookups, so they get their own.
	events := map[string]Handler{
		protocol.SubjectPlayerJoin:   g.join,
		protocol.SubjectPlayerQuit:   g.quit,
		protocol.SubjectPlayerMove:   g.move,
		protocol.SubjectBlockPlace:   g.place,
		protocol.SubjectBlockBreak:   g.breakBlock,
		protocol.SubjectBlockExplode: g.explode,
	}
	unsubEvents, err := g.server.HandleRoutes(ctx, protocol.SubjectEvents, events)
	if err != nil {
		return err
	}
	defer unsubEvents()

	unsubAdmin, err := g.server.Handle(ctx, protocol.SubjectAdmin, g.admin)
	if err != nil {
		return err
	}
	defer unsubAdmin()

	slog.InfoContext(ctx, "gateway subscribed", "events", len(events))

	<-ctx.Done()
	return nil
}

// run executes task on the driver loop, bounded by the event timeout.
func (g *Gateway) run(ctx context.Context, task driver.Task) error {
	ctx, cancel := context.WithTimeout(ctx, g.eventTimeout)
	defer cancel()
	return g.runner.Do(ctx, task)
}

func (g *Gateway) join(ctx context.Context, data []byte) []byte {
	var ev protocol.PlayerJoin
	if err := decode(data, &ev); err != nil {
		slog.WarnContext(ctx, "decoding join", "error", err)
		return ack(ctx, err)
	}

	p := session.Player{
		ID:           ev.PlayerID,
		Name:         ev.Name,
		Position:     ev.Position,
		InVehicle:    ev.InVehicle,
		GameMode:     gameMode(ev.GameMode),
		Bypass:       ev.Bypass,
		PlayedBefore: ev.PlayedBefore,
	}
	err := g.run(ctx, func(ctx context.Context) {
		g.guard.Join(ctx, p)
	})
	if err != nil {
		slog.ErrorContext(ctx, "handling join", "player", ev.Name, "error", err)
	}
	return ack(ctx, err)
}

func (g *Gateway) quit(ctx context.Context, data []byte) []byte {
	var ev protocol.PlayerQuit
	if err := decode(data, &ev); err != nil {
		slog.WarnContext(ctx, "decoding quit", "error", err)
		return ack(ctx, err)
	}

	err := g.run(ctx, func(ctx context.Context) {
		g.guard.Quit(ctx, ev.PlayerID)
	})
	if err != nil {
		slog.ErrorContext(ctx, "handling quit", "id", ev.PlayerID, "error", err)
	}
	return ack(ctx, err)
}

func (g *Gateway) move(ctx context.Context, data []byte) []byte {
	var ev protocol.PlayerMove
	if err := decode(data, &ev); err != nil {
		slog.WarnContext(ctx, "decoding move", "error", err)
		return ack(ctx, err)
	}

	err := g.run(ctx, func(ctx context.Context) {
		g.guard.Move(ctx, ev.PlayerID, ev.Position, ev.InVehicle, gameMode(ev.GameMode), ev.Bypass)
	})
	if err != nil {
		slog.ErrorContext(ctx, "handling move", "id", ev.PlayerID, "error", err)
	}
	return ack(ctx, err)
}

func (g *Gateway) place(ctx context.Context, data []byte) []byte {
	var ev protocol.BlockPlace
	if err := decode(data, &ev); err != nil {
		slog.WarnContext(ctx, "decoding place", "error", err)
		return ack(ctx, err)
	}

	err := g.run(ctx, func(ctx context.Context) {
		g.guard.Place(ctx, ev.PlayerID, ev.Pos)
	})
	if err != nil {
		slog.ErrorContext(ctx, "handling place", "id", ev.PlayerID, "error", err)
	}
	return ack(ctx, err)
}

// breakBlock answers whether the host may let a break through. When the loop cannot
// decide in time the break is allowed and the error reported.
func (g *Gateway) breakBlock(ctx context.Context, data []byte) []byte {
	var ev protocol.BlockBreak
	if err := decode(data, &ev); err != nil {
		return encode(ctx, protocol.BreakReply{Allow: true, Error: err.Error()})
	}

	var res guard.BreakResult
	err := g.run(ctx, func(ctx context.Context) {
		res = g.guard.Break(ctx, ev.PlayerID, ev.Block.Identity(), ev.Pos)
	})
	if err != nil {
		slog.ErrorContext(ctx, "handling break, allowing", "id", ev.PlayerID, "pos", ev.Pos.String(), "error", err)
		return encode(ctx, protocol.BreakReply{Allow: true, Error: err.Error()})
	}

	reply := protocol.BreakReply{
		Allow:   res.Allowed(),
		Points:  res.Points,
		Message: res.Message,
	}
	switch res.Decision.Outcome {
	case economy.AllowAndCharge:
		reply.Charged = res.Decision.Amount
	case economy.Deny:
		reply.ETAMinutes = res.Decision.ETAMinutes
	}
	return encode(ctx, reply)
}

func (g *Gateway) explode(ctx context.Context, data []byte) []byte {
	var ev protocol.BlockExplode
	if err := decode(data, &ev); err != nil {
		return encode(ctx, protocol.ExplodeReply{Error: err.Error()})
	}

	items := make([]economy.Item, len(ev.Blocks))
	for i, b := range ev.Blocks {
		items[i] = economy.Item{Identity: b.Block.Identity(), Pos: b.Pos}
	}

	var keep []economy.Item
	err := g.run(ctx, func(ctx context.Context) {
		_, keep = g.guard.Explode(ctx, ev.World, items)
	})
	if err != nil {
		slog.ErrorContext(ctx, "handling explosion", "world", ev.World, "error", err)
		return encode(ctx, protocol.ExplodeReply{Error: err.Error()})
	}

	reply := protocol.ExplodeReply{Keep: make([]world.BlockPos, len(keep))}
	for i, it := range keep {
		reply.Keep[i] = it.Pos
	}
	return encode(ctx, reply)
}

// admin runs an /antixray command. Commands that look up players answer after the
// lookup, so the reply is awaited separately from the loop task.
func (g *Gateway) admin(ctx context.Context, data []byte) []byte {
	var ev protocol.AdminRequest
	if err := decode(data, &ev); err != nil {
		return encode(ctx, protocol.AdminReply{Error: err.Error()})
	}

	req := &commands.Request{
		SenderID:    ev.SenderID,
		SenderName:  ev.SenderName,
		Permissions: ev.Permissions,
		Args:        ev.Args,
	}

	replies := make(chan protocol.AdminReply, 1)
	reply := func(lines []string, err error) {
		out := protocol.AdminReply{Lines: lines}
		var ue *commands.UserError
		switch {
		case errors.As(err, &ue):
			out.Lines = strings.Split(ue.Message, "\n")
		case err != nil:
			slog.ErrorContext(ctx, "admin command failed", "args", ev.Args, "sender", ev.SenderName, "error", err)
			out.Error = err.Error()
		}
		select {
		case replies <- out:
		default:
		}
	}

	ctx, cancel := context.WithTimeout(ctx, g.adminTimeout)
	defer cancel()

	err := g.runner.Do(ctx, func(ctx context.Context) {
		g.commands.Exec(ctx, req, reply)
	})
	if err != nil {
		return encode(ctx, protocol.AdminReply{Error: err.Error()})
	}

	select {
	case out := <-replies:
		return encode(ctx, out)
	case <-ctx.Done():
		return encode(ctx, protocol.AdminReply{Error: fmt.Sprintf("command timed out: %v", ctx.Err())})
	}
}

func ack(ctx context.Context, err error) []byte {
	var a protocol.Ack
	if err != nil {
		a.Error = err.Error()
	}
	return encode(ctx, a)
}

func gameMode(s string) session.GameMode {
	return session.GameMode(strings.ToLower(s))
}

func decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}
	return nil
}

func encode(ctx context.Context, v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		slog.ErrorContext(ctx, "encoding reply", "error", err)
		return nil
	}
	return data
}
