package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// Handler processes one message. A non-nil return is sent back when the sender
// asked for a reply.
type Handler func(ctx context.Context, data []byte) []byte

// NatsServer embeds a NATS server the host connects to, plus the client connection
// the service itself talks through.
type NatsServer struct {
	ns   *server.Server
	conn *nats.Conn

	ready chan struct{}

	startupTimeout time.Duration
	host           string
	port           int
}

func NewNatsServer(opts ...NatsServerOpt) (*NatsServer, error) {
	s := &NatsServer{
		startupTimeout: 10 * time.Second,
		host:           "127.0.0.1",
		port:           4222,
		ready:          make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	ns, err := server.NewServer(&server.Options{
		Host:   s.host,
		Port:   s.port,
		NoSigs: true, // Let the application handle signals
	})
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	s.ns = ns

	return s, nil
}

func (n *NatsServer) Start(ctx context.Context) error {
	n.ns.Start()

	if !n.ns.ReadyForConnections(n.startupTimeout) {
		n.ns.Shutdown()
		return fmt.Errorf("nats server not ready for connections")
	}

	// Create internal client connection
	conn, err := nats.Connect(n.ns.ClientURL(), nats.Name("antixray"))
	if err != nil {
		n.ns.Shutdown()
		return fmt.Errorf("creating nats client connection: %w", err)
	}
	n.conn = conn
	close(n.ready)

	slog.InfoContext(ctx, "nats server listening", "addr", n.ns.Addr())

	<-ctx.Done()
	// Drain lets in-flight handlers finish their replies.
	if err := n.conn.Drain(); err != nil {
		slog.Warn("draining nats connection", "error", err)
		n.conn.Close()
	}
	n.ns.Shutdown()
	n.ns.WaitForShutdown()

	return nil
}

// Ready is closed once the server accepts connections and the client is connected.
func (n *NatsServer) Ready() <-chan struct{} {
	return n.ready
}

// ClientURL is the address clients connect to.
func (n *NatsServer) ClientURL() string {
	return n.ns.ClientURL()
}

// Handle subscribes handler to subject. Messages are handled one at a time.
// Returns an unsubscribe function to remove the subscription.
func (n *NatsServer) Handle(ctx context.Context, subject string, handler Handler) (func(), error) {
	return n.subscribe(ctx, subject, func(string) (Handler, bool) {
		return handler, true
	})
}

// HandleRoutes subscribes once to a wildcard subject and hands each message to the
// route matching its concrete subject. Messages on every route are handled one at a
// time, in the order they were published.
func (n *NatsServer) HandleRoutes(ctx context.Context, wildcard string, routes map[string]Handler) (func(), error) {
	return n.subscribe(ctx, wildcard, func(subject string) (Handler, bool) {
		h, ok := routes[subject]
		return h, ok
	})
}

func (n *NatsServer) subscribe(ctx context.Context, subject string, route func(string) (Handler, bool)) (func(), error) {
	if n.conn == nil {
		return nil, fmt.Errorf("nats server not started")
	}
	sub, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler, ok := route(msg.Subject)
		if !ok {
			slog.DebugContext(ctx, "no handler for subject", "subject", msg.Subject)
			return
		}
		reply := handler(ctx, msg.Data)
		if reply == nil || msg.Reply == "" {
			return
		}
		if err := msg.Respond(reply); err != nil {
			slog.WarnContext(ctx, "responding to message", "subject", msg.Subject, "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribing to %q: %w", subject, err)
	}
	return func() {
		if err := sub.Unsubscribe(); err != nil && n.conn.IsConnected() {
			slog.Warn("unsubscribing", "subject", subject, "error", err)
		}
	}, nil
}

// Publish sends a message to the given subject
func (n *NatsServer) Publish(subject string, data []byte) error {
	if n.conn == nil {
		return fmt.Errorf("nats server not started")
	}
	return n.conn.Publish(subject, data)
}

// Request sends a message and waits for the first reply.
func (n *NatsServer) Request(ctx context.Context, subject string, data []byte) ([]byte, error) {
	if n.conn == nil {
		return nil, fmt.Errorf("nats server not started")
	}
	msg, err := n.conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		return nil, err
	}
	return msg.Data, nil
}
