package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-antixray/internal/lookup"
	"github.com/pixil98/go-antixray/internal/protocol"
)

// Requester sends a message and waits for the reply.
type Requester interface {
	Request(ctx context.Context, subject string, data []byte) ([]byte, error)
}

// Resolver asks the host for players that are not online.
type Resolver struct {
	requester Requester
}

func NewResolver(r Requester) *Resolver {
	return &Resolver{requester: r}
}

func (r *Resolver) Resolve(ctx context.Context, name string) (lookup.Result, error) {
	data, err := json.Marshal(protocol.LookupRequest{Name: name})
	if err != nil {
		return lookup.Result{}, fmt.Errorf("encoding lookup: %w", err)
	}

	resp, err := r.requester.Request(ctx, protocol.SubjectPlayerLookup, data)
	if err != nil {
		return lookup.Result{}, fmt.Errorf("looking up %q: %w", name, err)
	}

	var reply protocol.LookupReply
	err = json.Unmarshal(resp, &reply)
	if err != nil {
		return lookup.Result{}, fmt.Errorf("decoding lookup reply: %w", err)
	}

	return lookup.Result{ID: reply.PlayerID, Name: reply.Name, Found: reply.Found}, nil
}
