package protocol

import (
	"github.com/google/uuid"

	"github.com/pixil98/go-antixray/internal/protection"
	"github.com/pixil98/go-antixray/internal/world"
)

// Subjects the service listens and publishes on. Player and block events share the
// SubjectEvents prefix and are handled in the order the host published them.
const (
	SubjectEvents       = "antixray.event.>"
	SubjectPlayerJoin   = "antixray.event.player.join"
	SubjectPlayerQuit   = "antixray.event.player.quit"
	SubjectPlayerMove   = "antixray.event.player.move"
	SubjectBlockPlace   = "antixray.event.block.place"
	SubjectBlockBreak   = "antixray.event.block.break"
	SubjectBlockExplode = "antixray.event.block.explode"
	SubjectAdmin        = "antixray.admin"
	SubjectLimitAlert   = "antixray.alert.limit"
	SubjectPlayerLookup = "host.player.lookup"
)

// Block is a block type as the host reports it. SubKind is the data value.
type Block struct {
	Kind    int `json:"kind"`
	SubKind int `json:"sub_kind"`
}

func (b Block) Identity() protection.Identity {
	return protection.NewIdentity(protection.Kind(b.Kind)).WithSubKind(b.SubKind)
}

// Ack answers join, quit, move and place events when the host sends them as requests.
type Ack struct {
	Error string `json:"error,omitempty"`
}

type PlayerJoin struct {
	PlayerID     uuid.UUID      `json:"player_id"`
	Name         string         `json:"name"`
	PlayedBefore bool           `json:"played_before"`
	Position     world.Position `json:"position"`
	InVehicle    bool           `json:"in_vehicle"`
	GameMode     string         `json:"game_mode"`
	Bypass       bool           `json:"bypass"`
}

type PlayerQuit struct {
	PlayerID uuid.UUID `json:"player_id"`
}

// PlayerMove is sent on movement and whenever the game mode or bypass capability changes.
type PlayerMove struct {
	PlayerID  uuid.UUID      `json:"player_id"`
	Position  world.Position `json:"position"`
	InVehicle bool           `json:"in_vehicle"`
	GameMode  string         `json:"game_mode,omitempty"`
	Bypass    bool           `json:"bypass"`
}

type BlockPlace struct {
	PlayerID uuid.UUID      `json:"player_id"`
	Pos      world.BlockPos `json:"pos"`
}

type BlockBreak struct {
	PlayerID uuid.UUID      `json:"player_id"`
	Block    Block          `json:"block"`
	Pos      world.BlockPos `json:"pos"`
}

// BreakReply tells the host whether to let a break through. Message, when set, is
// shown to the player.
type BreakReply struct {
	Allow      bool   `json:"allow"`
	Charged    int    `json:"charged,omitempty"`
	ETAMinutes int    `json:"eta_minutes,omitempty"`
	Points     int    `json:"points"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

type ExplodedBlock struct {
	Block Block          `json:"block"`
	Pos   world.BlockPos `json:"pos"`
}

type BlockExplode struct {
	World  string          `json:"world"`
	Blocks []ExplodedBlock `json:"blocks"`
}

// ExplodeReply lists the blocks the host must leave intact.
type ExplodeReply struct {
	Keep  []world.BlockPos `json:"keep"`
	Error string           `json:"error,omitempty"`
}

// AdminRequest is one /antixray invocation. Permissions are the capabilities the
// host granted the sender.
type AdminRequest struct {
	SenderID    *uuid.UUID `json:"sender_id,omitempty"`
	SenderName  string     `json:"sender_name"`
	Permissions []string   `json:"permissions"`
	Args        []string   `json:"args"`
}

type AdminReply struct {
	Lines []string `json:"lines"`
	Error string   `json:"error,omitempty"`
}

// LimitAlert is published the first time a player runs out of points in a session.
type LimitAlert struct {
	PlayerID          uuid.UUID      `json:"player_id"`
	PlayerName        string         `json:"player_name"`
	LimitReachedCount int            `json:"limit_reached_count"`
	Block             Block          `json:"block"`
	Pos               world.BlockPos `json:"pos"`
	Message           string         `json:"message"`
}

// LookupRequest asks the host for the identity of a player that may be offline.
type LookupRequest struct {
	Name string `json:"name"`
}

type LookupReply struct {
	Found    bool      `json:"found"`
	PlayerID uuid.UUID `json:"player_id"`
	Name     string    `json:"name"`
}

// BlockOf converts an identity back to the host's representation.
func BlockOf(id protection.Identity) Block {
	return Block{Kind: int(id.Kind), SubKind: id.SubKind}
}
