package core

import "github.com/watchroom/server/internal/domain"

// Frame is a raw serialized message ready for the wire.
type Frame []byte

type SessionID string

// SignalConnection abstracts the system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MemberSession binds a domain.Member and its transport endpoint.
// This is what a room stores and fans out to.
type MemberSession interface {
	Meta() *domain.Member
	Signal() SignalConnection
}

// PublishResult reports delivery stats/backpressure to the orchestrator.
type PublishResult struct {
	SentTo  int
	Dropped []MemberSession
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	UserID string        `json:"user"`
	PeerID domain.PeerID `json:"peer"`
}

// RoomService is the core-facing API of a room. It owns the membership
// set and the playback state but never touches transport resources.
type RoomService interface {
	Room() *domain.Room
	State() domain.PlayerState
	MemberCount() int
	MembersSnapshot() []MemberDTO

	AddMember(sid SessionID, ms MemberSession) (domain.PlayerState, []MemberDTO)
	RemoveMember(sid SessionID) (*domain.Member, int)
	Apply(a domain.Action) domain.PlayerState
	Broadcast(data Frame, exclude ...SessionID) PublishResult
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"member_count"`
}

// RoomRegistry owns the room table. Join and Leave are atomic with room
// creation and deletion: a room exists iff it has at least one member.
type RoomRegistry interface {
	Join(id domain.RoomID, sid SessionID, ms MemberSession) (RoomService, domain.PlayerState, []MemberDTO)
	Leave(id domain.RoomID, sid SessionID) (RoomService, *domain.Member, int, bool)
	Get(id domain.RoomID) (RoomService, bool)
	List() []RoomInfo
}
