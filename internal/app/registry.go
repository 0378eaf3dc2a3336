package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/watchroom/server/internal/core"
	"github.com/watchroom/server/internal/domain"
)

type sessionEntry struct {
	RoomID  domain.RoomID
	Member  *domain.Member
	Session core.MemberSession
	Cancel  context.CancelFunc
}

// Registry tracks every connected session and keeps an incremental
// peer-id index so signaling lookups never scan all connections.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
	byPeer   map[domain.PeerID]core.SessionID
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
		byPeer:   make(map[domain.PeerID]core.SessionID),
	}
}

// Bind registers a freshly accepted connection that has not joined a room.
func (r *Registry) Bind(sid core.SessionID, sess core.MemberSession, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{Session: sess, Cancel: cancel}
	metricSessionsOpen.Inc()
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound session")
}

// BindRoom records room membership and indexes the member's peer id.
// The peer index is last-writer-wins on collision.
func (r *Registry) BindRoom(sid core.SessionID, roomID domain.RoomID, member *domain.Member) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	e.RoomID = roomID
	e.Member = member
	r.byPeer[member.PeerID] = sid
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(roomID)).Str("peer", string(member.PeerID)).Msg("bound room")
	return true
}

// ClearRoom drops the room association and unindexes the peer id.
func (r *Registry) ClearRoom(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return
	}
	if e.Member != nil && r.byPeer[e.Member.PeerID] == sid {
		delete(r.byPeer, e.Member.PeerID)
	}
	e.RoomID = ""
	e.Member = nil
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("cleared room association")
}

func (r *Registry) RoomOf(sid core.SessionID) (domain.RoomID, *domain.Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok || e.RoomID == "" {
		return "", nil, false
	}
	return e.RoomID, e.Member, true
}

func (r *Registry) Session(sid core.SessionID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

// SessionByPeer resolves a signaling target through the peer index.
func (r *Registry) SessionByPeer(peer domain.PeerID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sid, ok := r.byPeer[peer]
	if !ok {
		return nil, false
	}
	e, ok := r.sessions[sid]
	if !ok {
		return nil, false
	}
	return e.Session, true
}

func (r *Registry) SIDOfPeer(peer domain.PeerID) (core.SessionID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sid, ok := r.byPeer[peer]
	return sid, ok
}

// Unbind removes the session and its peer index entry.
func (r *Registry) Unbind(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return
	}
	if e.Member != nil && r.byPeer[e.Member.PeerID] == sid {
		delete(r.byPeer, e.Member.PeerID)
	}
	delete(r.sessions, sid)
	metricSessionsOpen.Dec()
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}

// Cancel aborts the session's connection context, which tears the
// transport down and drives the normal disconnect path.
func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}
