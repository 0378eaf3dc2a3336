package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/watchroom/server/internal/domain"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	room  *domain.Room
	mu    sync.RWMutex
	state domain.PlayerState
	bySID map[SessionID]MemberSession
}

// NewRoomService creates a fresh room: no media, paused, position zero.
func NewRoomService(room *domain.Room) RoomService {
	return &roomImpl{
		room:  room,
		bySID: make(map[SessionID]MemberSession),
	}
}

func (r *roomImpl) Room() *domain.Room { return r.room }

func (r *roomImpl) State() domain.PlayerState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySID)
}

// AddMember inserts and returns the snapshot plus the members that were
// already present, so the joiner learns who is here without a second read.
func (r *roomImpl) AddMember(sid SessionID, ms MemberSession) (domain.PlayerState, []MemberDTO) {
	m := ms.Meta()
	r.mu.Lock()
	defer r.mu.Unlock()
	existing := make([]MemberDTO, 0, len(r.bySID))
	for other, os := range r.bySID {
		if other == sid {
			continue
		}
		om := os.Meta()
		existing = append(existing, MemberDTO{UserID: om.UserID, PeerID: om.PeerID})
	}
	r.bySID[sid] = ms
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("sid", string(sid)).Str("user", m.UserID).Msg("member added")
	return r.state, existing
}

func (r *roomImpl) RemoveMember(sid SessionID) (*domain.Member, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ms, ok := r.bySID[sid]
	if !ok {
		return nil, len(r.bySID)
	}
	delete(r.bySID, sid)
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("sid", string(sid)).Msg("member removed")
	return ms.Meta(), len(r.bySID)
}

// Apply mutates the playback state and returns the new snapshot.
// Positions are trusted as reported (last writer wins); only negative
// values are clamped so the invariant position >= 0 holds.
func (r *roomImpl) Apply(a domain.Action) domain.PlayerState {
	sec := a.Seconds
	if sec < 0 {
		sec = 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	switch a.Kind {
	case domain.ActionPlay:
		r.state.Playing = true
		r.state.Position = sec
	case domain.ActionPause:
		r.state.Playing = false
		r.state.Position = sec
	case domain.ActionSeek:
		r.state.Position = sec
	case domain.ActionSetMedia:
		media := a.Media
		r.state.Media = &media
		r.state.Playing = true
		r.state.Position = 0
	}
	return r.state
}

// Broadcast fans a frame out to every member except the excluded ones.
// A recipient whose send buffer is full is skipped, never waited on.
func (r *roomImpl) Broadcast(data Frame, exclude ...SessionID) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for sid, m := range r.bySID {
		skip := false
		for _, ex := range exclude {
			if sid == ex {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		if err := m.Signal().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.room.ID)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *roomImpl) MembersSnapshot() []MemberDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MemberDTO, 0, len(r.bySID))
	for _, ms := range r.bySID {
		m := ms.Meta()
		out = append(out, MemberDTO{UserID: m.UserID, PeerID: m.PeerID})
	}
	return out
}
