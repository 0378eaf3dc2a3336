package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/watchroom/server/internal/core"
	"github.com/watchroom/server/internal/domain"
)

// RoomManagerImpl owns the room table. The manager lock makes member
// insertion atomic with room creation and member removal atomic with
// room deletion, so no empty room is ever observable in the table.
type RoomManagerImpl struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]core.RoomService
}

func NewRoomManager() core.RoomRegistry {
	return &RoomManagerImpl{rooms: make(map[domain.RoomID]core.RoomService)}
}

func (f *RoomManagerImpl) Join(id domain.RoomID, sid core.SessionID, ms core.MemberSession) (core.RoomService, domain.PlayerState, []core.MemberDTO) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[id]
	if !ok {
		room = core.NewRoomService(&domain.Room{ID: id})
		f.rooms[id] = room
		metricRoomsLive.Inc()
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room created")
	}
	state, existing := room.AddMember(sid, ms)
	return room, state, existing
}

// Leave removes the member and deletes the room in the same critical
// section when the last member is gone.
func (f *RoomManagerImpl) Leave(id domain.RoomID, sid core.SessionID) (core.RoomService, *domain.Member, int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[id]
	if !ok {
		return nil, nil, 0, false
	}
	member, remaining := room.RemoveMember(sid)
	if member == nil {
		return room, nil, remaining, false
	}
	if remaining == 0 {
		delete(f.rooms, id)
		metricRoomsLive.Dec()
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room deleted")
	}
	return room, member, remaining, true
}

func (f *RoomManagerImpl) Get(id domain.RoomID) (core.RoomService, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	room, ok := f.rooms[id]
	return room, ok
}

func (f *RoomManagerImpl) List() []core.RoomInfo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(f.rooms))
	for id, r := range f.rooms {
		out = append(out, core.RoomInfo{ID: id, MemberCount: r.MemberCount()})
	}
	return out
}
