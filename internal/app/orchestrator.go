package app

import (
	"github.com/rs/zerolog/log"

	"github.com/watchroom/server/internal/core"
	"github.com/watchroom/server/internal/domain"
)

// Orchestrator drives the session lifecycle: connected -> joined -> left.
// It owns no transport; adapters serialize and deliver what it returns.
type Orchestrator struct {
	Registry *Registry
	Rooms    core.RoomRegistry
	Policy   Policy
}

type JoinResult struct {
	Room     core.RoomService
	Member   *domain.Member
	State    domain.PlayerState
	Existing []core.MemberDTO
}

type LeaveResult struct {
	RoomID    domain.RoomID
	Room      core.RoomService
	Member    *domain.Member
	Remaining int
}

// Join moves a session into a room. A session already in a room leaves
// it first; the previous room's leave result is returned so the caller
// can notify the members it left behind.
func (o *Orchestrator) Join(sid core.SessionID, roomID domain.RoomID, member *domain.Member) (JoinResult, *LeaveResult, bool) {
	var prev *LeaveResult
	if old, ok := o.Leave(sid); ok {
		prev = &old
		log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("from_room", string(old.RoomID)).Msg("left previous room on join")
	}

	sess, ok := o.Registry.Session(sid)
	if !ok {
		return JoinResult{}, prev, false
	}
	ms := core.NewMemberSession(member, sess.Signal())
	room, state, existing := o.Rooms.Join(roomID, sid, ms)
	o.Registry.BindRoom(sid, roomID, member)
	log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("room", string(roomID)).Str("user", member.UserID).Msg("joined room")
	return JoinResult{Room: room, Member: member, State: state, Existing: existing}, prev, true
}

// Leave removes the session from its current room, if any. When the
// room died with the last member, Remaining is zero and there is
// nobody left to notify.
func (o *Orchestrator) Leave(sid core.SessionID) (LeaveResult, bool) {
	roomID, _, ok := o.Registry.RoomOf(sid)
	if !ok {
		return LeaveResult{}, false
	}
	room, member, remaining, ok := o.Rooms.Leave(roomID, sid)
	o.Registry.ClearRoom(sid)
	if !ok {
		return LeaveResult{}, false
	}
	log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("room", string(roomID)).Int("remaining", remaining).Msg("left room")
	return LeaveResult{RoomID: roomID, Room: room, Member: member, Remaining: remaining}, true
}

// Apply runs a playback action against the sender's room and returns
// the authoritative snapshot. A sender that is not in a room is a no-op.
func (o *Orchestrator) Apply(sid core.SessionID, a domain.Action) (core.RoomService, domain.PlayerState, bool) {
	roomID, _, ok := o.Registry.RoomOf(sid)
	if !ok {
		return nil, domain.PlayerState{}, false
	}
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		return nil, domain.PlayerState{}, false
	}
	state := room.Apply(a)
	metricActionsApplied.WithLabelValues(string(a.Kind)).Inc()
	return room, state, true
}

// Relay resolves a signaling target. The payload itself never passes
// through here; the adapter delivers it to the returned session.
func (o *Orchestrator) Relay(sid core.SessionID, target domain.PeerID) (core.MemberSession, domain.PeerID, bool) {
	_, member, ok := o.Registry.RoomOf(sid)
	if !ok {
		metricSignalsDropped.Inc()
		return nil, "", false
	}
	dst, ok := o.Registry.SessionByPeer(target)
	if !ok {
		metricSignalsDropped.Inc()
		log.Debug().Str("module", "app.orch").Str("sid", string(sid)).Str("target", string(target)).Msg("signal target not found")
		return nil, "", false
	}
	metricSignalsRelayed.Inc()
	return dst, member.PeerID, true
}

// OnDisconnect runs the leave path once and releases the session.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) (LeaveResult, bool) {
	res, ok := o.Leave(sid)
	o.Registry.Unbind(sid)
	return res, ok
}

// OnBackpressure lets the policy react to members that dropped frames
// during a broadcast.
func (o *Orchestrator) OnBackpressure(room core.RoomService, res core.PublishResult) {
	if len(res.Dropped) == 0 {
		return
	}
	metricBroadcastDropped.Add(float64(len(res.Dropped)))
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(room, slow) {
		case KickMember:
			if sid, ok := o.Registry.SIDOfPeer(slow.Meta().PeerID); ok {
				o.Registry.Cancel(sid)
			}
		case MarkSlow, DropFrame, NoAction:
		}
	}
}
