package signal

import (
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/watchroom/server/internal/core"
	"github.com/watchroom/server/internal/domain"
)

type userJoinedEvent struct {
	Type string        `json:"type"`
	User string        `json:"user"`
	Peer domain.PeerID `json:"peer"`
}

type userLeft struct {
	Type string `json:"type"`
	User string `json:"user"`
}

func userLeftEvent(userID string) userLeft {
	return userLeft{Type: "user-left", User: userID}
}

func (ctl *SignalWSController) handleJoin(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	type joinPayload struct {
		Type string `json:"type"`
		Room string `json:"room" validate:"required,max=64"`
		User string `json:"user" validate:"required,max=64"`
		Peer string `json:"peer" validate:"required,max=64"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad join payload")
		return
	}
	if err := validate.Struct(p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("invalid join payload")
		return
	}
	if !ctl.joins.Allow(sid) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("join rate limited")
		return
	}

	member, err := domain.NewMember(p.User, domain.PeerID(p.Peer))
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad member identity")
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Str("user", p.User).Msg("join")
	res, prev, ok := ctl.Orch.Join(sid, domain.RoomID(p.Room), member)
	if prev != nil && prev.Remaining > 0 {
		ctl.broadcast(prev.Room, userLeftEvent(prev.Member.UserID))
	}
	if !ok {
		return
	}

	stateResp := struct {
		Type string        `json:"type"`
		Room domain.RoomID `json:"room"`
		domain.PlayerState
	}{
		Type:        "room-state",
		Room:        res.Room.Room().ID,
		PlayerState: res.State,
	}
	ctl.sendJSON(conn, stateResp)

	usersResp := struct {
		Type    string           `json:"type"`
		Members []core.MemberDTO `json:"members"`
	}{
		Type:    "existing-users",
		Members: res.Existing,
	}
	ctl.sendJSON(conn, usersResp)

	ctl.broadcast(res.Room, userJoinedEvent{
		Type: "user-joined",
		User: member.UserID,
		Peer: member.PeerID,
	}, sid)
}

// handleLeave is the explicit variant of the disconnect path; the
// connection stays open so the session can join another room.
func (ctl *SignalWSController) handleLeave(
	sid core.SessionID,
	conn *WsSignalConn,
) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave")
	res, ok := ctl.Orch.Leave(sid)
	ctl.sendJSON(conn, map[string]any{
		"type": "left",
	})
	if ok && res.Remaining > 0 {
		ctl.broadcast(res.Room, userLeftEvent(res.Member.UserID))
	}
}
