package signal

import (
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/watchroom/server/internal/core"
	"github.com/watchroom/server/internal/domain"
)

// handleAction applies a playback command and broadcasts the resulting
// snapshot to the whole room, the actor included. Everyone converges on
// the same authoritative value instead of trusting a local echo.
func (ctl *SignalWSController) handleAction(
	sid core.SessionID,
	data []byte,
) {
	type actionPayload struct {
		Type    string  `json:"type"`
		Kind    string  `json:"kind" validate:"required,oneof=play pause seek set-media"`
		Seconds float64 `json:"seconds"`
		Media   string  `json:"media" validate:"required_if=Kind set-media"`
	}
	var p actionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad action payload")
		return
	}
	if err := validate.Struct(p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("invalid action payload")
		return
	}

	a := domain.Action{
		Kind:    domain.ActionKind(p.Kind),
		Seconds: p.Seconds,
		Media:   p.Media,
	}
	room, state, ok := ctl.Orch.Apply(sid, a)
	if !ok {
		log.Debug().Str("module", "signal").Str("sid", string(sid)).Str("kind", p.Kind).Msg("action from session outside a room")
		return
	}

	resp := struct {
		Type string `json:"type"`
		domain.PlayerState
	}{
		Type:        "sync",
		PlayerState: state,
	}
	ctl.broadcast(room, resp)
}
