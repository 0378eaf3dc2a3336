package signal

import (
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/watchroom/server/internal/core"
	"github.com/watchroom/server/internal/domain"
)

// handleRelay forwards an opaque negotiation payload to the session
// holding the target peer id. The payload is never inspected. A missing
// target drops the message; the negotiation layer above re-attempts.
func (ctl *SignalWSController) handleRelay(
	sid core.SessionID,
	data []byte,
) {
	type signalPayload struct {
		Type    string          `json:"type"`
		To      string          `json:"to" validate:"required,max=64"`
		Payload json.RawMessage `json:"payload" validate:"required"`
	}
	var p signalPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad signal payload")
		return
	}
	if err := validate.Struct(p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("invalid signal payload")
		return
	}

	dst, from, ok := ctl.Orch.Relay(sid, domain.PeerID(p.To))
	if !ok {
		return
	}

	resp := struct {
		Type    string          `json:"type"`
		From    domain.PeerID   `json:"from"`
		Payload json.RawMessage `json:"payload"`
	}{
		Type:    "signal",
		From:    from,
		Payload: p.Payload,
	}
	ctl.sendJSON(dst.Signal(), resp)
}
