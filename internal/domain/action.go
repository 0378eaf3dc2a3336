package domain

// ActionKind enumerates the playback commands a member may issue.
type ActionKind string

const (
	ActionPlay     ActionKind = "play"
	ActionPause    ActionKind = "pause"
	ActionSeek     ActionKind = "seek"
	ActionSetMedia ActionKind = "set-media"
)

// Action is a transient playback command. It is applied to exactly one
// room and discarded; no action log is kept.
type Action struct {
	Kind    ActionKind
	Seconds float64
	Media   string
}
