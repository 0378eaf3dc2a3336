// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const (
	MaxUserIDLen = 64
	MaxPeerIDLen = 64
)

var (
	ErrUserIDEmpty   = errors.New("user id empty")
	ErrUserIDTooLong = errors.New("user id too long")
	ErrPeerIDEmpty   = errors.New("peer id empty")
	ErrPeerIDTooLong = errors.New("peer id too long")
)

// Member is one participant's identity inside a room: the user id is
// what other members display, the peer id is only a signaling address.
type Member struct {
	UserID string `json:"user"`
	PeerID PeerID `json:"peer"`
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(userID string, peerID PeerID) (*Member, error) {
	if len(userID) == 0 {
		return nil, ErrUserIDEmpty
	}
	if len(userID) > MaxUserIDLen {
		return nil, ErrUserIDTooLong
	}
	if len(peerID) == 0 {
		return nil, ErrPeerIDEmpty
	}
	if len(peerID) > MaxPeerIDLen {
		return nil, ErrPeerIDTooLong
	}
	return &Member{UserID: userID, PeerID: peerID}, nil
}
