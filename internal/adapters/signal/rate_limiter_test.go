package signal

import (
	"testing"
	"time"
)

func TestJoinRateLimiter(t *testing.T) {
	rl := NewJoinRateLimiter(2, time.Minute)

	if !rl.Allow("s1") || !rl.Allow("s1") {
		t.Fatalf("first attempts within the limit must pass")
	}
	if rl.Allow("s1") {
		t.Fatalf("attempt over the limit must be blocked")
	}
	if !rl.Allow("s2") {
		t.Fatalf("another session id has its own window")
	}

	rl.Forget("s1")
	if !rl.Allow("s1") {
		t.Fatalf("forget must reset the window")
	}
}
