package app

import (
	"errors"
	"sync"
	"testing"

	"github.com/watchroom/server/internal/core"
	"github.com/watchroom/server/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func newOrch() *Orchestrator {
	return &Orchestrator{
		Registry: NewRegistry(),
		Rooms:    NewRoomManager(),
		Policy:   SimplePolicy{},
	}
}

func connect(t *testing.T, o *Orchestrator, sid core.SessionID) *fakeConn {
	t.Helper()
	conn := &fakeConn{}
	o.Registry.Bind(sid, core.NewMemberSession(nil, conn), nil)
	return conn
}

func join(t *testing.T, o *Orchestrator, sid core.SessionID, room, user, peer string) JoinResult {
	t.Helper()
	m, err := domain.NewMember(user, domain.PeerID(peer))
	if err != nil {
		t.Fatalf("member: %v", err)
	}
	res, _, ok := o.Join(sid, domain.RoomID(room), m)
	if !ok {
		t.Fatalf("join %s into %s failed", sid, room)
	}
	return res
}

func TestNthJoinerSeesNMinusOneExisting(t *testing.T) {
	o := newOrch()
	for i, sid := range []core.SessionID{"s1", "s2", "s3", "s4"} {
		connect(t, o, sid)
		res := join(t, o, sid, "r1", "user", string(sid))
		if len(res.Existing) != i {
			t.Fatalf("joiner %d: expected %d existing users, got %d", i+1, i, len(res.Existing))
		}
	}
}

func TestApplyReturnsAuthoritativeSnapshot(t *testing.T) {
	o := newOrch()
	connA := connect(t, o, "a")
	connB := connect(t, o, "b")
	join(t, o, "a", "r1", "A", "pa")
	join(t, o, "b", "r1", "B", "pb")

	room, state, ok := o.Apply("b", domain.Action{Kind: domain.ActionPlay, Seconds: 10})
	if !ok || !state.Playing || state.Position != 10 {
		t.Fatalf("apply play: ok=%v state=%+v", ok, state)
	}

	// The gateway fans the snapshot out to everyone, the actor included.
	res := room.Broadcast(core.Frame(`{"type":"sync"}`))
	if res.SentTo != 2 {
		t.Fatalf("sync must reach both members, got %+v", res)
	}
	if connA.count() == 0 || connB.count() == 0 {
		t.Fatalf("both members must hold a frame")
	}
}

func TestApplyOutsideRoomIsNoop(t *testing.T) {
	o := newOrch()
	connect(t, o, "loner")
	if _, _, ok := o.Apply("loner", domain.Action{Kind: domain.ActionPlay, Seconds: 1}); ok {
		t.Fatalf("action from a session outside a room must be a no-op")
	}
}

func TestActionDoesNotTouchOtherRooms(t *testing.T) {
	o := newOrch()
	connect(t, o, "a")
	connect(t, o, "b")
	join(t, o, "a", "r1", "A", "pa")
	join(t, o, "b", "r2", "B", "pb")

	o.Apply("a", domain.Action{Kind: domain.ActionSetMedia, Media: "m1"})

	other, ok := o.Rooms.Get("r2")
	if !ok {
		t.Fatalf("r2 must exist")
	}
	if st := other.State(); st.Media != nil || st.Playing {
		t.Fatalf("r2 state leaked: %+v", st)
	}
}

func TestLastLeaveDeletesRoom(t *testing.T) {
	o := newOrch()
	connect(t, o, "a")
	connect(t, o, "b")
	join(t, o, "a", "r1", "A", "pa")
	join(t, o, "b", "r1", "B", "pb")
	o.Apply("a", domain.Action{Kind: domain.ActionSetMedia, Media: "m1"})

	res, ok := o.Leave("a")
	if !ok || res.Remaining != 1 {
		t.Fatalf("first leave: ok=%v remaining=%d", ok, res.Remaining)
	}
	if _, ok := o.Rooms.Get("r1"); !ok {
		t.Fatalf("room must survive while a member remains")
	}

	res, ok = o.Leave("b")
	if !ok || res.Remaining != 0 {
		t.Fatalf("last leave: ok=%v remaining=%d", ok, res.Remaining)
	}
	if _, ok := o.Rooms.Get("r1"); ok {
		t.Fatalf("empty room must be deleted with the last leave")
	}

	// A later join under the same id gets a fresh room, not stale state.
	connect(t, o, "c")
	fresh := join(t, o, "c", "r1", "C", "pc")
	if fresh.State.Media != nil || fresh.State.Playing || fresh.State.Position != 0 {
		t.Fatalf("recreated room must start fresh, got %+v", fresh.State)
	}
}

func TestDisconnectBeforeJoinHasNoSideEffects(t *testing.T) {
	o := newOrch()
	connect(t, o, "ghostly")
	if _, ok := o.OnDisconnect("ghostly"); ok {
		t.Fatalf("disconnect before join must not produce a leave result")
	}
	if _, ok := o.Registry.Session("ghostly"); ok {
		t.Fatalf("session must be unbound after disconnect")
	}
}

func TestRelayToUnknownPeerDropsSilently(t *testing.T) {
	o := newOrch()
	connect(t, o, "a")
	join(t, o, "a", "r1", "A", "pa")
	if _, _, ok := o.Relay("a", "ghost"); ok {
		t.Fatalf("relay to an unowned peer id must be dropped")
	}
}

func TestRelayResolvesTargetAndSender(t *testing.T) {
	o := newOrch()
	connect(t, o, "a")
	connB := connect(t, o, "b")
	join(t, o, "a", "r1", "A", "pa")
	join(t, o, "b", "r1", "B", "pb")

	dst, from, ok := o.Relay("a", "pb")
	if !ok || from != "pa" {
		t.Fatalf("relay: ok=%v from=%s", ok, from)
	}
	if err := dst.Signal().TrySend(core.Frame(`{"type":"signal"}`)); err != nil {
		t.Fatalf("target send: %v", err)
	}
	if connB.count() != 1 {
		t.Fatalf("target must hold the relayed frame")
	}
}

func TestRelayAfterLeaveDrops(t *testing.T) {
	o := newOrch()
	connect(t, o, "a")
	connect(t, o, "b")
	join(t, o, "a", "r1", "A", "pa")
	join(t, o, "b", "r1", "B", "pb")
	o.Leave("b")

	if _, _, ok := o.Relay("a", "pb"); ok {
		t.Fatalf("peer index must forget a departed member")
	}
}

func TestRejoinMovesRooms(t *testing.T) {
	o := newOrch()
	connect(t, o, "a")
	connect(t, o, "b")
	join(t, o, "a", "r1", "A", "pa")
	join(t, o, "b", "r1", "B", "pb")

	m, _ := domain.NewMember("A", "pa")
	res, prev, ok := o.Join("a", "r2", m)
	if !ok {
		t.Fatalf("rejoin failed")
	}
	if prev == nil || prev.RoomID != "r1" || prev.Remaining != 1 {
		t.Fatalf("previous room leave not reported: %+v", prev)
	}
	if len(res.Existing) != 0 {
		t.Fatalf("r2 must be fresh for the mover")
	}
	if room, _ := o.Rooms.Get("r1"); room.MemberCount() != 1 {
		t.Fatalf("r1 must keep its remaining member")
	}
}

type fullConn struct{}

func (fullConn) TrySend(core.Frame) error { return errors.New("backpressure") }
func (fullConn) Close()                   {}

func TestBackpressureNeverKicksUnderDropPolicy(t *testing.T) {
	o := newOrch()
	o.Registry.Bind("slow", core.NewMemberSession(nil, fullConn{}), nil)
	join(t, o, "slow", "r1", "S", "ps")

	room, _ := o.Rooms.Get("r1")
	res := room.Broadcast(core.Frame(`{}`))
	o.OnBackpressure(room, res)

	if _, ok := o.Registry.Session("slow"); !ok {
		t.Fatalf("drop policy must keep the slow session bound")
	}
}

func TestDisconnectLeavesOtherSessionsIntact(t *testing.T) {
	o := newOrch()
	connect(t, o, "tab1")
	connect(t, o, "tab2")
	join(t, o, "tab1", "r1", "A", "p1")
	join(t, o, "tab2", "r1", "A", "p2")

	res, ok := o.OnDisconnect("tab1")
	if !ok || res.Remaining != 1 {
		t.Fatalf("first disconnect: ok=%v remaining=%d", ok, res.Remaining)
	}
	if _, ok := o.Registry.Session("tab2"); !ok {
		t.Fatalf("second session must survive the first one's disconnect")
	}
	if room, ok := o.Rooms.Get("r1"); !ok || room.MemberCount() != 1 {
		t.Fatalf("room must keep its remaining member")
	}

	// The survivor's own disconnect is what finally empties the room.
	res, ok = o.OnDisconnect("tab2")
	if !ok || res.Remaining != 0 {
		t.Fatalf("second disconnect: ok=%v remaining=%d", ok, res.Remaining)
	}
	if _, ok := o.Rooms.Get("r1"); ok {
		t.Fatalf("room must be deleted with its last session")
	}
}
