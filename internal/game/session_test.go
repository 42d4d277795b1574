package game

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"lastlap/internal/model"
)

type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (f *fakeConn) Send(b []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(b))
	copy(cp, b)
	f.frames = append(f.frames, cp)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// framesOfType decodes every received frame with the given type field.
func (f *fakeConn) framesOfType(t *testing.T, typ string) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []map[string]any
	for _, b := range f.frames {
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			t.Fatalf("unmarshal frame: %v", err)
		}
		if m["type"] == typ {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeConn) lastOfType(t *testing.T, typ string) map[string]any {
	t.Helper()
	frames := f.framesOfType(t, typ)
	if len(frames) == 0 {
		t.Fatalf("no %q frame received", typ)
	}
	return frames[len(frames)-1]
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func newTestSession(code string) (*Session, *fakeClock) {
	s := NewSession(code)
	fc := &fakeClock{t: time.Unix(1700000000, 0)}
	s.now = fc.Now
	return s, fc
}

func attach(t *testing.T, s *Session, clk *fakeClock, name, color string, room model.Room) (string, *fakeConn) {
	t.Helper()
	// Distinct join times keep generated ids unique.
	clk.Advance(time.Millisecond)
	conn := &fakeConn{}
	id, err := s.AttachPlayer(conn, name, color, room)
	if err != nil {
		t.Fatalf("attach %s: %v", name, err)
	}
	return id, conn
}

func TestFirstLobbyJoinerBecomesCommander(t *testing.T) {
	s, clk := newTestSession("472")

	novaID, _ := attach(t, s, clk, "Nova", "red", model.RoomLobby)
	if s.commanderID != novaID {
		t.Fatalf("commander = %q, want %q", s.commanderID, novaID)
	}

	ashID, _ := attach(t, s, clk, "Ash", "blue", model.RoomLobby)
	if s.commanderID != novaID {
		t.Fatalf("commander changed to %q after second join", ashID)
	}
}

func TestSameNameReconnectEvictsOldConnection(t *testing.T) {
	s, clk := newTestSession("472")

	_, oldConn := attach(t, s, clk, "Nova", "red", model.RoomLobby)
	newID, _ := attach(t, s, clk, "Nova", "red", model.RoomLobby)

	if len(s.players) != 1 {
		t.Fatalf("roster size = %d, want 1", len(s.players))
	}
	if !oldConn.isClosed() {
		t.Fatalf("evicted connection was not closed")
	}
	if s.commanderID != newID {
		t.Fatalf("commander did not follow the reconnect: %q", s.commanderID)
	}
}

func TestAttachRegistersScannedColor(t *testing.T) {
	s, clk := newTestSession("472")

	attach(t, s, clk, "Nova", "red", model.RoomLobby)
	if _, ok := s.scannedColors["red"]; !ok {
		t.Fatalf("red not registered in scanned colors")
	}

	attach(t, s, clk, "Zed", "neonpink", model.RoomLobby)
	if _, ok := s.scannedColors["neonpink"]; ok {
		t.Fatalf("non-palette color was registered")
	}
	for _, p := range s.players {
		if p.Name == "Zed" && p.Color != "" {
			t.Fatalf("non-palette color kept on player: %q", p.Color)
		}
	}
}

func TestSessionFullRejectsNinthPlayer(t *testing.T) {
	s, clk := newTestSession("472")

	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, n := range names {
		attach(t, s, clk, n, "red", model.RoomLobby)
	}

	clk.Advance(time.Millisecond)
	_, err := s.AttachPlayer(&fakeConn{}, "ninth", "blue", model.RoomLobby)
	if err != ErrSessionFull {
		t.Fatalf("err = %v, want ErrSessionFull", err)
	}
	if len(s.players) != MaxPlayers {
		t.Fatalf("roster size = %d, want %d", len(s.players), MaxPlayers)
	}

	// A same-name reconnect replaces a record and is still allowed.
	clk.Advance(time.Millisecond)
	if _, err := s.AttachPlayer(&fakeConn{}, "a", "red", model.RoomLobby); err != nil {
		t.Fatalf("same-name reconnect at cap rejected: %v", err)
	}
}

func TestSpectatorGetsImmediateSnapshot(t *testing.T) {
	s, clk := newTestSession("472")
	attach(t, s, clk, "Nova", "red", model.RoomLobby)

	spec := &fakeConn{}
	s.AttachSpectator(spec)

	frame := spec.lastOfType(t, model.MsgSpectatorUpdate)
	state := frame["gameState"].(map[string]any)
	if state["battleStarted"] != false {
		t.Fatalf("battleStarted = %v, want false", state["battleStarted"])
	}
	if len(state["combatants"].([]any)) != 1 {
		t.Fatalf("combatants = %v, want 1 entry", state["combatants"])
	}
}

func TestLobbyUpdateBroadcastOnJoin(t *testing.T) {
	s, clk := newTestSession("472")
	_, nova := attach(t, s, clk, "Nova", "red", model.RoomLobby)
	attach(t, s, clk, "Ash", "blue", model.RoomLobby)

	frame := nova.lastOfType(t, model.MsgLobbyUpdate)
	if frame["commander"] != "Nova" {
		t.Fatalf("commander = %v, want Nova", frame["commander"])
	}
	players := frame["players"].([]any)
	if len(players) != 2 {
		t.Fatalf("lobby roster size = %d, want 2", len(players))
	}
	if frame["battleStarted"] != false {
		t.Fatalf("battleStarted = %v, want false", frame["battleStarted"])
	}
}

func TestStartBattleRequiresCommander(t *testing.T) {
	s, clk := newTestSession("472")
	attach(t, s, clk, "Nova", "red", model.RoomLobby)
	ashID, _ := attach(t, s, clk, "Ash", "blue", model.RoomLobby)

	s.HandleAction(ashID, model.StartBattleAction{})
	if s.state != model.StateLobby {
		t.Fatalf("non-commander started the battle")
	}
}

func TestStartBattleResetsLoadouts(t *testing.T) {
	s, clk := newTestSession("472")
	novaID, nova := attach(t, s, clk, "Nova", "red", model.RoomLobby)
	attach(t, s, clk, "Ash", "blue", model.RoomLobby)

	s.players[novaID].Points = 500
	s.players[novaID].Health = 10

	s.HandleAction(novaID, model.StartBattleAction{})

	if s.state != model.StateBattle {
		t.Fatalf("state = %v, want battle", s.state)
	}
	for _, p := range s.players {
		if p.Points != 0 || p.Health != StartingHealth || p.Ammo != StartingAmmo || p.Lives != StartingLives {
			t.Fatalf("loadout not reset for %s: %+v", p.Name, p)
		}
		if p.Room != model.RoomBattle {
			t.Fatalf("%s still in %v", p.Name, p.Room)
		}
	}

	frame := nova.lastOfType(t, model.MsgBattleStart)
	if frame["commander"] != "Nova" {
		t.Fatalf("battleStart commander = %v", frame["commander"])
	}
}

func TestSoloPlayerCanStartBattle(t *testing.T) {
	s, clk := newTestSession("472")
	novaID, _ := attach(t, s, clk, "Nova", "red", model.RoomLobby)

	s.HandleAction(novaID, model.StartBattleAction{})
	if s.state != model.StateBattle {
		t.Fatalf("solo start failed: state = %v", s.state)
	}
}

func TestStartBattleIsOneWay(t *testing.T) {
	s, clk := newTestSession("472")
	novaID, nova := attach(t, s, clk, "Nova", "red", model.RoomLobby)

	s.HandleAction(novaID, model.StartBattleAction{})
	started := s.battleStartedAt

	clk.Advance(5 * time.Second)
	s.HandleAction(novaID, model.StartBattleAction{})

	if !s.battleStartedAt.Equal(started) {
		t.Fatalf("second start rewound the battle timer")
	}
	if n := len(nova.framesOfType(t, model.MsgBattleStart)); n != 1 {
		t.Fatalf("battleStart frames = %d, want 1", n)
	}
}

func TestLateLobbyJoinerDuringBattleSpectates(t *testing.T) {
	s, clk := newTestSession("472")
	novaID, _ := attach(t, s, clk, "Nova", "red", model.RoomLobby)
	s.HandleAction(novaID, model.StartBattleAction{})

	lateID, late := attach(t, s, clk, "Late", "green", model.RoomLobby)

	p := s.players[lateID]
	if p.Room != model.RoomBattle || !p.IsEliminated {
		t.Fatalf("late joiner room=%v eliminated=%v, want battle/true", p.Room, p.IsEliminated)
	}
	late.lastOfType(t, model.MsgJoinAsSpectator)
}

func TestLeaveActionRemovesPlayer(t *testing.T) {
	s, clk := newTestSession("472")
	novaID, nova := attach(t, s, clk, "Nova", "red", model.RoomLobby)
	_, ash := attach(t, s, clk, "Ash", "blue", model.RoomLobby)

	s.HandleAction(novaID, model.LeaveAction{})

	if _, ok := s.players[novaID]; ok {
		t.Fatalf("player still in roster after leave")
	}
	if !nova.isClosed() {
		t.Fatalf("connection not closed after leave")
	}
	frame := ash.lastOfType(t, model.MsgPlayerLeft)
	if frame["player"] != "Nova" {
		t.Fatalf("playerLeft player = %v", frame["player"])
	}
}

func TestDetachPlayerIsIdempotent(t *testing.T) {
	s, clk := newTestSession("472")
	novaID, _ := attach(t, s, clk, "Nova", "red", model.RoomLobby)

	s.DetachPlayer(novaID)
	s.DetachPlayer(novaID) // must not panic or re-broadcast

	if len(s.players) != 0 {
		t.Fatalf("roster size = %d, want 0", len(s.players))
	}
}

func TestDisconnectMidBattleEndsGame(t *testing.T) {
	s, clk := newTestSession("472")
	novaID, _ := attach(t, s, clk, "Nova", "red", model.RoomLobby)
	_, ash := attach(t, s, clk, "Ash", "blue", model.RoomLobby)

	s.HandleAction(novaID, model.StartBattleAction{})
	s.DetachPlayer(novaID)

	if s.state != model.StateFinished {
		t.Fatalf("state = %v, want finished", s.state)
	}
	frame := ash.lastOfType(t, model.MsgGameEnd)
	if frame["winCondition"] != WinLastManStanding {
		t.Fatalf("winCondition = %v", frame["winCondition"])
	}
	if frame["winner"] != "Ash" {
		t.Fatalf("winner = %v, want Ash", frame["winner"])
	}
}

func TestDisconnectWithTwoActiveKeepsBattleRunning(t *testing.T) {
	s, clk := newTestSession("472")
	novaID, _ := attach(t, s, clk, "Nova", "red", model.RoomLobby)
	_, _ = attach(t, s, clk, "Ash", "blue", model.RoomLobby)
	zedID, zed := attach(t, s, clk, "Zed", "green", model.RoomLobby)

	s.HandleAction(novaID, model.StartBattleAction{})
	s.DetachPlayer(novaID)

	if s.state != model.StateBattle {
		t.Fatalf("state = %v, want battle with two combatants left", s.state)
	}
	if n := len(zed.framesOfType(t, model.MsgGameEnd)); n != 0 {
		t.Fatalf("gameEnd frames = %d, want 0", n)
	}

	// The next disconnect leaves one, and that ends it.
	s.DetachPlayer(zedID)
	if s.state != model.StateFinished {
		t.Fatalf("state = %v, want finished", s.state)
	}
}

func TestScenarioTwoPlayerFirefight(t *testing.T) {
	s, clk := newTestSession("472")
	novaID, _ := attach(t, s, clk, "Nova", "red", model.RoomLobby)
	ashID, _ := attach(t, s, clk, "Ash", "blue", model.RoomLobby)

	s.HandleAction(novaID, model.StartBattleAction{})
	clk.Advance(time.Second)

	s.HandleAction(ashID, model.FireAction{Weapon: "pistol", TargetColor: "red"})

	nova := s.players[novaID]
	ash := s.players[ashID]
	if nova.Health != StartingHealth-weaponDamage["pistol"] {
		t.Fatalf("Nova health = %d, want %d", nova.Health, StartingHealth-weaponDamage["pistol"])
	}
	if ash.Points != PointsPerHit {
		t.Fatalf("Ash points = %d, want %d", ash.Points, PointsPerHit)
	}
	if ash.Ammo != StartingAmmo-1 {
		t.Fatalf("Ash ammo = %d, want %d", ash.Ammo, StartingAmmo-1)
	}
	if ash.Hits != 1 {
		t.Fatalf("Ash hits = %d, want 1", ash.Hits)
	}
}

func TestSessionInfo(t *testing.T) {
	s, clk := newTestSession("472")
	attach(t, s, clk, "Nova", "red", model.RoomLobby)
	s.AttachSpectator(&fakeConn{})

	info := s.Info()
	if info.Code != "472" || info.PlayerCount != 1 || info.SpectatorCount != 1 {
		t.Fatalf("info = %+v", info)
	}
	if info.GameState != model.StateLobby {
		t.Fatalf("state = %v, want lobby", info.GameState)
	}
}
