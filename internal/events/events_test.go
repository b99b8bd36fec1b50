package events

import "testing"

func TestEmitRecordsHistoryAndBroadcasts(t *testing.T) {
	var broadcast []GameEvent
	m := NewManager(10, func(e GameEvent) {
		broadcast = append(broadcast, e)
	})

	m.Emit("game-1", 1, "spawn", map[string]any{"id": 1})
	m.Emit("game-1", 2, "goal", map[string]any{"id": 1, "prize": 45})
	m.Emit("game-2", 1, "spawn", map[string]any{"id": 1})

	if len(broadcast) != 3 {
		t.Fatalf("expected 3 broadcasts, got %d", len(broadcast))
	}

	h1 := m.History("game-1")
	if len(h1) != 2 {
		t.Fatalf("expected 2 events for game-1, got %d", len(h1))
	}
	if h1[0].Type != "spawn" || h1[1].Type != "goal" {
		t.Fatalf("unexpected event ordering: %+v", h1)
	}

	h2 := m.History("game-2")
	if len(h2) != 1 {
		t.Fatalf("expected 1 event for game-2, got %d", len(h2))
	}
}

func TestHistoryIsBounded(t *testing.T) {
	m := NewManager(3, nil)
	for i := 0; i < 10; i++ {
		m.Emit("game-1", i, "tick", nil)
	}

	h := m.History("game-1")
	if len(h) != 3 {
		t.Fatalf("expected history capped at 3, got %d", len(h))
	}
	if h[len(h)-1].Tick != 9 {
		t.Fatalf("expected most recent event retained, got tick %d", h[len(h)-1].Tick)
	}
}

func TestForgetDropsHistory(t *testing.T) {
	m := NewManager(10, nil)
	m.Emit("game-1", 1, "spawn", nil)
	m.Forget("game-1")

	if h := m.History("game-1"); len(h) != 0 {
		t.Fatalf("expected empty history after Forget, got %d entries", len(h))
	}
}
