package events

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	bus := NewMemoryBus()
	ch := bus.Subscribe()

	bus.Publish(NewEvent(EventChatStart, map[string]any{"run_id": "r1"}))

	select {
	case ev := <-ch:
		if ev.Type != EventChatStart {
			t.Errorf("type = %s, want %s", ev.Type, EventChatStart)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestSubscribeFiltered(t *testing.T) {
	bus := NewMemoryBus()
	ch := bus.Subscribe(EventVerifyResult)

	bus.Publish(NewEvent(EventChatStart, nil))
	bus.Publish(NewEvent(EventVerifyResult, nil))

	select {
	case ev := <-ch:
		if ev.Type != EventVerifyResult {
			t.Errorf("filtered subscriber got %s", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for filtered event")
	}

	select {
	case ev := <-ch:
		t.Errorf("unexpected second event: %s", ev.Type)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewMemoryBus()
	ch := bus.Subscribe()
	bus.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after Unsubscribe")
	}
}

func TestCounts(t *testing.T) {
	bus := NewMemoryBus()
	start := time.Now().Add(-time.Second)

	bus.Publish(NewEvent(EventChatStart, nil))
	bus.Publish(NewEvent(EventChatEnd, nil))
	bus.Publish(NewEvent(EventChatEnd, nil))

	counts := bus.Counts(start)
	if counts[EventChatStart] != 1 || counts[EventChatEnd] != 2 {
		t.Errorf("counts = %v", counts)
	}
	if len(bus.Counts(time.Now().Add(time.Minute))) != 0 {
		t.Error("future cutoff should count nothing")
	}
}

func TestHistoryBounded(t *testing.T) {
	bus := NewMemoryBus()
	for i := 0; i < maxHistory+100; i++ {
		bus.Publish(NewEvent(EventToolCall, i))
	}

	total := 0
	for _, n := range bus.Counts(time.Time{}) {
		total += n
	}
	if total != maxHistory {
		t.Errorf("retained = %d, want %d", total, maxHistory)
	}
}
