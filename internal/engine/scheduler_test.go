package engine

import (
	"context"
	"testing"
	"time"
)

func TestTryPoll_RunsCycle(t *testing.T) {
	fx := newFixture(t, map[string]string{
		"composerData:c1":    composerRow("c1", []string{"f1"}, nil),
		"bubbleId:c1:f1":     bubbleRow("f1", 1, "hello"),
		"checkpointId:c1:f1": layoutRow("myproj"),
	})
	s := NewScheduler(fx.engine, time.Minute, discard())

	if !s.TryPoll(context.Background()) {
		t.Fatal("poll should have run")
	}
	if _, found, _ := fx.store.LoadByContainerID("c1"); !found {
		t.Error("poll did not persist the conversation")
	}
}

func TestTryPoll_DropsOverlappingTick(t *testing.T) {
	fx := newFixture(t, nil)
	s := NewScheduler(fx.engine, time.Minute, discard())

	// Simulate a cycle still in flight.
	s.inFlight.Store(true)
	if s.TryPoll(context.Background()) {
		t.Fatal("overlapping tick must be dropped, not queued")
	}
	s.inFlight.Store(false)

	if !s.TryPoll(context.Background()) {
		t.Fatal("poll should run once the previous cycle finishes")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	fx := newFixture(t, nil)
	s := NewScheduler(fx.engine, 50*time.Millisecond, discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
}
