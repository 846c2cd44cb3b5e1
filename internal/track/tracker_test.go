package track

import (
	"reflect"
	"testing"
)

func TestFilterNew_EmptyTracker(t *testing.T) {
	tr := NewTracker()

	got := tr.FilterNew("c1", []string{"f1", "f2"})
	if !reflect.DeepEqual(got, []string{"f1", "f2"}) {
		t.Errorf("got %v, want all fragments new", got)
	}
}

func TestFilterNew_SkipsSeen(t *testing.T) {
	tr := NewTracker()
	tr.MarkSeen("c1", []string{"f1", "f2"})

	got := tr.FilterNew("c1", []string{"f1", "f2", "f3"})
	if !reflect.DeepEqual(got, []string{"f3"}) {
		t.Errorf("got %v, want [f3]", got)
	}
}

func TestFilterNew_PreservesOrder(t *testing.T) {
	tr := NewTracker()
	tr.MarkSeen("c1", []string{"f2"})

	got := tr.FilterNew("c1", []string{"f3", "f2", "f1"})
	if !reflect.DeepEqual(got, []string{"f3", "f1"}) {
		t.Errorf("got %v, want [f3 f1]", got)
	}
}

func TestSeen_ScopedPerContainer(t *testing.T) {
	tr := NewTracker()
	tr.MarkSeen("c1", []string{"f1"})

	if tr.Seen("c2", "f1") {
		t.Error("seen-state must be scoped per container")
	}
	if !tr.Seen("c1", "f1") {
		t.Error("f1 should be seen for c1")
	}
}

func TestMarkSeen_IgnoresEmptyIDs(t *testing.T) {
	tr := NewTracker()
	tr.MarkSeen("c1", []string{"", "f1"})

	if tr.SeenCount("c1") != 1 {
		t.Errorf("seen count: got %d, want 1", tr.SeenCount("c1"))
	}
}

func TestReset(t *testing.T) {
	tr := NewTracker()
	tr.MarkSeen("c1", []string{"f1", "f2"})
	tr.Reset("c1")

	if tr.SeenCount("c1") != 0 {
		t.Errorf("seen count after reset: got %d, want 0", tr.SeenCount("c1"))
	}
	if tr.Containers() != 0 {
		t.Errorf("containers after reset: got %d, want 0", tr.Containers())
	}
}
