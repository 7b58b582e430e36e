package dataset

import "testing"

func TestTaskRegistryFirstSeenOrder(t *testing.T) {
	reg := NewTaskRegistry()

	if idx := reg.GetOrAssign("pick"); idx != 0 {
		t.Errorf("first label index = %d, want 0", idx)
	}
	if idx := reg.GetOrAssign("place"); idx != 1 {
		t.Errorf("second label index = %d, want 1", idx)
	}
	if idx := reg.GetOrAssign("pick"); idx != 0 {
		t.Errorf("repeated label index = %d, want 0", idx)
	}
	if idx := reg.GetOrAssign("stack"); idx != 2 {
		t.Errorf("third label index = %d, want 2", idx)
	}

	want := []string{"pick", "place", "stack"}
	got := reg.Labels()
	if len(got) != len(want) {
		t.Fatalf("Labels() length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Labels()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if reg.Len() != 3 {
		t.Errorf("Len() = %d, want 3", reg.Len())
	}
}

func TestTaskRegistryDeterministic(t *testing.T) {
	// Ordering depends only on first occurrence, not label value.
	requests := []string{"zebra", "apple", "zebra", "mango", "apple"}

	a := NewTaskRegistry()
	b := NewTaskRegistry()
	for _, label := range requests {
		if a.GetOrAssign(label) != b.GetOrAssign(label) {
			t.Fatalf("registries diverged on %q", label)
		}
	}
	if a.GetOrAssign("zebra") != 0 || a.GetOrAssign("apple") != 1 || a.GetOrAssign("mango") != 2 {
		t.Error("indices do not follow first-occurrence order")
	}
}
