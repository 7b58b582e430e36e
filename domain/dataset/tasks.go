package dataset

// TaskRegistry assigns stable integer indices to task labels in first-seen
// order. Append-only for the duration of a run.
type TaskRegistry struct {
	indices map[string]int64
	labels  []string
}

// NewTaskRegistry creates an empty registry.
func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{indices: make(map[string]int64)}
}

// GetOrAssign returns the index for label, assigning the next free index on
// first occurrence.
func (r *TaskRegistry) GetOrAssign(label string) int64 {
	if idx, ok := r.indices[label]; ok {
		return idx
	}
	idx := int64(len(r.labels))
	r.indices[label] = idx
	r.labels = append(r.labels, label)
	return idx
}

// Labels returns all task labels in assignment order.
func (r *TaskRegistry) Labels() []string {
	out := make([]string, len(r.labels))
	copy(out, r.labels)
	return out
}

// Len returns the number of distinct tasks seen.
func (r *TaskRegistry) Len() int {
	return len(r.labels)
}
