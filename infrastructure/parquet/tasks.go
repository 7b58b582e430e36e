package parquet

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"robot-dataset-curator/domain/dataset"
)

// TaskStore implements dataset.TaskStore on parquet files
type TaskStore struct{}

// NewTaskStore creates a new parquet-backed task store
func NewTaskStore() *TaskStore {
	return &TaskStore{}
}

// taskRow is one row of the task label table. Row order is the task index
// order, so labels[i] lands at task_index i.
type taskRow struct {
	TaskIndex int64  `parquet:"task_index"`
	Task      string `parquet:"task"`
}

// WriteTasks writes the task label table.
func (s *TaskStore) WriteTasks(path string, labels []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := parquet.NewGenericWriter[taskRow](f)
	for i, label := range labels {
		if _, err := w.Write([]taskRow{{TaskIndex: int64(i), Task: label}}); err != nil {
			return fmt.Errorf("write task %d: %w", i, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}
	return f.Close()
}

// ReadTasks reads the task label table back in task index order.
func (s *TaskStore) ReadTasks(path string) ([]string, error) {
	rows, err := readAllRows(path)
	if err != nil {
		return nil, err
	}

	labels := make([]string, len(rows))
	for _, row := range rows {
		idx := asInt64(row["task_index"])
		if idx < 0 || idx >= int64(len(labels)) {
			return nil, fmt.Errorf("%s: task_index %d out of range", path, idx)
		}
		label, ok := row["task"].(string)
		if !ok {
			if b, isBytes := row["task"].([]byte); isBytes {
				label = string(b)
			} else {
				return nil, fmt.Errorf("%s: task column is not a string", path)
			}
		}
		labels[idx] = label
	}
	return labels, nil
}

// Ensure TaskStore implements dataset.TaskStore
var _ dataset.TaskStore = (*TaskStore)(nil)
