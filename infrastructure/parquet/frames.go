package parquet

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"robot-dataset-curator/domain/dataset"
)

// FrameStore implements dataset.FrameStore on parquet files. The payload
// column set is not fixed; schemas are discovered on read and rebuilt from
// the rows on write.
type FrameStore struct{}

// NewFrameStore creates a new parquet-backed frame store
func NewFrameStore() *FrameStore {
	return &FrameStore{}
}

// ReadFrames reads every row of a per-frame table file.
func (s *FrameStore) ReadFrames(path string) ([]dataset.FrameRecord, error) {
	rows, err := readAllRows(path)
	if err != nil {
		return nil, err
	}

	frames := make([]dataset.FrameRecord, 0, len(rows))
	for i, row := range rows {
		frame, err := frameFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// WriteFrames writes the frames as one parquet file. The schema is derived
// from the first frame; every frame must carry the same payload columns.
func (s *FrameStore) WriteFrames(path string, frames []dataset.FrameRecord) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to write")
	}

	schema := frameSchema(frames[0])
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := parquet.NewWriter(f, schema)
	for i, frame := range frames {
		row := schema.Deconstruct(nil, frameToMap(frame))
		if _, err := w.WriteRows([]parquet.Row{row}); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}
	return f.Close()
}

// frameSchema builds the parquet schema for a frame's column set.
func frameSchema(frame dataset.FrameRecord) *parquet.Schema {
	group := parquet.Group{
		dataset.ColEpisodeIndex: parquet.Int(64),
		dataset.ColFrameIndex:   parquet.Int(64),
		dataset.ColTimestamp:    parquet.Leaf(parquet.DoubleType),
		dataset.ColIndex:        parquet.Int(64),
		dataset.ColTaskIndex:    parquet.Int(64),
	}
	for name, value := range frame.Payload {
		group[name] = payloadNode(value)
	}
	return parquet.NewSchema("frame", group)
}

// payloadNode picks a parquet node for a payload value. Payload columns are
// optional so rows missing a value still round-trip.
func payloadNode(value any) parquet.Node {
	switch value.(type) {
	case []float64, []float32, []any:
		return parquet.Optional(parquet.List(parquet.Leaf(parquet.DoubleType)))
	case int64, int32, int:
		return parquet.Optional(parquet.Int(64))
	case string:
		return parquet.Optional(parquet.String())
	case bool:
		return parquet.Optional(parquet.Leaf(parquet.BooleanType))
	default:
		return parquet.Optional(parquet.Leaf(parquet.DoubleType))
	}
}

func frameToMap(frame dataset.FrameRecord) map[string]any {
	m := map[string]any{
		dataset.ColEpisodeIndex: frame.EpisodeIndex,
		dataset.ColFrameIndex:   frame.FrameIndex,
		dataset.ColTimestamp:    frame.Timestamp,
		dataset.ColIndex:        frame.Index,
		dataset.ColTaskIndex:    frame.TaskIndex,
	}
	for name, value := range frame.Payload {
		m[name] = normalizeValue(value)
	}
	return m
}

func frameFromRow(row map[string]any) (dataset.FrameRecord, error) {
	frame := dataset.FrameRecord{Payload: make(map[string]any)}

	for name, value := range row {
		switch name {
		case dataset.ColEpisodeIndex:
			frame.EpisodeIndex = asInt64(value)
		case dataset.ColFrameIndex:
			frame.FrameIndex = asInt64(value)
		case dataset.ColTimestamp:
			ts, ok := asFloat64(value)
			if !ok {
				return frame, fmt.Errorf("column %s holds %T, want a number", name, value)
			}
			frame.Timestamp = ts
		case dataset.ColIndex:
			frame.Index = asInt64(value)
		case dataset.ColTaskIndex:
			frame.TaskIndex = asInt64(value)
		default:
			frame.Payload[name] = normalizeValue(value)
		}
	}
	return frame, nil
}

// Ensure FrameStore implements dataset.FrameStore
var _ dataset.FrameStore = (*FrameStore)(nil)
