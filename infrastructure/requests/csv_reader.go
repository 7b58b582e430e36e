// Package requests reads episode request files. Requests arrive as CSV
// because that is what the labeling spreadsheets export.
package requests

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"robot-dataset-curator/domain/dataset"
)

// Required and optional CSV header names.
const (
	headerStartTime = "start_time"
	headerEndTime   = "end_time"
	headerTask      = "task"
	headerClipName  = "clip_name"
)

// CSVReader reads episode requests from CSV files
type CSVReader struct{}

// NewCSVReader creates a new CSV request reader
func NewCSVReader() *CSVReader {
	return &CSVReader{}
}

// Read parses an episode request file. Any malformed row fails the whole
// read: a silently skipped row would shift every later episode index.
func (r *CSVReader) Read(path string) ([]dataset.EpisodeRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open requests file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}

	cols, err := headerColumns(records[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var requests []dataset.EpisodeRequest
	for i, record := range records[1:] {
		req, err := parseRow(record, cols)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// headerColumns maps known header names to their column positions.
func headerColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{headerStartTime, headerEndTime, headerTask} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	return cols, nil
}

func parseRow(record []string, cols map[string]int) (dataset.EpisodeRequest, error) {
	var req dataset.EpisodeRequest

	start, err := parseSeconds(field(record, cols, headerStartTime))
	if err != nil {
		return req, fmt.Errorf("start_time: %w", err)
	}
	end, err := parseSeconds(field(record, cols, headerEndTime))
	if err != nil {
		return req, fmt.Errorf("end_time: %w", err)
	}

	req.Range = dataset.TimeRange{Start: start, End: end}
	if err := req.Range.Validate(); err != nil {
		return req, err
	}

	req.Task = strings.TrimSpace(field(record, cols, headerTask))
	if req.Task == "" {
		return req, fmt.Errorf("task is empty")
	}
	req.ClipName = strings.TrimSpace(field(record, cols, headerClipName))

	return req, nil
}

func field(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// parseSeconds accepts plain seconds ("12.5") and minute:second notation
// ("1:12.5"), which some spreadsheets export for durations.
func parseSeconds(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("value is empty")
	}

	if mins, secs, ok := strings.Cut(s, ":"); ok {
		m, err := strconv.ParseFloat(mins, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid minutes %q", mins)
		}
		v, err := strconv.ParseFloat(secs, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid seconds %q", secs)
		}
		return m*60 + v, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}
