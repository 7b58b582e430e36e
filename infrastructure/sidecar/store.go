// Package sidecar reads and writes the JSON documents that ride alongside a
// dataset's tables. Documents are handled as generic maps so fields this
// tool does not know about pass through untouched.
package sidecar

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store implements the application SidecarStore port on JSON files
type Store struct{}

// NewStore creates a new JSON sidecar store
func NewStore() *Store {
	return &Store{}
}

// Read parses a JSON sidecar into a generic document.
func (s *Store) Read(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// Write marshals a document to path with stable two-space indentation.
func (s *Store) Write(path string, doc map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create sidecar directory: %w", err)
	}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
