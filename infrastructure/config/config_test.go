package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func testConfig() *Config {
	return &Config{
		Cameras: []string{"front", "top"},
		Email: EmailConfig{
			Recipients: map[string]RecipientConfig{
				"jordan": {Name: "Jordan Lee", Address: "jordan@example.com"},
				"sam":    {Name: "Sam Ortiz", Address: "sam@example.com"},
			},
		},
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := testConfig()
	cfg.Paths.SourceDataset = "/datasets/raw"
	cfg.FFmpeg.Preset = "veryfast"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Paths.SourceDataset != "/datasets/raw" {
		t.Errorf("source dataset = %q", loaded.Paths.SourceDataset)
	}
	if loaded.FFmpeg.Preset != "veryfast" {
		t.Errorf("preset = %q", loaded.FFmpeg.Preset)
	}
	if len(loaded.Cameras) != 2 {
		t.Errorf("cameras = %v", loaded.Cameras)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := Save(&Config{}, path); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.FFmpeg.FFmpegPath != "ffmpeg" || cfg.FFmpeg.FFprobePath != "ffprobe" {
		t.Errorf("tool paths = %q, %q", cfg.FFmpeg.FFmpegPath, cfg.FFmpeg.FFprobePath)
	}
	if cfg.FFmpeg.TimeoutSeconds != 600 {
		t.Errorf("timeout = %d, want 600", cfg.FFmpeg.TimeoutSeconds)
	}
}

func TestRecipientCRUD(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	mgr := NewConfigManager(testConfig(), path)

	if err := mgr.AddRecipient("alex", "Alex Kim", "alex@example.com"); err != nil {
		t.Fatalf("AddRecipient() error = %v", err)
	}
	if err := mgr.AddRecipient("alex", "Other", "other@example.com"); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("duplicate add error = %v, want ErrDuplicateKey", err)
	}
	if err := mgr.AddRecipient("bad", "Bad", "not-an-email"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("invalid email error = %v, want ErrInvalidEmail", err)
	}

	got, err := mgr.GetRecipient("ALEX")
	if err != nil {
		t.Fatalf("GetRecipient() error = %v", err)
	}
	if got.Address != "alex@example.com" {
		t.Errorf("address = %q", got.Address)
	}

	if err := mgr.UpdateRecipient("alex", "", "alex@lab.example.com"); err != nil {
		t.Fatalf("UpdateRecipient() error = %v", err)
	}
	got, _ = mgr.GetRecipient("alex")
	if got.Name != "Alex Kim" || got.Address != "alex@lab.example.com" {
		t.Errorf("after update = %+v", got)
	}

	if err := mgr.RemoveRecipient("alex"); err != nil {
		t.Fatalf("RemoveRecipient() error = %v", err)
	}
	if _, err := mgr.GetRecipient("alex"); !errors.Is(err, ErrRecipientNotFound) {
		t.Errorf("after remove error = %v, want ErrRecipientNotFound", err)
	}
}

func TestCameraCRUD(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	mgr := NewConfigManager(testConfig(), path)

	if err := mgr.AddCamera("wrist"); err != nil {
		t.Fatalf("AddCamera() error = %v", err)
	}
	if err := mgr.AddCamera("wrist"); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("duplicate camera error = %v, want ErrDuplicateKey", err)
	}
	if len(mgr.ListCameras()) != 3 {
		t.Errorf("cameras = %v", mgr.ListCameras())
	}

	if err := mgr.RemoveCamera("front"); err != nil {
		t.Fatalf("RemoveCamera() error = %v", err)
	}
	if err := mgr.RemoveCamera("gone"); !errors.Is(err, ErrCameraNotFound) {
		t.Errorf("missing camera error = %v, want ErrCameraNotFound", err)
	}
}

func TestLookupRecipient(t *testing.T) {
	lookup := NewRecipientLookup(testConfig())

	tests := []struct {
		query string
		want  string
	}{
		{"jordan", "jordan@example.com"},
		{"Lee", "jordan@example.com"},
		{"sam ortiz", "sam@example.com"},
	}
	for _, tt := range tests {
		matches, err := lookup.LookupRecipient(tt.query)
		if err != nil {
			t.Errorf("LookupRecipient(%q) error = %v", tt.query, err)
			continue
		}
		if len(matches) != 1 || matches[0].Address != tt.want {
			t.Errorf("LookupRecipient(%q) = %v, want %s", tt.query, matches, tt.want)
		}
	}

	if _, err := lookup.LookupRecipient("nobody"); !errors.Is(err, ErrRecipientNotFound) {
		t.Errorf("unknown query error = %v, want ErrRecipientNotFound", err)
	}
}

func TestLookupRecipientsCommaSeparated(t *testing.T) {
	lookup := NewRecipientLookup(testConfig())

	got, err := lookup.LookupRecipients([]string{"jordan, sam", "jordan"})
	if err != nil {
		t.Fatalf("LookupRecipients() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d recipients, want 2 (deduplicated)", len(got))
	}
}
