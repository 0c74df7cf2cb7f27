package signer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Settings holds the user-configurable toggles that shape how a sign
// request is handled. ExpertMode is persisted with the other settings, but
// the Orchestrator does not read it, so it changes no review screen;
// BlindSigning routes every sign
// request through the coarse hash-only review instead of attempting to
// render individual operation fields.
type Settings struct {
	ExpertMode   bool `json:"expert_mode"`
	BlindSigning bool `json:"blindsigning"`
}

// SettingsStore persists Settings across requests.
type SettingsStore interface {
	Load() (Settings, error)
	Save(Settings) error
}

// FileSettingsStore persists Settings as JSON at a fixed path, rewriting it
// atomically (write to a sibling temp file, then rename) so a crash or power
// loss mid-write never leaves a half-written settings file for the next
// Load to choke on.
type FileSettingsStore struct {
	Path string
}

// Load reads settings from disk. A missing file is not an error; it yields
// the zero Settings (expert mode and blind signing both off).
func (s FileSettingsStore) Load() (Settings, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("signer: load settings: %w", err)
	}
	var out Settings
	if err := json.Unmarshal(data, &out); err != nil {
		return Settings{}, fmt.Errorf("signer: decode settings: %w", err)
	}
	return out, nil
}

// Save writes settings to disk atomically.
func (s FileSettingsStore) Save(v Settings) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("signer: encode settings: %w", err)
	}
	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, ".settings-*.tmp")
	if err != nil {
		return fmt.Errorf("signer: create temp settings file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("signer: write temp settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("signer: close temp settings file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("signer: rename temp settings file: %w", err)
	}
	return nil
}
