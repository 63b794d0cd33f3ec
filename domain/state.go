package domain

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Phase is the persisted installation progress. A single enumerated value
// replaces the marker files the shell installer used: exactly one phase is
// recorded at a time and it is the sole branch condition for resuming
// after a reboot.
type Phase string

const (
	PhaseFresh        Phase = "fresh"
	PhaseDockerReboot Phase = "docker-reboot"
	PhaseStackReboot  Phase = "stack-reboot"
)

const DefaultStatePath = "/var/lib/n8n-deployer/state.json"

const stateVersion = 1

// State is the on-disk schema of the installer state file.
type State struct {
	Version   int       `json:"version"`
	Phase     Phase     `json:"phase"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StateStore persists the installation phase with write-then-rename, so a
// crash mid-write never leaves a half-written state file behind.
type StateStore struct {
	Path string
}

func NewStateStore(path string) *StateStore {
	return &StateStore{Path: path}
}

// Load reads the current phase. A missing, unreadable or corrupt file is
// treated as a fresh installation rather than an error: the steps are
// idempotent, so the worst case is re-running work already done.
func (s *StateStore) Load() Phase {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return PhaseFresh
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return PhaseFresh
	}

	switch state.Phase {
	case PhaseDockerReboot, PhaseStackReboot:
		return state.Phase
	}
	return PhaseFresh
}

// Save atomically records the given phase.
func (s *StateStore) Save(phase Phase) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return err
	}

	state := State{Version: stateVersion, Phase: phase, UpdatedAt: time.Now().UTC()}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path)
}

// Reset returns the store to the fresh phase. Called at the start of a
// resumed run, before the matching step suffix executes.
func (s *StateStore) Reset() error {
	return s.Save(PhaseFresh)
}
