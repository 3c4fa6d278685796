package gamemath

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Preset is a named model configuration.
type Preset struct {
	ID     string  `json:"id"`
	Kind   string  `json:"kind"`
	Edge   float64 `json:"edge"`
	HouseP float64 `json:"houseP,omitempty"`
}

// Model builds the model described by the preset.
func (p Preset) Model() (Model, error) {
	return New(p.Kind, p.Edge, p.HouseP)
}

// Store persists presets by ID to model_presets.json.
type Store struct {
	mu      sync.RWMutex
	presets map[string]Preset
	dataDir string
}

func NewStore(dataDir string) *Store {
	if dataDir == "" {
		dataDir = "data"
	}
	s := &Store{
		presets: make(map[string]Preset),
		dataDir: dataDir,
	}
	s.load()
	return s
}

func (s *Store) path() string {
	return filepath.Join(s.dataDir, "model_presets.json")
}

func (s *Store) load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path())
	if err != nil {
		return
	}
	var list []Preset
	if err := json.Unmarshal(data, &list); err != nil {
		return
	}
	for _, p := range list {
		if p.ID != "" {
			s.presets[p.ID] = p
		}
	}
}

// saveLocked writes the store to disk. Caller must hold s.mu.
func (s *Store) saveLocked() error {
	list := make([]Preset, 0, len(s.presets))
	for _, p := range s.presets {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(s.path(), data, 0644)
}

// Register validates and stores a preset. Overwrites if exists.
func (s *Store) Register(p Preset) error {
	if p.ID == "" {
		return fmt.Errorf("preset id required")
	}
	if p.Kind == "" {
		p.Kind = KindSplit
	}
	if _, err := p.Model(); err != nil {
		return fmt.Errorf("preset %s: %w", p.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presets[p.ID] = p
	return s.saveLocked()
}

// Get returns the preset for id.
func (s *Store) Get(id string) (Preset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.presets[id]
	return p, ok
}

// List returns all presets ordered by ID.
func (s *Store) List() []Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Preset, 0, len(s.presets))
	for _, p := range s.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
