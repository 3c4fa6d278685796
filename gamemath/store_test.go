package gamemath

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStore_RegisterGet(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.Register(Preset{ID: "sweep_default", Kind: KindSplit, Edge: 0.2, HouseP: 0.1}); err != nil {
		t.Fatal(err)
	}
	got, ok := s.Get("sweep_default")
	if !ok {
		t.Fatal("Get sweep_default returned false")
	}
	if got.Kind != KindSplit || got.Edge != 0.2 || got.HouseP != 0.1 {
		t.Errorf("got %+v", got)
	}
	if _, ok := s.Get("nonexistent"); ok {
		t.Error("Get nonexistent should return false")
	}
}

func TestStore_RegisterOverwrite(t *testing.T) {
	s := NewStore(t.TempDir())

	s.Register(Preset{ID: "m1", Kind: KindSplit, Edge: 0.1, HouseP: 0.1})
	s.Register(Preset{ID: "m1", Kind: KindSimple, Edge: 0.02})
	got, _ := s.Get("m1")
	if got.Kind != KindSimple || got.Edge != 0.02 {
		t.Errorf("expected overwrite: %+v", got)
	}
}

func TestStore_RegisterRejectsInvalid(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.Register(Preset{Kind: KindSplit}); err == nil {
		t.Error("empty id should error")
	}
	err := s.Register(Preset{ID: "bad", Kind: KindSplit, Edge: 0.1, HouseP: 2})
	if !errors.Is(err, ErrInvalidHouseP) {
		t.Errorf("err = %v want ErrInvalidHouseP", err)
	}
	if _, ok := s.Get("bad"); ok {
		t.Error("invalid preset should not be stored")
	}
}

func TestStore_DefaultKind(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.Register(Preset{ID: "plain", Edge: 0.3, HouseP: 0.05}); err != nil {
		t.Fatal(err)
	}
	p, _ := s.Get("plain")
	m, err := p.Model()
	if err != nil {
		t.Fatal(err)
	}
	if m.Kind() != KindSplit {
		t.Errorf("kind = %s want split", m.Kind())
	}
}

func TestStore_Persistence(t *testing.T) {
	dir := t.TempDir()

	s1 := NewStore(dir)
	if err := s1.Register(Preset{ID: "b", Kind: KindSimple, Edge: 0.01}); err != nil {
		t.Fatal(err)
	}
	if err := s1.Register(Preset{ID: "a", Kind: KindSplit, Edge: 0.5, HouseP: 0.1}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "model_presets.json")); err != nil {
		t.Fatal(err)
	}

	s2 := NewStore(dir)
	list := s2.List()
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Fatalf("reloaded presets: %+v", list)
	}
}
