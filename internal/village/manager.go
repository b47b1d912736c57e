package village

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cory-johannsen/notevillage/internal/village/geom"
	"github.com/cory-johannsen/notevillage/internal/village/rng"
)

// Manager mutation errors, matchable with errors.Is.
var (
	ErrUnknownZone     = errors.New("unknown zone")
	ErrVillagerExists  = errors.New("villager already exists")
	ErrVillagerMissing = errors.New("villager not found")
)

// Manager tracks the live village between regenerations. It owns a deep copy
// of a generated Village and applies incremental villager edits (vault adds,
// deletes, resizes) without re-running the generator. The original snapshot
// handed to SetVillage is never mutated.
//
// All methods are safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	village *Village
}

// NewManager creates a Manager holding a deep copy of v.
//
// Precondition: v must be non-nil.
func NewManager(v *Village) *Manager {
	return &Manager{village: v.Clone()}
}

// SetVillage replaces the live village with a deep copy of v, e.g. after a
// regeneration.
//
// Precondition: v must be non-nil.
func (m *Manager) SetVillage(v *Village) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.village = v.Clone()
}

// Village returns a deep copy of the live village.
//
// Postcondition: the returned value is independent of later mutations.
func (m *Manager) Village() *Village {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.village.Clone()
}

// VillagerCount returns the number of live villagers.
func (m *Manager) VillagerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.village.Villagers)
}

// AddVillager creates a villager for note inside the zone with the given ID,
// placing it at a seed-independent but note-deterministic position inside
// the zone's padded interior.
//
// Precondition: zoneID must identify an existing zone.
// Postcondition: Returns the new villager, or an error if the zone is
// unknown or the note already has a villager.
func (m *Manager) AddVillager(note Note, zoneID string) (Villager, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	zone, ok := m.village.ZoneByID(zoneID)
	if !ok {
		return Villager{}, fmt.Errorf("village: %w: %q", ErrUnknownZone, zoneID)
	}

	id := VillagerID(note.Path)
	for _, v := range m.village.Villagers {
		if v.ID == id {
			return Villager{}, fmt.Errorf("village: %w: %q", ErrVillagerExists, id)
		}
	}

	// Position and palette derive from the note path so repeated add/remove
	// cycles of the same note land it in the same spot.
	r := rng.NewFromString(note.Path)
	x, y := r.PointInRect(zone.Bounds.X, zone.Bounds.Y,
		zone.Bounds.Width, zone.Bounds.Height, villagerPadding)

	v := Villager{
		ID:            id,
		NotePath:      note.Path,
		DisplayName:   note.DisplayName,
		ContentLength: note.ContentLength,
		Home:          geom.Point{X: x, Y: y},
		ZoneID:        zone.ID,
		PaletteIndex:  r.IntRange(0, 7),
		Scale:         ScaleForContentLength(note.ContentLength),
	}
	m.village.Villagers = append(m.village.Villagers, v)
	return v, nil
}

// RemoveVillager deletes the villager with the given ID.
//
// Postcondition: Returns an error if no such villager exists.
func (m *Manager) RemoveVillager(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, v := range m.village.Villagers {
		if v.ID == id {
			m.village.Villagers = append(m.village.Villagers[:i], m.village.Villagers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("village: %w: %q", ErrVillagerMissing, id)
}

// UpdateVillagerSize records a note's new content length and rescales its
// villager accordingly.
//
// Postcondition: Returns the updated villager, or an error if no such
// villager exists.
func (m *Manager) UpdateVillagerSize(id string, newContentLength int) (Villager, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.village.Villagers {
		if m.village.Villagers[i].ID == id {
			m.village.Villagers[i].ContentLength = newContentLength
			m.village.Villagers[i].Scale = ScaleForContentLength(newContentLength)
			return m.village.Villagers[i], nil
		}
	}
	return Villager{}, fmt.Errorf("village: %w: %q", ErrVillagerMissing, id)
}

// Villager returns the live villager with the given ID.
//
// Postcondition: Returns (villager, true) if found, or (Villager{}, false).
func (m *Manager) Villager(id string) (Villager, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.village.Villagers {
		if v.ID == id {
			return v, true
		}
	}
	return Villager{}, false
}
