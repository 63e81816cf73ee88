package customization

import (
	"sort"
	"sync"
)

// DefaultMaxSlots covers 64 players plus the slot-0 offset some servers use.
const DefaultMaxSlots = 65

// WeaponInfo is one weapon's cosmetic state.
type WeaponInfo struct {
	Paint int     `json:"paint"`
	Seed  int     `json:"seed"`
	Wear  float32 `json:"wear"`
}

// WeaponInfos maps weapon defindex → WeaponInfo and is safe for concurrent use.
// Equip handlers may write to it while a persist iterates it.
type WeaponInfos struct {
	mu sync.RWMutex
	m  map[int]WeaponInfo
}

// NewWeaponInfos returns an empty map.
func NewWeaponInfos() *WeaponInfos {
	return &WeaponInfos{m: make(map[int]WeaponInfo)}
}

func (w *WeaponInfos) Get(defindex int) (WeaponInfo, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	info, ok := w.m[defindex]
	return info, ok
}

func (w *WeaponInfos) Set(defindex int, info WeaponInfo) {
	w.mu.Lock()
	w.m[defindex] = info
	w.mu.Unlock()
}

func (w *WeaponInfos) Delete(defindex int) {
	w.mu.Lock()
	delete(w.m, defindex)
	w.mu.Unlock()
}

func (w *WeaponInfos) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.m)
}

// Snapshot copies the current contents.
func (w *WeaponInfos) Snapshot() map[int]WeaponInfo {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(map[int]WeaponInfo, len(w.m))
	for k, v := range w.m {
		out[k] = v
	}
	return out
}

// Range calls fn for every entry of a snapshot in ascending defindex order.
// Returning false from fn stops the iteration.
func (w *WeaponInfos) Range(fn func(defindex int, info WeaponInfo) bool) {
	snap := w.Snapshot()
	keys := make([]int, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		if !fn(k, snap[k]) {
			return
		}
	}
}

type gloveEntry struct {
	defindex uint16
	set      bool
}

// Store holds the per-slot customization caches of the running server.
// Entries are keyed by slot and overwritten by the next occupant; nothing is evicted on its own.
// The lock only keeps slices memory-safe; ordering of same-slot writes is the caller's business.
type Store struct {
	mu      sync.RWMutex
	knives  []string
	gloves  []gloveEntry
	weapons []*WeaponInfos
}

// NewStore allocates caches for slots [0, maxSlots).
func NewStore(maxSlots int) *Store {
	if maxSlots <= 0 {
		maxSlots = DefaultMaxSlots
	}
	return &Store{
		knives:  make([]string, maxSlots),
		gloves:  make([]gloveEntry, maxSlots),
		weapons: make([]*WeaponInfos, maxSlots),
	}
}

// Capacity returns the number of slots.
func (s *Store) Capacity() int {
	return len(s.knives)
}

func (s *Store) valid(slot int) bool {
	return slot >= 0 && slot < len(s.knives)
}

// Knife returns the knife cached for slot; ok is false when none is set.
func (s *Store) Knife(slot int) (name string, ok bool) {
	if !s.valid(slot) {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	name = s.knives[slot]
	return name, name != ""
}

func (s *Store) SetKnife(slot int, name string) {
	if !s.valid(slot) {
		return
	}
	s.mu.Lock()
	s.knives[slot] = name
	s.mu.Unlock()
}

// Glove returns the glove defindex cached for slot; ok is false when none is set.
// An explicit 0 is a valid cached value.
func (s *Store) Glove(slot int) (defindex uint16, ok bool) {
	if !s.valid(slot) {
		return 0, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e := s.gloves[slot]
	return e.defindex, e.set
}

func (s *Store) SetGlove(slot int, defindex uint16) {
	if !s.valid(slot) {
		return
	}
	s.mu.Lock()
	s.gloves[slot] = gloveEntry{defindex: defindex, set: true}
	s.mu.Unlock()
}

// Weapons returns the slot's weapon map, or nil if none is cached.
func (s *Store) Weapons(slot int) *WeaponInfos {
	if !s.valid(slot) {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weapons[slot]
}

// SetWeapons replaces the slot's weapon map wholesale.
func (s *Store) SetWeapons(slot int, w *WeaponInfos) {
	if !s.valid(slot) {
		return
	}
	s.mu.Lock()
	s.weapons[slot] = w
	s.mu.Unlock()
}

// EnsureWeapons returns the slot's weapon map, creating an empty one if absent.
// It returns nil for an out-of-range slot.
func (s *Store) EnsureWeapons(slot int) *WeaponInfos {
	if !s.valid(slot) {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.weapons[slot] == nil {
		s.weapons[slot] = NewWeaponInfos()
	}
	return s.weapons[slot]
}

// Clear drops everything cached for slot.
func (s *Store) Clear(slot int) {
	if !s.valid(slot) {
		return
	}
	s.mu.Lock()
	s.knives[slot] = ""
	s.gloves[slot] = gloveEntry{}
	s.weapons[slot] = nil
	s.mu.Unlock()
}

// SlotView is a read-only copy of one slot's caches.
type SlotView struct {
	Slot    int                `json:"slot"`
	Knife   string             `json:"knife,omitempty"`
	Glove   *uint16            `json:"glove,omitempty"`
	Weapons map[int]WeaponInfo `json:"weapons,omitempty"`
}

// View copies the caches of slot. ok is false for an out-of-range slot.
func (s *Store) View(slot int) (SlotView, bool) {
	if !s.valid(slot) {
		return SlotView{}, false
	}
	v := SlotView{Slot: slot}
	v.Knife, _ = s.Knife(slot)
	if g, ok := s.Glove(slot); ok {
		v.Glove = &g
	}
	if w := s.Weapons(slot); w != nil {
		v.Weapons = w.Snapshot()
	}
	return v, true
}
