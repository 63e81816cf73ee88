package player

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Registry maps occupied slots to the player currently in them.
type Registry struct {
	mu      sync.RWMutex
	players map[int]*PlayerInfo // slot → player
	logger  *zap.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		players: make(map[int]*PlayerInfo),
		logger:  logger,
	}
}

// Register records p in its slot. A previous occupant of the slot is displaced
// (the game reused the slot before we saw the disconnect).
func (r *Registry) Register(p *PlayerInfo) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.players[p.Slot]; ok && old.SteamID != p.SteamID {
		r.logger.Info("slot occupant displaced",
			zap.Int("slot", p.Slot),
			zap.String("old_steamid", old.SteamID),
			zap.String("steamid", p.SteamID))
	}
	r.players[p.Slot] = p
	r.logger.Info("player registered",
		zap.Int("slot", p.Slot),
		zap.String("steamid", p.SteamID))
}

// Unregister frees a slot.
func (r *Registry) Unregister(slot int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.players, slot)
	r.logger.Info("player unregistered", zap.Int("slot", slot))
}

// Get returns the player in slot, or nil.
func (r *Registry) Get(slot int) *PlayerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.players[slot]
}

// GetBySteamID finds the connected player with the given SteamID, or nil.
func (r *Registry) GetBySteamID(steamID string) *PlayerInfo {
	if steamID == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.players {
		if p.SteamID == steamID {
			return p
		}
	}
	return nil
}

// Count returns the number of occupied slots.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// All returns a snapshot of all connected players ordered by slot.
func (r *Registry) All() []*PlayerInfo {
	r.mu.RLock()
	out := make([]*PlayerInfo, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out
}
