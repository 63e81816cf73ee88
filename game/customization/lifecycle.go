package customization

import (
	"context"
	"fmt"
	"math"

	"github.com/kasuganosora/weaponpaints/audit"
	"github.com/kasuganosora/weaponpaints/game/player"
	"github.com/kasuganosora/weaponpaints/plugin/hook"
	"go.uber.org/zap"
)

const hookName = "customization"

// Auditor records customization changes. *audit.Service satisfies it.
type Auditor interface {
	Log(entry audit.AuditEntry)
}

type nopAuditor struct{}

func (nopAuditor) Log(audit.AuditEntry) {}

// Lifecycle ties the sync service to game events: hydrate on connect,
// flush on disconnect, write-through on knife and glove selection.
type Lifecycle struct {
	svc      *Service
	registry *player.Registry
	audit    Auditor
	logger   *zap.Logger
}

// NewLifecycle creates a Lifecycle. auditor may be nil.
func NewLifecycle(svc *Service, registry *player.Registry, auditor Auditor, logger *zap.Logger) *Lifecycle {
	if auditor == nil {
		auditor = nopAuditor{}
	}
	return &Lifecycle{svc: svc, registry: registry, audit: auditor, logger: logger}
}

// Register installs the lifecycle handlers on hc.
func (l *Lifecycle) Register(hc *hook.HookCenter) {
	hc.Register(hook.OnPlayerConnect, 0, hookName, func(ctx context.Context, _ string, data interface{}) (interface{}, error) {
		p, ok := data.(*player.PlayerInfo)
		if !ok {
			return data, fmt.Errorf("unexpected connect payload %T", data)
		}
		l.Connect(ctx, p)
		return data, nil
	})
	// Runs late so other disconnect handlers still see the cached state.
	hc.Register(hook.OnPlayerDisconnect, 100, hookName, func(ctx context.Context, _ string, data interface{}) (interface{}, error) {
		p, ok := data.(*player.PlayerInfo)
		if !ok {
			return data, fmt.Errorf("unexpected disconnect payload %T", data)
		}
		l.Disconnect(ctx, p)
		return data, nil
	})
	hc.Register(hook.OnKnifeSelect, 0, hookName, func(ctx context.Context, _ string, data interface{}) (interface{}, error) {
		sel, ok := data.(*hook.KnifeSelection)
		if !ok {
			return data, fmt.Errorf("unexpected knife payload %T", data)
		}
		l.SelectKnife(ctx, sel)
		return data, nil
	})
	hc.Register(hook.OnGloveSelect, 0, hookName, func(ctx context.Context, _ string, data interface{}) (interface{}, error) {
		sel, ok := data.(*hook.GloveSelection)
		if !ok {
			return data, fmt.Errorf("unexpected glove payload %T", data)
		}
		l.SelectGlove(ctx, sel)
		return data, nil
	})
	hc.Register(hook.OnSkinSelect, 0, hookName, func(ctx context.Context, _ string, data interface{}) (interface{}, error) {
		sel, ok := data.(*hook.SkinSelection)
		if !ok {
			return data, fmt.Errorf("unexpected skin payload %T", data)
		}
		l.SelectSkin(ctx, sel)
		return data, nil
	})
}

// Connect registers p in its slot and hydrates knife, glove and skins, in that order.
// Hydration must finish before the slot's caches are read for this player.
// A different player still holding the slot has their skins flushed and the
// slot's caches cleared first, so nothing of theirs leaks to p.
func (l *Lifecycle) Connect(ctx context.Context, p *player.PlayerInfo) {
	if p == nil {
		return
	}
	if old := l.registry.Get(p.Slot); old != nil && old.SteamID != p.SteamID {
		l.svc.PersistAllSkins(ctx, old)
		l.svc.Store().Clear(p.Slot)
	}
	l.registry.Register(p)
	l.svc.HydrateAll(ctx, p)
}

// Disconnect flushes the player's skins, then frees the slot. A disconnect
// arriving after the slot was handed to someone else does nothing: the slot's
// caches belong to the new occupant, and Connect already flushed p.
func (l *Lifecycle) Disconnect(ctx context.Context, p *player.PlayerInfo) {
	if p == nil {
		return
	}
	if cur := l.registry.Get(p.Slot); cur != nil && cur.SteamID != p.SteamID {
		l.logger.Debug("slot reused before disconnect, skipping flush",
			zap.Int("slot", p.Slot), zap.String("steamid", p.SteamID))
		return
	}
	l.svc.PersistAllSkins(ctx, p)
	l.svc.Store().Clear(p.Slot)
	l.registry.Unregister(p.Slot)
}

// SelectKnife caches and persists a knife choice.
func (l *Lifecycle) SelectKnife(ctx context.Context, sel *hook.KnifeSelection) {
	if sel == nil || sel.Player == nil || !l.svc.Config().KnifeEnabled {
		return
	}
	l.svc.Store().SetKnife(sel.Player.Slot, sel.Knife)
	l.svc.PersistKnife(ctx, sel.Player, sel.Knife)
	l.audit.Log(audit.AuditEntry{
		TraceID: audit.TraceIDFrom(ctx),
		SteamID: sel.Player.SteamID,
		Slot:    sel.Player.Slot,
		Action:  audit.ActionKnifeSelect,
		Payload: map[string]string{"knife": sel.Knife},
	})
}

// SelectGlove caches and persists a glove choice. The defindex is stored
// verbatim; the cache only takes values that fit its uint16 slot.
func (l *Lifecycle) SelectGlove(ctx context.Context, sel *hook.GloveSelection) {
	if sel == nil || sel.Player == nil || !l.svc.Config().GloveEnabled {
		return
	}
	if sel.DefIndex >= 0 && sel.DefIndex <= math.MaxUint16 {
		l.svc.Store().SetGlove(sel.Player.Slot, uint16(sel.DefIndex))
	} else {
		l.logger.Warn("glove defindex out of cache range",
			zap.Int("defindex", sel.DefIndex), zap.String("steamid", sel.Player.SteamID))
	}
	l.svc.PersistGlove(ctx, sel.Player, sel.DefIndex)
	l.audit.Log(audit.AuditEntry{
		TraceID: audit.TraceIDFrom(ctx),
		SteamID: sel.Player.SteamID,
		Slot:    sel.Player.Slot,
		Action:  audit.ActionGloveSelect,
		Payload: map[string]int{"defindex": sel.DefIndex},
	})
}

// SelectSkin updates the slot's weapon map. Skins are flushed on disconnect
// and by the periodic save, not per selection.
func (l *Lifecycle) SelectSkin(ctx context.Context, sel *hook.SkinSelection) {
	if sel == nil || sel.Player == nil || !l.svc.Config().SkinEnabled {
		return
	}
	w := l.svc.Store().EnsureWeapons(sel.Player.Slot)
	if w == nil {
		return
	}
	w.Set(sel.DefIndex, WeaponInfo{Paint: sel.Paint, Seed: sel.Seed, Wear: sel.Wear})
	l.audit.Log(audit.AuditEntry{
		TraceID: audit.TraceIDFrom(ctx),
		SteamID: sel.Player.SteamID,
		Slot:    sel.Player.Slot,
		Action:  audit.ActionSkinSelect,
		Payload: map[string]interface{}{
			"defindex": sel.DefIndex,
			"paint":    sel.Paint,
			"seed":     sel.Seed,
			"wear":     sel.Wear,
		},
	})
}

// SaveAll flushes the skins of every connected player. Used by the periodic save.
func (l *Lifecycle) SaveAll(ctx context.Context) {
	players := l.registry.All()
	for _, p := range players {
		if ctx.Err() != nil {
			return
		}
		l.svc.PersistAllSkins(ctx, p)
	}
	l.logger.Debug("skins autosaved", zap.Int("players", len(players)))
}
