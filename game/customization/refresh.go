package customization

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kasuganosora/weaponpaints/audit"
	"github.com/kasuganosora/weaponpaints/cache"
	"github.com/kasuganosora/weaponpaints/game/player"
	"go.uber.org/zap"
)

// RefreshChannel carries SteamIDs whose saved customization changed outside
// the game server (the web panel, another server).
const RefreshChannel = "weaponpaints:refresh"

const cooldownKeyPrefix = "weaponpaints:refresh:cooldown:"

// Refresher re-hydrates connected players on demand.
type Refresher struct {
	svc      *Service
	registry *player.Registry
	cache    cache.Cache
	pubsub   cache.PubSub
	cooldown time.Duration
	audit    Auditor
	logger   *zap.Logger
}

// NewRefresher creates a Refresher. auditor may be nil.
func NewRefresher(svc *Service, registry *player.Registry, c cache.Cache, ps cache.PubSub,
	cooldown time.Duration, auditor Auditor, logger *zap.Logger) *Refresher {
	if auditor == nil {
		auditor = nopAuditor{}
	}
	return &Refresher{
		svc:      svc,
		registry: registry,
		cache:    c,
		pubsub:   ps,
		cooldown: cooldown,
		audit:    auditor,
		logger:   logger,
	}
}

// Refresh re-reads p's knife, glove and skins from storage, at most once per
// cooldown per SteamID. It reports whether the refresh ran.
func (r *Refresher) Refresh(ctx context.Context, p *player.PlayerInfo) (bool, error) {
	if !p.HasSteamID() {
		return false, nil
	}
	if r.cooldown > 0 {
		ok, err := r.cache.SetNX(ctx, cooldownKeyPrefix+p.SteamID, "1", r.cooldown)
		if err != nil {
			return false, fmt.Errorf("refresh cooldown: %w", err)
		}
		if !ok {
			return false, nil
		}
	}
	r.svc.HydrateAll(ctx, p)
	r.audit.Log(audit.AuditEntry{
		TraceID: audit.TraceIDFrom(ctx),
		SteamID: p.SteamID,
		Slot:    p.Slot,
		Action:  audit.ActionRefresh,
	})
	return true, nil
}

// ResetCooldown lets steamID's next Refresh run immediately.
func (r *Refresher) ResetCooldown(ctx context.Context, steamID string) error {
	if err := r.cache.Del(ctx, cooldownKeyPrefix+steamID); err != nil {
		return fmt.Errorf("reset refresh cooldown: %w", err)
	}
	return nil
}

// Notify asks every listening server to refresh steamID.
func (r *Refresher) Notify(ctx context.Context, steamID string) error {
	if steamID == "" {
		return fmt.Errorf("notify: empty steamid")
	}
	return r.pubsub.Publish(ctx, RefreshChannel, steamID)
}

// Start subscribes to RefreshChannel and re-hydrates the named player whenever a
// notification arrives, bypassing the cooldown. Unknown SteamIDs are ignored.
// The returned stop function unsubscribes and waits for the listener to exit.
func (r *Refresher) Start(ctx context.Context) (func(), error) {
	msgs, unsubscribe, err := r.pubsub.Subscribe(ctx, RefreshChannel)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", RefreshChannel, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				r.handle(ctx, msg.Payload)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			unsubscribe()
			wg.Wait()
		})
	}, nil
}

func (r *Refresher) handle(ctx context.Context, steamID string) {
	p := r.registry.GetBySteamID(steamID)
	if p == nil {
		r.logger.Debug("refresh for offline player ignored", zap.String("steamid", steamID))
		return
	}
	r.svc.HydrateAll(ctx, p)
	r.logger.Info("player customization refreshed",
		zap.String("steamid", steamID), zap.Int("slot", p.Slot))
}
