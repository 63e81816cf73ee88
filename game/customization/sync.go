package customization

import (
	"context"
	"fmt"
	"math"

	"github.com/kasuganosora/weaponpaints/config"
	"github.com/kasuganosora/weaponpaints/db"
	"github.com/kasuganosora/weaponpaints/game/player"
	"github.com/kasuganosora/weaponpaints/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	tableKnife  = model.PlayerKnife{}.TableName()
	tableGloves = model.PlayerGlove{}.TableName()
	tableSkins  = model.PlayerSkin{}.TableName()

	skinUpsert = clause.OnConflict{
		Columns:   []clause.Column{{Name: "steamid"}, {Name: "weapon_defindex"}},
		DoUpdates: clause.AssignmentColumns([]string{"weapon_paint_id", "weapon_wear", "weapon_seed"}),
	}
)

// Row shapes for the three selects. Pointers distinguish NULL from zero.
type knifeRow struct {
	Knife *string `gorm:"column:knife"`
}

type gloveRow struct {
	WeaponDefIndex *int64 `gorm:"column:weapon_defindex"`
}

type skinRow struct {
	WeaponDefIndex *int     `gorm:"column:weapon_defindex"`
	WeaponPaintID  *int     `gorm:"column:weapon_paint_id"`
	WeaponWear     *float32 `gorm:"column:weapon_wear"`
	WeaponSeed     *int     `gorm:"column:weapon_seed"`
}

func (r skinRow) info() (int, WeaponInfo) {
	var defindex int
	var info WeaponInfo
	if r.WeaponDefIndex != nil {
		defindex = *r.WeaponDefIndex
	}
	if r.WeaponPaintID != nil {
		info.Paint = *r.WeaponPaintID
	}
	if r.WeaponWear != nil {
		info.Wear = *r.WeaponWear
	}
	if r.WeaponSeed != nil {
		info.Seed = *r.WeaponSeed
	}
	return defindex, info
}

// Service moves customization state between the slot-keyed Store and the
// steamid-keyed tables. None of its methods return errors: a storage failure is
// logged once and the call behaves as if nothing was stored, so callers cannot
// tell "no saved data" from "database down".
type Service struct {
	conns  db.ConnProvider
	store  *Store
	cfg    config.CustomizationConfig
	logger *zap.Logger
}

// NewService creates a Service. cfg is copied and never re-read.
func NewService(conns db.ConnProvider, store *Store, cfg config.CustomizationConfig, logger *zap.Logger) *Service {
	return &Service{conns: conns, store: store, cfg: cfg, logger: logger}
}

// Store returns the caches this service hydrates.
func (s *Service) Store() *Store { return s.store }

// Config returns the feature toggles the service was built with.
func (s *Service) Config() config.CustomizationConfig { return s.cfg }

// run executes fn inside the single failure boundary of an operation.
// Panics from row mapping are treated like any other storage failure.
func (s *Service) run(msg string, p *player.PlayerInfo, fn func() error) {
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		err = fn()
	}()
	if err != nil {
		s.logger.Error(msg,
			zap.String("steamid", p.SteamID),
			zap.Int("slot", p.Slot),
			zap.Error(err))
	}
}

// HydrateKnife loads the player's saved knife into the knife cache.
// An empty or missing row leaves the cache as it was.
func (s *Service) HydrateKnife(ctx context.Context, p *player.PlayerInfo) {
	if !s.cfg.KnifeEnabled || p == nil {
		return
	}
	s.run("error fetching knife from database", p, func() error {
		var row knifeRow
		err := s.conns.Connection(ctx, func(conn *gorm.DB) error {
			return conn.Table(tableKnife).
				Select("knife").
				Where("steamid = ?", p.SteamID).
				Limit(1).
				Scan(&row).Error
		})
		if err != nil {
			return err
		}
		if row.Knife != nil && *row.Knife != "" {
			s.store.SetKnife(p.Slot, *row.Knife)
		}
		return nil
	})
}

// HydrateGlove loads the player's saved glove into the glove cache.
// A missing row or NULL defindex leaves the cache as it was; a stored 0 is written.
func (s *Service) HydrateGlove(ctx context.Context, p *player.PlayerInfo) {
	if !s.cfg.GloveEnabled || p == nil {
		return
	}
	s.run("error fetching glove from database", p, func() error {
		var row gloveRow
		err := s.conns.Connection(ctx, func(conn *gorm.DB) error {
			return conn.Table(tableGloves).
				Select("weapon_defindex").
				Where("steamid = ?", p.SteamID).
				Limit(1).
				Scan(&row).Error
		})
		if err != nil {
			return err
		}
		if row.WeaponDefIndex == nil {
			return nil
		}
		v := *row.WeaponDefIndex
		if v < 0 || v > math.MaxUint16 {
			return fmt.Errorf("glove defindex %d does not fit uint16", v)
		}
		s.store.SetGlove(p.Slot, uint16(v))
		return nil
	})
}

// HydrateSkins replaces the slot's weapon map with exactly what is stored.
// Weapons cached for the slot but absent from storage are dropped.
func (s *Service) HydrateSkins(ctx context.Context, p *player.PlayerInfo) {
	if !s.cfg.SkinEnabled || !p.HasSteamID() {
		return
	}
	s.run("error fetching weapon paints from database", p, func() error {
		var rows []skinRow
		err := s.conns.Connection(ctx, func(conn *gorm.DB) error {
			return conn.Table(tableSkins).
				Select("weapon_defindex, weapon_paint_id, weapon_wear, weapon_seed").
				Where("steamid = ?", p.SteamID).
				Find(&rows).Error
		})
		if err != nil {
			return err
		}

		weapons := NewWeaponInfos()
		for _, r := range rows {
			defindex, info := r.info()
			weapons.Set(defindex, info)
		}
		s.store.SetWeapons(p.Slot, weapons)
		return nil
	})
}

// HydrateAll runs the three hydrations in order: knife, glove, skins.
func (s *Service) HydrateAll(ctx context.Context, p *player.PlayerInfo) {
	s.HydrateKnife(ctx, p)
	s.HydrateGlove(ctx, p)
	s.HydrateSkins(ctx, p)
}

// PersistKnife upserts the player's knife.
func (s *Service) PersistKnife(ctx context.Context, p *player.PlayerInfo, knife string) {
	if !s.cfg.KnifeEnabled || !p.HasSteamID() || knife == "" {
		return
	}
	s.run("error syncing knife to database", p, func() error {
		return s.conns.Connection(ctx, func(conn *gorm.DB) error {
			return conn.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "steamid"}},
				DoUpdates: clause.AssignmentColumns([]string{"knife"}),
			}).Create(&model.PlayerKnife{SteamID: p.SteamID, Knife: knife}).Error
		})
	})
}

// PersistGlove upserts the player's glove. defindex is stored verbatim.
func (s *Service) PersistGlove(ctx context.Context, p *player.PlayerInfo, defindex int) {
	if !s.cfg.GloveEnabled || !p.HasSteamID() {
		return
	}
	s.run("error syncing glove to database", p, func() error {
		return s.conns.Connection(ctx, func(conn *gorm.DB) error {
			return conn.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "steamid"}},
				DoUpdates: clause.AssignmentColumns([]string{"weapon_defindex"}),
			}).Create(&model.PlayerGlove{SteamID: p.SteamID, WeaponDefIndex: &defindex}).Error
		})
	})
}

// PersistAllSkins upserts every weapon cached for the player's slot, one statement
// per weapon on a single connection. The first failure stops the loop; rows already
// written stay written.
func (s *Service) PersistAllSkins(ctx context.Context, p *player.PlayerInfo) {
	if !p.HasSteamID() {
		return
	}
	weapons := s.store.Weapons(p.Slot)
	if weapons == nil {
		return
	}
	s.run("error syncing weapon paints to database", p, func() error {
		return s.conns.Connection(ctx, func(conn *gorm.DB) error {
			// conn's statement is single-use; a session lets each upsert start clean.
			sess := conn.Session(&gorm.Session{})
			var err error
			weapons.Range(func(defindex int, info WeaponInfo) bool {
				paint, wear, seed := info.Paint, info.Wear, info.Seed
				err = sess.Clauses(skinUpsert).Create(&model.PlayerSkin{
					SteamID:        p.SteamID,
					WeaponDefIndex: defindex,
					WeaponPaintID:  &paint,
					WeaponWear:     &wear,
					WeaponSeed:     &seed,
				}).Error
				if err != nil {
					err = fmt.Errorf("weapon %d: %w", defindex, err)
				}
				return err == nil
			})
			return err
		})
	})
}
