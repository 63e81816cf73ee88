package model

// PlayerKnife is the single saved knife per player.
type PlayerKnife struct {
	SteamID string `gorm:"column:steamid;primaryKey;size:64" json:"steamid"`
	Knife   string `gorm:"column:knife;size:64;not null" json:"knife"`
}

func (PlayerKnife) TableName() string { return "wp_player_knife" }

// PlayerGlove is the single saved glove per player. A NULL defindex means "no glove".
type PlayerGlove struct {
	SteamID        string `gorm:"column:steamid;primaryKey;size:64" json:"steamid"`
	WeaponDefIndex *int   `gorm:"column:weapon_defindex" json:"weapon_defindex"`
}

func (PlayerGlove) TableName() string { return "wp_player_gloves" }

// PlayerSkin is one weapon's paint for a player, keyed by (steamid, weapon_defindex).
// The panel may leave paint/wear/seed NULL, hence the pointers.
type PlayerSkin struct {
	SteamID        string   `gorm:"column:steamid;primaryKey;size:64" json:"steamid"`
	WeaponDefIndex int      `gorm:"column:weapon_defindex;primaryKey;autoIncrement:false" json:"weapon_defindex"`
	WeaponPaintID  *int     `gorm:"column:weapon_paint_id" json:"weapon_paint_id"`
	WeaponWear     *float32 `gorm:"column:weapon_wear;type:float" json:"weapon_wear"`
	WeaponSeed     *int     `gorm:"column:weapon_seed" json:"weapon_seed"`
}

func (PlayerSkin) TableName() string { return "wp_player_skins" }
