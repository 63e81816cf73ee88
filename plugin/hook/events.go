package hook

import "github.com/kasuganosora/weaponpaints/game/player"

type KnifeSelection struct {
	Player *player.PlayerInfo
	Knife  string
}

type GloveSelection struct {
	Player   *player.PlayerInfo
	DefIndex int
}

// SkinSelection carries one weapon's new paint. Wear is the float value in [0, 1].
type SkinSelection struct {
	Player   *player.PlayerInfo
	DefIndex int
	Paint    int
	Seed     int
	Wear     float32
}
