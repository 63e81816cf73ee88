package player

import "fmt"

// PlayerInfo identifies a connected player.
// Slot is assigned by the game server and reused after disconnect;
// SteamID is the durable account id used as the storage key.
type PlayerInfo struct {
	Slot    int    `json:"slot"`
	SteamID string `json:"steamid"`
	Name    string `json:"name"`
	IP      string `json:"ip,omitempty"`
}

// HasSteamID reports whether p can be used as a storage key.
func (p *PlayerInfo) HasSteamID() bool {
	return p != nil && p.SteamID != ""
}

func (p *PlayerInfo) String() string {
	if p == nil {
		return "<nil player>"
	}
	return fmt.Sprintf("%s[%d] %s", p.Name, p.Slot, p.SteamID)
}
