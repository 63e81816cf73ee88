package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegistry_RegisterGet(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	p := &PlayerInfo{Slot: 3, SteamID: "76561198000000003", Name: "three"}
	r.Register(p)

	assert.Same(t, p, r.Get(3))
	assert.Same(t, p, r.GetBySteamID("76561198000000003"))
	assert.Nil(t, r.Get(4))
	assert.Nil(t, r.GetBySteamID(""))
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_SlotReuseDisplaces(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	r.Register(&PlayerInfo{Slot: 1, SteamID: "a"})
	r.Register(&PlayerInfo{Slot: 1, SteamID: "b"})

	require.NotNil(t, r.Get(1))
	assert.Equal(t, "b", r.Get(1).SteamID)
	assert.Nil(t, r.GetBySteamID("a"))
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_Unregister(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	r.Register(&PlayerInfo{Slot: 1, SteamID: "a"})
	r.Unregister(1)
	r.Unregister(1) // no-op
	assert.Nil(t, r.Get(1))
	assert.Zero(t, r.Count())
}

func TestRegistry_AllSortedBySlot(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	r.Register(&PlayerInfo{Slot: 9, SteamID: "c"})
	r.Register(&PlayerInfo{Slot: 2, SteamID: "a"})
	r.Register(&PlayerInfo{Slot: 5, SteamID: "b"})
	r.Register(nil)

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, []int{2, 5, 9}, []int{all[0].Slot, all[1].Slot, all[2].Slot})
}

func TestPlayerInfo_HasSteamID(t *testing.T) {
	var nilPlayer *PlayerInfo
	assert.False(t, nilPlayer.HasSteamID())
	assert.False(t, (&PlayerInfo{Slot: 1}).HasSteamID())
	assert.True(t, (&PlayerInfo{SteamID: "x"}).HasSteamID())
	assert.Equal(t, "<nil player>", nilPlayer.String())
}
