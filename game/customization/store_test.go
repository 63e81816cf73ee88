package customization

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_KnifeGlove(t *testing.T) {
	s := NewStore(4)
	_, ok := s.Knife(1)
	assert.False(t, ok)

	s.SetKnife(1, "weapon_knife_butterfly")
	name, ok := s.Knife(1)
	assert.True(t, ok)
	assert.Equal(t, "weapon_knife_butterfly", name)

	_, ok = s.Glove(1)
	assert.False(t, ok)
	s.SetGlove(1, 0)
	g, ok := s.Glove(1)
	assert.True(t, ok, "explicit zero is a cached value")
	assert.Equal(t, uint16(0), g)
}

func TestStore_OutOfRangeSlots(t *testing.T) {
	s := NewStore(2)
	s.SetKnife(-1, "x")
	s.SetKnife(2, "x")
	s.SetGlove(5, 1)
	s.SetWeapons(9, NewWeaponInfos())
	s.Clear(100)

	_, ok := s.Knife(2)
	assert.False(t, ok)
	_, ok = s.Glove(5)
	assert.False(t, ok)
	assert.Nil(t, s.Weapons(9))
	assert.Nil(t, s.EnsureWeapons(-3))
	_, ok = s.View(2)
	assert.False(t, ok)
}

func TestStore_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultMaxSlots, NewStore(0).Capacity())
}

func TestStore_EnsureWeaponsAndClear(t *testing.T) {
	s := NewStore(4)
	assert.Nil(t, s.Weapons(2))

	w := s.EnsureWeapons(2)
	require.NotNil(t, w)
	assert.Same(t, w, s.EnsureWeapons(2))
	w.Set(7, WeaponInfo{Paint: 5})

	s.SetKnife(2, "k")
	s.SetGlove(2, 5030)
	s.Clear(2)

	assert.Nil(t, s.Weapons(2))
	_, ok := s.Knife(2)
	assert.False(t, ok)
	_, ok = s.Glove(2)
	assert.False(t, ok)
}

func TestStore_View(t *testing.T) {
	s := NewStore(4)
	s.SetKnife(3, "weapon_knife_m9_bayonet")
	s.SetGlove(3, 5027)
	s.EnsureWeapons(3).Set(7, WeaponInfo{Paint: 44, Seed: 1, Wear: 0.1})

	v, ok := s.View(3)
	require.True(t, ok)
	assert.Equal(t, "weapon_knife_m9_bayonet", v.Knife)
	require.NotNil(t, v.Glove)
	assert.Equal(t, uint16(5027), *v.Glove)
	assert.Equal(t, map[int]WeaponInfo{7: {Paint: 44, Seed: 1, Wear: 0.1}}, v.Weapons)
}

func TestWeaponInfos_RangeOrderedAndStoppable(t *testing.T) {
	w := NewWeaponInfos()
	w.Set(9, WeaponInfo{Paint: 1})
	w.Set(1, WeaponInfo{Paint: 2})
	w.Set(4, WeaponInfo{Paint: 3})

	var seen []int
	w.Range(func(d int, _ WeaponInfo) bool {
		seen = append(seen, d)
		return d != 4
	})
	assert.Equal(t, []int{1, 4}, seen)

	w.Delete(9)
	assert.Equal(t, 2, w.Len())
	_, ok := w.Get(9)
	assert.False(t, ok)
}

func TestWeaponInfos_ConcurrentWritesDuringRange(t *testing.T) {
	w := NewWeaponInfos()
	for i := 0; i < 100; i++ {
		w.Set(i, WeaponInfo{Paint: i})
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 100; i < 200; i++ {
			w.Set(i, WeaponInfo{Paint: i})
		}
	}()
	go func() {
		defer wg.Done()
		n := 0
		w.Range(func(int, WeaponInfo) bool { n++; return true })
		assert.GreaterOrEqual(t, n, 100)
	}()
	wg.Wait()
	assert.Equal(t, 200, w.Len())
}
