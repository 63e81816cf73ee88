package rest_test

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/kasuganosora/weaponpaints/api/rest"
	"github.com/kasuganosora/weaponpaints/audit"
	"github.com/kasuganosora/weaponpaints/game/customization"
	"github.com/kasuganosora/weaponpaints/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const connectAlice = `{"slot":3,"steamid":"76561198012345678","name":"alice","ip":"10.0.0.7"}`

func TestGame_RequiresPluginKey(t *testing.T) {
	e := newEnv(t, keys)
	w := e.send(http.MethodPost, "/api/game/players", connectAlice, map[string]string{"X-Admin-Key": adminKey})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	e = newEnv(t, rest.RouterConfig{AdminKey: adminKey})
	assert.Equal(t, http.StatusServiceUnavailable, e.game(http.MethodPost, "/api/game/players", connectAlice).Code)
}

func TestGame_ConnectHydrates(t *testing.T) {
	e := newEnv(t, keys)
	paint := 415
	require.NoError(t, e.db.Create(&model.PlayerKnife{SteamID: steamID, Knife: "weapon_knife_m9_bayonet"}).Error)
	require.NoError(t, e.db.Create(&model.PlayerSkin{SteamID: steamID, WeaponDefIndex: 60, WeaponPaintID: &paint}).Error)

	w := e.game(http.MethodPost, "/api/game/players", connectAlice)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Cache customization.SlotView `json:"cache"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "weapon_knife_m9_bayonet", body.Cache.Knife)
	assert.Equal(t, 415, body.Cache.Weapons[60].Paint)

	p := e.registry.Get(3)
	require.NotNil(t, p)
	assert.Equal(t, "10.0.0.7", p.IP)
}

func TestGame_ConnectValidation(t *testing.T) {
	e := newEnv(t, keys)
	for _, body := range []string{
		`{"steamid":"76561198012345678"}`,
		`{"slot":1,"steamid":"BOT"}`,
		`{"slot":1}`,
		`{"slot":99,"steamid":"76561198012345678"}`,
		`not json`,
	} {
		assert.Equal(t, http.StatusBadRequest, e.game(http.MethodPost, "/api/game/players", body).Code, body)
	}
	assert.Zero(t, e.registry.Count())
}

func TestGame_SelectionsAndDisconnect(t *testing.T) {
	e := newEnv(t, keys)
	require.Equal(t, http.StatusOK, e.game(http.MethodPost, "/api/game/players", connectAlice).Code)

	assert.Equal(t, http.StatusNoContent,
		e.game(http.MethodPost, "/api/game/players/3/knife", `{"knife":"weapon_knife_push"}`).Code)
	assert.Equal(t, http.StatusNoContent,
		e.game(http.MethodPost, "/api/game/players/3/glove", `{"defindex":0}`).Code)
	assert.Equal(t, http.StatusNoContent,
		e.game(http.MethodPost, "/api/game/players/3/skin", `{"defindex":7,"paint":490,"seed":661,"wear":0.0001}`).Code)

	w := e.game(http.MethodGet, "/api/game/players/3/loadout", "")
	require.Equal(t, http.StatusOK, w.Code)
	var view customization.SlotView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "weapon_knife_push", view.Knife)
	require.NotNil(t, view.Glove)
	assert.Equal(t, uint16(0), *view.Glove)
	assert.Equal(t, customization.WeaponInfo{Paint: 490, Seed: 661, Wear: 0.0001}, view.Weapons[7])

	assert.Equal(t, http.StatusNoContent, e.game(http.MethodDelete, "/api/game/players/3", "").Code)
	assert.Nil(t, e.registry.Get(3))

	var skin model.PlayerSkin
	require.NoError(t, e.db.First(&skin, "steamid = ? AND weapon_defindex = ?", steamID, 7).Error)
	assert.Equal(t, 661, *skin.WeaponSeed)

	var glove model.PlayerGlove
	require.NoError(t, e.db.First(&glove, "steamid = ?", steamID).Error)
	assert.Equal(t, 0, *glove.WeaponDefIndex)

	actions := make([]string, 0, len(e.audit.entries))
	for _, a := range e.audit.entries {
		actions = append(actions, a.Action)
	}
	assert.Equal(t, []string{audit.ActionKnifeSelect, audit.ActionGloveSelect, audit.ActionSkinSelect}, actions)
}

func TestGame_UnknownSlot(t *testing.T) {
	e := newEnv(t, keys)
	assert.Equal(t, http.StatusNotFound, e.game(http.MethodPost, "/api/game/players/5/knife", `{"knife":"x"}`).Code)
	assert.Equal(t, http.StatusNotFound, e.game(http.MethodDelete, "/api/game/players/5", "").Code)
	assert.Equal(t, http.StatusBadRequest, e.game(http.MethodGet, "/api/game/players/five/loadout", "").Code)
}

func TestGame_RefreshCooldown(t *testing.T) {
	e := newEnv(t, keys)
	require.Equal(t, http.StatusOK, e.game(http.MethodPost, "/api/game/players", connectAlice).Code)
	require.NoError(t, e.db.Create(&model.PlayerKnife{SteamID: steamID, Knife: "weapon_knife_widowmaker"}).Error)

	w := e.game(http.MethodPost, "/api/game/players/3/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)
	var view customization.SlotView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "weapon_knife_widowmaker", view.Knife)

	assert.Equal(t, http.StatusTooManyRequests, e.game(http.MethodPost, "/api/game/players/3/refresh", "").Code)
}

func TestGame_SelectionAuditsCarryTraceID(t *testing.T) {
	e := newEnv(t, keys)
	require.Equal(t, http.StatusOK, e.game(http.MethodPost, "/api/game/players", connectAlice).Code)

	for i, req := range []struct{ path, body string }{
		{"/api/game/players/3/knife", `{"knife":"weapon_knife_tactical"}`},
		{"/api/game/players/3/glove", `{"defindex":5031}`},
		{"/api/game/players/3/skin", `{"defindex":7,"paint":44,"wear":0.3}`},
	} {
		w := e.send(http.MethodPost, req.path, req.body, map[string]string{
			"X-Plugin-Key": pluginKey,
			"X-Trace-ID":   "plugin-req-" + strconv.Itoa(i),
		})
		require.Equal(t, http.StatusNoContent, w.Code, req.path)
	}

	e.audit.mu.Lock()
	defer e.audit.mu.Unlock()
	require.Len(t, e.audit.entries, 3)
	for i, entry := range e.audit.entries {
		assert.Equal(t, "plugin-req-"+strconv.Itoa(i), entry.TraceID, entry.Action)
	}
}
