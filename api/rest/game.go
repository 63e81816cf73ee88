package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/weaponpaints/game/customization"
	"github.com/kasuganosora/weaponpaints/game/player"
	"github.com/kasuganosora/weaponpaints/middleware"
	"github.com/kasuganosora/weaponpaints/plugin/hook"
	"go.uber.org/zap"
)

// GameHandler is the ingress for the game server plugin: it turns player
// events posted over HTTP into hook triggers.
type GameHandler struct {
	hooks     *hook.HookCenter
	registry  *player.Registry
	store     *customization.Store
	refresher *customization.Refresher
	logger    *zap.Logger
}

func NewGameHandler(
	hooks *hook.HookCenter,
	registry *player.Registry,
	store *customization.Store,
	refresher *customization.Refresher,
	logger *zap.Logger,
) *GameHandler {
	return &GameHandler{hooks: hooks, registry: registry, store: store, refresher: refresher, logger: logger}
}

type connectRequest struct {
	Slot    *int   `json:"slot" binding:"required"`
	SteamID string `json:"steamid" binding:"required,numeric"`
	Name    string `json:"name"`
	IP      string `json:"ip"`
}

type knifeRequest struct {
	Knife string `json:"knife" binding:"required"`
}

type gloveRequest struct {
	DefIndex *int `json:"defindex" binding:"required"`
}

type skinRequest struct {
	DefIndex int     `json:"defindex" binding:"required"`
	Paint    int     `json:"paint"`
	Seed     int     `json:"seed"`
	Wear     float32 `json:"wear"`
}

// Connect registers a player and hydrates their caches before responding.
// POST /api/game/players
func (h *GameHandler) Connect(c *gin.Context) {
	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if *req.Slot < 0 || *req.Slot >= h.store.Capacity() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slot out of range"})
		return
	}
	p := &player.PlayerInfo{Slot: *req.Slot, SteamID: req.SteamID, Name: req.Name, IP: req.IP}
	if !h.trigger(c, hook.OnPlayerConnect, p) {
		return
	}
	view, _ := h.store.View(p.Slot)
	c.JSON(http.StatusOK, gin.H{"player": p, "cache": view})
}

// Disconnect flushes and frees the slot.
// DELETE /api/game/players/:slot
func (h *GameHandler) Disconnect(c *gin.Context) {
	p, ok := h.connected(c)
	if !ok {
		return
	}
	if h.trigger(c, hook.OnPlayerDisconnect, p) {
		c.Status(http.StatusNoContent)
	}
}

// Loadout returns the cached selections for a connected player.
// GET /api/game/players/:slot/loadout
func (h *GameHandler) Loadout(c *gin.Context) {
	p, ok := h.connected(c)
	if !ok {
		return
	}
	view, _ := h.store.View(p.Slot)
	c.JSON(http.StatusOK, view)
}

// POST /api/game/players/:slot/knife
func (h *GameHandler) SelectKnife(c *gin.Context) {
	p, ok := h.connected(c)
	if !ok {
		return
	}
	var req knifeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.trigger(c, hook.OnKnifeSelect, &hook.KnifeSelection{Player: p, Knife: req.Knife}) {
		c.Status(http.StatusNoContent)
	}
}

// POST /api/game/players/:slot/glove
func (h *GameHandler) SelectGlove(c *gin.Context) {
	p, ok := h.connected(c)
	if !ok {
		return
	}
	var req gloveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.trigger(c, hook.OnGloveSelect, &hook.GloveSelection{Player: p, DefIndex: *req.DefIndex}) {
		c.Status(http.StatusNoContent)
	}
}

// POST /api/game/players/:slot/skin
func (h *GameHandler) SelectSkin(c *gin.Context) {
	p, ok := h.connected(c)
	if !ok {
		return
	}
	var req skinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sel := &hook.SkinSelection{Player: p, DefIndex: req.DefIndex, Paint: req.Paint, Seed: req.Seed, Wear: req.Wear}
	if h.trigger(c, hook.OnSkinSelect, sel) {
		c.Status(http.StatusNoContent)
	}
}

// Refresh is the player's own reload command, rate limited per SteamID.
// POST /api/game/players/:slot/refresh
func (h *GameHandler) Refresh(c *gin.Context) {
	p, ok := h.connected(c)
	if !ok {
		return
	}
	ran, err := h.refresher.Refresh(c.Request.Context(), p)
	if err != nil {
		h.logger.Error("player refresh failed",
			zap.String("steamid", p.SteamID),
			zap.String("trace_id", middleware.GetTraceID(c)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		return
	}
	if !ran {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "refresh on cooldown"})
		return
	}
	view, _ := h.store.View(p.Slot)
	c.JSON(http.StatusOK, view)
}

// connected resolves :slot to the player holding it, writing 400/404 otherwise.
func (h *GameHandler) connected(c *gin.Context) (*player.PlayerInfo, bool) {
	slot, err := strconv.Atoi(c.Param("slot"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot"})
		return nil, false
	}
	p := h.registry.Get(slot)
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no player in slot"})
		return nil, false
	}
	return p, true
}

func (h *GameHandler) trigger(c *gin.Context, event string, data interface{}) bool {
	if _, err := h.hooks.Trigger(c.Request.Context(), event, data); err != nil {
		h.logger.Warn("event interrupted",
			zap.String("event", event),
			zap.String("trace_id", middleware.GetTraceID(c)),
			zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": "event rejected"})
		return false
	}
	return true
}
