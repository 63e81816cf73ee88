package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/weaponpaints/audit"
	"github.com/kasuganosora/weaponpaints/game/customization"
	"github.com/kasuganosora/weaponpaints/game/player"
	"github.com/kasuganosora/weaponpaints/middleware"
	"github.com/kasuganosora/weaponpaints/scheduler"
	"go.uber.org/zap"
)

// AdminHandler serves the operator endpoints. Routes are guarded by
// middleware.AdminKey.
type AdminHandler struct {
	svc       *customization.Service
	registry  *player.Registry
	refresher *customization.Refresher
	sched     *scheduler.Scheduler
	audit     customization.Auditor
	logger    *zap.Logger
}

// NewAdminHandler creates an AdminHandler. sched and auditor may be nil.
func NewAdminHandler(
	svc *customization.Service,
	registry *player.Registry,
	refresher *customization.Refresher,
	sched *scheduler.Scheduler,
	auditor customization.Auditor,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		svc:       svc,
		registry:  registry,
		refresher: refresher,
		sched:     sched,
		audit:     auditor,
		logger:    logger,
	}
}

// ListPlayers returns every connected player in slot order.
// GET /api/admin/players
func (h *AdminHandler) ListPlayers(c *gin.Context) {
	players := h.registry.All()
	c.JSON(http.StatusOK, gin.H{"players": players, "count": len(players)})
}

// Slot returns what is cached for one slot.
// GET /api/admin/slots/:slot
func (h *AdminHandler) Slot(c *gin.Context) {
	slot, err := strconv.Atoi(c.Param("slot"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot"})
		return
	}
	view, ok := h.svc.Store().View(slot)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown slot"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cache": view, "player": h.registry.Get(slot)})
}

// Refresh broadcasts a refresh notification for a SteamID. Every server with
// that player connected re-reads their customization. The player's own
// refresh cooldown is lifted as well.
// POST /api/admin/players/:steamid/refresh
func (h *AdminHandler) Refresh(c *gin.Context) {
	steamID, ok := steamIDParam(c)
	if !ok {
		return
	}
	if err := h.refresher.ResetCooldown(c.Request.Context(), steamID); err != nil {
		h.logger.Warn("refresh cooldown not reset",
			zap.String("steamid", steamID),
			zap.String("trace_id", middleware.GetTraceID(c)),
			zap.Error(err))
	}
	if err := h.refresher.Notify(c.Request.Context(), steamID); err != nil {
		h.logger.Error("refresh notify failed",
			zap.String("steamid", steamID),
			zap.String("trace_id", middleware.GetTraceID(c)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "notify failed"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"ok": true, "steamid": steamID})
}

// Save flushes a connected player's weapon skins now.
// POST /api/admin/players/:steamid/save
func (h *AdminHandler) Save(c *gin.Context) {
	steamID, ok := steamIDParam(c)
	if !ok {
		return
	}
	p := h.registry.GetBySteamID(steamID)
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "player not connected"})
		return
	}
	h.svc.PersistAllSkins(c.Request.Context(), p)
	if h.audit != nil {
		h.audit.Log(audit.AuditEntry{
			TraceID: middleware.GetTraceID(c),
			SteamID: p.SteamID,
			Slot:    p.Slot,
			Action:  audit.ActionAdminSave,
		})
	}
	h.logger.Info("admin saved player skins", zap.String("steamid", steamID), zap.Int("slot", p.Slot))
	c.JSON(http.StatusOK, gin.H{"ok": true, "slot": p.Slot})
}

// ListSchedulerTasks returns the names of the periodic tasks.
// GET /api/admin/scheduler
func (h *AdminHandler) ListSchedulerTasks(c *gin.Context) {
	tasks := []string{}
	if h.sched != nil {
		tasks = h.sched.ListTickers()
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// steamIDParam reads :steamid, which must be a decimal SteamID64.
func steamIDParam(c *gin.Context) (string, bool) {
	s := c.Param("steamid")
	if _, err := strconv.ParseUint(s, 10, 64); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid steamid"})
		return "", false
	}
	return s, true
}
