package rest_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/weaponpaints/api/rest"
	"github.com/kasuganosora/weaponpaints/audit"
	"github.com/kasuganosora/weaponpaints/cache"
	"github.com/kasuganosora/weaponpaints/config"
	"github.com/kasuganosora/weaponpaints/db"
	"github.com/kasuganosora/weaponpaints/game/customization"
	"github.com/kasuganosora/weaponpaints/game/player"
	"github.com/kasuganosora/weaponpaints/plugin/hook"
	"github.com/kasuganosora/weaponpaints/scheduler"
	"github.com/kasuganosora/weaponpaints/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	adminKey  = "s3cret"
	pluginKey = "plug"
	steamID   = "76561198012345678"
)

var keys = rest.RouterConfig{AdminKey: adminKey, PluginKey: pluginKey}

type auditRecorder struct {
	mu      sync.Mutex
	entries []audit.AuditEntry
}

func (a *auditRecorder) Log(e audit.AuditEntry) {
	a.mu.Lock()
	a.entries = append(a.entries, e)
	a.mu.Unlock()
}

type env struct {
	router   *gin.Engine
	db       *gorm.DB
	store    *customization.Store
	registry *player.Registry
	pubsub   cache.PubSub
	audit    *auditRecorder
}

func newEnv(t *testing.T, rc rest.RouterConfig) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb := testutil.SetupTestDB(t)
	c, ps := testutil.SetupTestCache(t)
	log := zap.NewNop()

	store := customization.NewStore(8)
	cfg := config.CustomizationConfig{KnifeEnabled: true, GloveEnabled: true, SkinEnabled: true}
	svc := customization.NewService(db.NewPool(gdb), store, cfg, log)
	reg := player.NewRegistry(log)
	rec := &auditRecorder{}
	refresher := customization.NewRefresher(svc, reg, c, ps, time.Minute, rec, log)

	hooks := hook.NewHookCenter(log)
	customization.NewLifecycle(svc, reg, rec, log).Register(hooks)

	sched := scheduler.New(log)
	t.Cleanup(sched.Stop)
	sched.AddTicker("skins_autosave", time.Hour, func(context.Context) {})

	admin := rest.NewAdminHandler(svc, reg, refresher, sched, rec, log)
	game := rest.NewGameHandler(hooks, reg, store, refresher, log)
	return &env{
		router:   rest.NewRouter(admin, game, rc, log),
		db:       gdb,
		store:    store,
		registry: reg,
		pubsub:   ps,
		audit:    rec,
	}
}

func (e *env) send(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) admin(method, path, key string) *httptest.ResponseRecorder {
	h := map[string]string{}
	if key != "" {
		h["X-Admin-Key"] = key
	}
	return e.send(method, path, "", h)
}

func (e *env) game(method, path, body string) *httptest.ResponseRecorder {
	return e.send(method, path, body, map[string]string{"X-Plugin-Key": pluginKey})
}
