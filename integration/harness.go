package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/weaponpaints/api/rest"
	"github.com/kasuganosora/weaponpaints/cache"
	"github.com/kasuganosora/weaponpaints/config"
	"github.com/kasuganosora/weaponpaints/db"
	"github.com/kasuganosora/weaponpaints/game/customization"
	"github.com/kasuganosora/weaponpaints/game/player"
	"github.com/kasuganosora/weaponpaints/plugin/hook"
	"github.com/kasuganosora/weaponpaints/scheduler"
	"github.com/kasuganosora/weaponpaints/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	AdminKey  = "integration-admin"
	PluginKey = "integration-plugin"
)

// Cluster is several game servers sharing one database and one pub/sub bus,
// the way production servers share MySQL and Redis.
type Cluster struct {
	DB     *gorm.DB
	Cache  cache.Cache
	PubSub cache.PubSub
}

// NewCluster sets up the shared storage.
func NewCluster(t *testing.T) *Cluster {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, ps := testutil.SetupTestCache(t)
	return &Cluster{DB: testutil.SetupTestDB(t), Cache: c, PubSub: ps}
}

// TestServer is one fully wired sync service behind a real HTTP listener.
// It mirrors the dependency wiring in cmd/serve.go.
type TestServer struct {
	Store     *customization.Store
	Registry  *player.Registry
	Lifecycle *customization.Lifecycle
	Sched     *scheduler.Scheduler
	Server    *httptest.Server
	URL       string
}

// NewTestServer starts a server on the cluster. saveInterval <= 0 disables autosave.
func (cl *Cluster) NewTestServer(t *testing.T, saveInterval time.Duration) *TestServer {
	t.Helper()
	logger := zap.NewNop()

	cfg := config.CustomizationConfig{
		KnifeEnabled:    true,
		GloveEnabled:    true,
		SkinEnabled:     true,
		MaxSlots:        16,
		RefreshCooldown: time.Minute,
	}
	store := customization.NewStore(cfg.MaxSlots)
	svc := customization.NewService(db.NewPool(cl.DB), store, cfg, logger)
	registry := player.NewRegistry(logger)

	hooks := hook.NewHookCenter(logger)
	lifecycle := customization.NewLifecycle(svc, registry, nil, logger)
	lifecycle.Register(hooks)

	refresher := customization.NewRefresher(svc, registry, cl.Cache, cl.PubSub, cfg.RefreshCooldown, nil, logger)
	stopRefresh, err := refresher.Start(context.Background())
	require.NoError(t, err)

	sched := scheduler.New(logger)
	if saveInterval > 0 {
		sched.AddTicker("skins_autosave", saveInterval, lifecycle.SaveAll)
	}

	adminH := rest.NewAdminHandler(svc, registry, refresher, sched, nil, logger)
	gameH := rest.NewGameHandler(hooks, registry, store, refresher, logger)
	router := rest.NewRouter(adminH, gameH, rest.RouterConfig{AdminKey: AdminKey, PluginKey: PluginKey}, logger)

	server := httptest.NewServer(router)
	ts := &TestServer{
		Store:     store,
		Registry:  registry,
		Lifecycle: lifecycle,
		Sched:     sched,
		Server:    server,
		URL:       server.URL,
	}
	t.Cleanup(func() {
		server.Close()
		sched.Stop()
		stopRefresh()
	})
	return ts
}

// --- HTTP helpers ---

func (ts *TestServer) do(t *testing.T, method, path, keyHeader, key string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(keyHeader, key)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// Game sends a request as the game server plugin.
func (ts *TestServer) Game(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()
	return ts.do(t, method, path, "X-Plugin-Key", PluginKey, body)
}

// Admin sends a request as an operator.
func (ts *TestServer) Admin(t *testing.T, method, path string) *http.Response {
	t.Helper()
	return ts.do(t, method, path, "X-Admin-Key", AdminKey, nil)
}

// ReadJSON reads and decodes a JSON response body into the given target.
func ReadJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, target), "body: %s", string(data))
}

// Expect asserts the status code and discards the body.
func Expect(t *testing.T, resp *http.Response, status int) {
	t.Helper()
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, status, resp.StatusCode, "body: %s", string(body))
}

// --- Game helpers ---

// Connect joins a player and returns the hydrated cache view.
func (ts *TestServer) Connect(t *testing.T, slot int, steamID, name string) customization.SlotView {
	t.Helper()
	resp := ts.Game(t, http.MethodPost, "/api/game/players", map[string]interface{}{
		"slot":    slot,
		"steamid": steamID,
		"name":    name,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Cache customization.SlotView `json:"cache"`
	}
	ReadJSON(t, resp, &out)
	return out.Cache
}

// Loadout returns the cached selections for slot.
func (ts *TestServer) Loadout(t *testing.T, slot int) customization.SlotView {
	t.Helper()
	resp := ts.Game(t, http.MethodGet, "/api/game/players/"+strconv.Itoa(slot)+"/loadout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v customization.SlotView
	ReadJSON(t, resp, &v)
	return v
}
