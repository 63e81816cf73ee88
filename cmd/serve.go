package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/weaponpaints/api/rest"
	"github.com/kasuganosora/weaponpaints/audit"
	"github.com/kasuganosora/weaponpaints/cache"
	"github.com/kasuganosora/weaponpaints/config"
	dbadapter "github.com/kasuganosora/weaponpaints/db"
	"github.com/kasuganosora/weaponpaints/game/customization"
	"github.com/kasuganosora/weaponpaints/game/player"
	"github.com/kasuganosora/weaponpaints/middleware"
	"github.com/kasuganosora/weaponpaints/model"
	"github.com/kasuganosora/weaponpaints/plugin/hook"
	"github.com/kasuganosora/weaponpaints/scheduler"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	autosaveTask    = "skins_autosave"
	shutdownTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sync service and its HTTP API",
	RunE:  runServe,
}

func init() {
	RootCmd.AddCommand(serveCmd)
}

func cacheConfig(c config.CacheConfig) cache.CacheConfig {
	return cache.CacheConfig{
		RedisAddr:       c.RedisAddr,
		RedisPassword:   c.RedisPassword,
		RedisDB:         c.RedisDB,
		LocalGCInterval: c.LocalGCInterval,
		LocalPubSubBuf:  c.LocalPubSubBuf,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}
	if cfg.Server.PluginKey == "" {
		logger.Warn("server.plugin_key is not set; game endpoints are disabled")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		return fmt.Errorf("db migrate: %w", err)
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())

	// ---- Cache / PubSub ----
	cc := cacheConfig(cfg.Cache)
	c, err := cache.NewCache(cc)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cache.Close(c)
	pubsub, err := cache.NewPubSub(cc)
	if err != nil {
		return fmt.Errorf("pubsub: %w", err)
	}
	defer cache.Close(pubsub)
	logger.Info("Cache initialized", zap.Bool("redis", cc.RedisAddr != ""))

	// ---- Customization ----
	store := customization.NewStore(cfg.Customization.MaxSlots)
	svc := customization.NewService(dbadapter.NewPool(db), store, cfg.Customization, logger)
	registry := player.NewRegistry(logger)

	hooks := hook.NewHookCenter(logger)
	lifecycle := customization.NewLifecycle(svc, registry, auditSvc, logger)
	lifecycle.Register(hooks)

	refresher := customization.NewRefresher(svc, registry, c, pubsub,
		cfg.Customization.RefreshCooldown, auditSvc, logger)
	stopRefresh, err := refresher.Start(ctx)
	if err != nil {
		return err
	}
	defer stopRefresh()

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()
	if cfg.Customization.SaveInterval > 0 {
		sched.AddTicker(autosaveTask, cfg.Customization.SaveInterval, lifecycle.SaveAll)
	}

	// ---- HTTP ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst)
	defer limiter.Close()

	adminH := rest.NewAdminHandler(svc, registry, refresher, sched, auditSvc, logger)
	gameH := rest.NewGameHandler(hooks, registry, store, refresher, logger)
	router := rest.NewRouter(adminH, gameH, rest.RouterConfig{
		AdminKey:  cfg.Server.AdminKey,
		PluginKey: cfg.Server.PluginKey,
		Limiter:   limiter,
	}, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	// Final flush for players still connected.
	lifecycle.SaveAll(shutdownCtx)
	return nil
}
