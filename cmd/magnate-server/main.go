// Package main is the entry point for the Magnate authoritative server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"magnate/internal/domain/ledger"
	"magnate/internal/engine"
	"magnate/internal/events"
	"magnate/internal/infra/cache"
	"magnate/internal/infra/social"
	"magnate/internal/infra/storage"
	"magnate/internal/network"
	"magnate/internal/platform/logger"
	"magnate/internal/platform/metrics"
	"magnate/internal/platform/tuning"
)

func main() {
	var (
		addr        = flag.String("addr", ":8080", "HTTP listen address")
		dbPath      = flag.String("db", "magnate.db", "SQLite database path")
		profilePath = flag.String("profile", "", "tuning profile YAML (empty for defaults)")
		playerID    = flag.String("player", "local", "player id for social services")
	)
	flag.Parse()

	log.Println("[MAGNATE] Initializing authoritative simulation server...")

	appLogger := logger.NewLogger()

	appLogger.Info("Initializing SQLite database '" + *dbPath + "'...")
	db, err := storage.InitSQLite(*dbPath)
	if err != nil {
		appLogger.Error("Failed to initialize SQLite: " + err.Error())
		os.Exit(1)
	}
	eventRepo := storage.NewSQLiteEventRepository(db)
	saveRepo := storage.NewSQLiteSaveRepository(db)

	appLogger.Info("Bootstrapping EventLog...")
	eventLog := events.NewEventLog(storage.NewEventWriter(eventRepo))

	profile := tuning.Default()
	if *profilePath != "" {
		profile, err = tuning.Load(*profilePath)
		if err != nil {
			appLogger.Error("Failed to load tuning profile: " + err.Error())
			os.Exit(1)
		}
	}

	store := storage.NewLedgerStore(saveRepo, profile.SaveSlot)
	save := bootstrapLedger(store, eventLog, appLogger)

	var backend engine.SocialBackend = social.NewOfflineProvider()
	if httpProvider := social.NewHTTPProvider(*playerID); httpProvider.IsAvailable() {
		appLogger.Info("Social backend configured: " + httpProvider.Name())
		backend = httpProvider
	}

	appLogger.Info("Bootstrapping simulation engine...")
	eng := engine.NewEngine(save, profile, appLogger, eventLog, store,
		engine.WithSocial(backend))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(eng, appLogger, metrics.Get())
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog)

	// Per-tick observations stream straight to connected clients.
	eng.SetObserver(hub.BroadcastObservation)

	eng.Start(ctx)

	dashCache := cache.NewDashboardCache(cache.NewMemoryClient(), profile.SaveSlot)
	history := network.NewHistoryHandler(eventLog, appLogger)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		serveWs(hub, w, req, appLogger)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", dashboardHandler(eng, dashCache))
		r.Get("/history", history.HandleHistory)
		r.Get("/history/stats", history.HandleStats)

		r.Post("/research/{id}", actionHandler(func(id string) bool { return eng.StartResearch(id) }))
		r.Post("/offers/{id}/claim", actionHandler(func(id string) bool { return eng.ClaimOffer(id) }))
		r.Post("/contracts/{id}/accept", actionHandler(func(id string) bool { return eng.AcceptContract(id) }))
		r.Post("/ventures/{id}/upgrade", actionHandler(func(id string) bool { return eng.UpgradeVenture(id) }))
		r.Post("/structures/{id}/build", actionHandler(func(id string) bool { return eng.BuildStructure(id) }))
		r.Post("/upgrades/{id}/buy", actionHandler(func(id string) bool { return eng.BuyPermanentUpgrade(id) }))
		r.Post("/perks/{id}/buy", actionHandler(func(id string) bool { return eng.BuyPerk(id) }))

		r.Post("/prestige/{tier}", prestigeHandler(eng))
		r.Post("/ascend", func(w http.ResponseWriter, req *http.Request) {
			writeResult(w, eng.DoAscension())
		})

		r.Post("/pause", func(w http.ResponseWriter, req *http.Request) {
			eng.Pause()
			writeResult(w, true)
		})
		r.Post("/resume", func(w http.ResponseWriter, req *http.Request) {
			eng.Resume()
			writeResult(w, true)
		})
	})

	r.Get("/metrics", metrics.Handler())
	r.Get("/metrics/prometheus", metrics.PrometheusHandler())

	srv := &http.Server{Addr: *addr, Handler: r}
	go func() {
		log.Println("[MAGNATE] HTTP API & WS server listening on " + *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[MAGNATE] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown: stop ticking, flush play time, final save.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[MAGNATE] Shutting down...")
	eng.Stop()
	_ = srv.Shutdown(context.Background())
	cancel()
}

// bootstrapLedger loads the save slot, repairs it if needed, or seeds a
// fresh ledger when the slot is empty.
func bootstrapLedger(store *storage.LedgerStore, eventLog *events.EventLog, appLogger *logger.Logger) *ledger.Ledger {
	appLogger.Info("Checking DB for existing save...")
	l, found, err := store.Load()
	if err != nil {
		appLogger.Error("Failed to load save, starting fresh: " + err.Error())
		return ledger.New()
	}
	if !found {
		appLogger.Info("Database empty. Seeding fresh ledger...")
		return ledger.New()
	}

	appLogger.Info("Restoring ledger from SQLite state...")
	if repairs := l.Sanitize(); len(repairs) > 0 {
		for _, repair := range repairs {
			appLogger.Warn("Save repair: " + repair)
		}
		eventLog.Record(l.TickCount, events.EventTypeSaveRepaired, "save",
			map[string]interface{}{"repairs": repairs})
	}
	return l
}

func dashboardHandler(eng *engine.Engine, dashCache *cache.DashboardCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if cached, err := dashCache.GetSnapshot(r.Context()); err == nil {
			w.Write(cached)
			return
		}

		snap := eng.Snapshot()
		_ = dashCache.SetSnapshot(r.Context(), snap)
		json.NewEncoder(w).Encode(snap)
	}
}

func actionHandler(action func(id string) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}
		writeResult(w, action(id))
	}
}

func prestigeHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tier ledger.PrestigeTier
		switch chi.URLParam(r, "tier") {
		case "bronze":
			tier = ledger.PrestigeBronze
		case "silver":
			tier = ledger.PrestigeSilver
		case "gold":
			tier = ledger.PrestigeGold
		default:
			http.Error(w, "unknown tier", http.StatusBadRequest)
			return
		}
		writeResult(w, eng.DoPrestige(tier))
	}
}

func writeResult(w http.ResponseWriter, ok bool) {
	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusConflict)
	}
	json.NewEncoder(w).Encode(map[string]bool{"ok": ok})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow cross-origin requests for the web client dev server
	},
}

// serveWs handles websocket requests from the peer.
func serveWs(hub *network.Hub, w http.ResponseWriter, r *http.Request, log *logger.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("Failed to upgrade websocket connection")
		return
	}

	client := network.NewClient(hub, conn)
	client.Register()

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.WritePump()
	go client.ReadPump()
}
