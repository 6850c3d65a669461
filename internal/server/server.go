package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/bagshot/internal/handler"
	"github.com/dukerupert/bagshot/internal/metrics"
	"github.com/dukerupert/bagshot/internal/middleware"
	"github.com/dukerupert/bagshot/internal/notify"
	"github.com/dukerupert/bagshot/internal/rotation"
	"github.com/dukerupert/bagshot/internal/store"
	"github.com/dukerupert/bagshot/internal/upload"
	ws "github.com/dukerupert/bagshot/internal/websocket"
)

// Config collects the optional collaborator settings. Zero values disable the
// corresponding feature.
type Config struct {
	Upload upload.Config
	Push   notify.Config
}

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	scheduler   *rotation.Scheduler
	roomH       *handler.RoomHandler
	templateH   *handler.TemplateHandler
	assignmentH *handler.AssignmentHandler
	pushH       *handler.PushHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	templateStore := store.NewTemplateStore(db)
	assignmentStore := store.NewAssignmentStore(db)
	roomStore := store.NewRoomStore(db)
	pushStore := store.NewPushStore(db)

	var uploader rotation.Uploader
	if cfg.Upload.Enabled() {
		uploader = upload.NewService(cfg.Upload)
	}

	engine := rotation.NewEngine(db, templateStore, assignmentStore, roomStore, uploader, logger.With("component", "engine"))

	var pushSvc *notify.Service
	var pushH *handler.PushHandler
	var notifier rotation.Notifier
	if cfg.Push.VAPIDPublicKey != "" && cfg.Push.VAPIDPrivateKey != "" {
		pushSvc = notify.NewService(cfg.Push, pushStore, logger.With("component", "push"))
		pushH = handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push_handler"))
		notifier = pushSvc
	}

	scheduler := rotation.NewScheduler(engine, notifier, logger.With("component", "scheduler"))

	return &Server{
		db:          db,
		hub:         hub,
		scheduler:   scheduler,
		roomH:       handler.NewRoomHandler(roomStore, hub, logger.With("component", "room")),
		templateH:   handler.NewTemplateHandler(engine, templateStore, hub, logger.With("component", "template")),
		assignmentH: handler.NewAssignmentHandler(engine, hub, logger.With("component", "assignment")),
		pushH:       pushH,
		rateLimiter: middleware.NewRateLimiter(10, time.Minute),
		logger:      logger,
	}
}

// Scheduler returns the worker scheduler so main can start and stop it with
// the process lifecycle.
func (s *Server) Scheduler() *rotation.Scheduler {
	return s.scheduler
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /metrics", metrics.Handler())

	// Rooms and members
	mux.HandleFunc("POST /api/rooms", s.roomH.CreateRoom)
	mux.HandleFunc("GET /api/rooms", s.roomH.ListRooms)
	mux.HandleFunc("GET /api/rooms/{id}", s.roomH.GetRoom)
	mux.HandleFunc("GET /api/rooms/{id}/members", s.roomH.ListMembers)
	mux.HandleFunc("POST /api/rooms/{id}/members", s.roomH.CreateMember)
	mux.HandleFunc("PUT /api/members/{id}", s.roomH.UpdateMember)
	mux.HandleFunc("DELETE /api/members/{id}", s.roomH.DeleteMember)

	// Member PINs; verification is rate limited against brute force
	mux.HandleFunc("POST /api/members/{id}/pin", s.roomH.SetPIN)
	mux.HandleFunc("DELETE /api/members/{id}/pin", s.roomH.ClearPIN)
	mux.HandleFunc("POST /api/members/{id}/pin/verify", s.rateLimitedHandler(s.roomH.VerifyPIN))

	// Templates
	mux.HandleFunc("POST /api/templates", s.templateH.Create)
	mux.HandleFunc("GET /api/rooms/{id}/templates", s.templateH.List)
	mux.HandleFunc("GET /api/templates/{id}", s.templateH.Get)
	mux.HandleFunc("PUT /api/templates/{id}", s.templateH.Update)
	mux.HandleFunc("POST /api/templates/{id}/pause", s.templateH.Pause)
	mux.HandleFunc("POST /api/templates/{id}/resume", s.templateH.Resume)
	mux.HandleFunc("DELETE /api/templates/{id}", s.templateH.Delete)

	// Assignments
	mux.HandleFunc("GET /api/rooms/{id}/assignments", s.assignmentH.List)
	mux.HandleFunc("POST /api/assignments/{id}/complete", s.assignmentH.Complete)
	mux.HandleFunc("POST /api/assignments/{id}/skip", s.assignmentH.Skip)
	mux.HandleFunc("POST /api/assignments/{id}/swap", s.assignmentH.Swap)

	// Push notifications, available only when VAPID keys are configured
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /api/push/subscribe", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/subscriptions/{id}", s.pushH.ListSubscriptions)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
	}

	// WebSocket
	mux.HandleFunc("GET /ws", ws.Handler(s.hub, s.logger.With("component", "websocket")))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
