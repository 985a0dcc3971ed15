package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"meridian/internal/catalog"
	"meridian/internal/config"
	"meridian/internal/handlers"
	"meridian/internal/jobs"
	"meridian/internal/messaging"
	"meridian/internal/metrics"
	"meridian/internal/middleware"
	"meridian/internal/payment"
	"meridian/internal/repository"
	"meridian/internal/search"
	"meridian/internal/service"
	"meridian/internal/session"
	"meridian/internal/store"
	"meridian/internal/tracker"
	"meridian/internal/websocket"

	"github.com/gin-gonic/gin"
)

// Server представляет HTTP сервер API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	store    store.Store
	nats     *messaging.NATSClient
	es       *search.ElasticsearchClient
	bus      *messaging.EventBus
	recent   *tracker.Recent
	hub      *websocket.Hub
	metrics  *metrics.Metrics
	sessions *session.Manager
	services *service.Services
	reaper   *jobs.SessionReaperJob

	unsubscribe []func()
	cancel      context.CancelFunc
}

// NewServer создает новый экземпляр сервера
func NewServer(cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	cat, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	// Хранилище избранного, бронирований и событий
	base, err := store.Open(cfg.Store.Backend, cfg.Valkey, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	st := store.WithPrefix(base, cfg.Store.KeyPrefix)

	s := &Server{
		config: cfg,
		store:  st,
		bus:    messaging.NewEventBus(),
		recent: tracker.NewRecent(tracker.DebugBufferSize),
		hub:    websocket.NewHub(),
	}

	// Слушатели шины событий, порядок подписки = порядок доставки
	s.subscribe(s.recent.Observe)
	s.subscribe(s.hub.Observe)
	if cfg.MetricsEnabled {
		s.metrics = metrics.New()
		s.subscribe(s.metrics.Observe)
	}
	if cfg.NATS.Enabled {
		natsClient, err := messaging.NewNATSClient(cfg.NATS)
		if err != nil {
			slog.Error("NATS unavailable, events stay in-process", "error", err)
		} else {
			s.nats = natsClient
			s.subscribe(natsClient.Forward)
		}
	}

	var searcher service.Searcher
	if cfg.Elasticsearch.Enabled {
		s.es = connectSearch(cfg.Elasticsearch, cat)
		if s.es != nil {
			searcher = s.es
		}
	}

	repos := repository.NewRepositories(st)
	t := tracker.New(repos.Events, s.bus)

	s.services = service.NewServices(cat, repos, t, searcher)
	s.sessions = session.NewManager(cat, session.Options{
		Tracker:  t,
		Ledger:   repos.Bookings,
		Settler:  payment.NewSimulated(cfg.Checkout.SettleDelay),
		DeckSeed: cfg.Checkout.DeckSeed,
	})
	s.reaper = jobs.NewSessionReaperJob(s.sessions, cfg.Sessions.IdleTimeout, cfg.Sessions.ReapInterval)

	if s.metrics != nil {
		s.metrics.RegisterGauge("active_sessions", "Open booking sessions.", func() float64 {
			return float64(s.sessions.Len())
		})
		s.metrics.RegisterGauge("stream_clients", "Connected live event stream clients.", func() float64 {
			return float64(s.hub.GetClientCount())
		})
	}

	s.router = gin.New()
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.CORS())
	if s.metrics != nil {
		s.router.Use(middleware.Metrics(s.metrics))
	}

	s.setupRoutes()

	return s, nil
}

// connectSearch подключает Elasticsearch; при ошибке поиск идет по каталогу в памяти
func connectSearch(cfg config.ElasticsearchConfig, cat *catalog.Provider) *search.ElasticsearchClient {
	es, err := search.NewElasticsearchClient(cfg)
	if err != nil {
		slog.Error("Elasticsearch unavailable, using catalog scan", "error", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := es.IndexVoyages(ctx, cat.ListVoyages()); err != nil {
		slog.Error("Failed to index voyages, using catalog scan", "error", err)
		return nil
	}
	return es
}

func (s *Server) subscribe(l messaging.Listener) {
	s.unsubscribe = append(s.unsubscribe, s.bus.Subscribe(l))
}

// setupRoutes настраивает все API роуты
func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services, s.sessions, s.recent, s.hub)

	api := s.router.Group("/api")
	{
		voyages := api.Group("/voyages")
		{
			voyages.GET("", h.ListVoyages)
			voyages.GET("/locations", h.ListLocations)
			voyages.GET("/:id", h.GetVoyage)
			voyages.GET("/:id/excursions", h.ListExcursions)
		}

		favorites := api.Group("/favorites")
		{
			favorites.GET("", h.GetFavorites)
			favorites.POST("/:id/toggle", h.ToggleFavorite)
		}

		sessions := api.Group("/sessions")
		{
			sessions.POST("", h.CreateSession)
			sessions.GET("/:id", h.GetSession)
			sessions.DELETE("/:id", h.CloseSession)
			sessions.GET("/:id/deck", h.GetDeck)
			sessions.PUT("/:id/cabin", h.SelectCabin)
			sessions.POST("/:id/checkout", h.StartCheckout)

			checkout := sessions.Group("/:id/checkout")
			{
				checkout.POST("/next", h.CheckoutNext)
				checkout.POST("/back", h.CheckoutBack)
				checkout.PUT("/guest", h.UpdateGuest)
				checkout.PUT("/package", h.SelectPackage)
				checkout.POST("/excursions/:excursionId/toggle", h.ToggleExcursion)
				checkout.POST("/pay", h.Pay)
			}
		}

		admin := api.Group("/admin")
		{
			admin.GET("/dashboard", h.AdminDashboard)
			admin.GET("/bookings", h.AdminBookings)
			admin.GET("/events", h.AdminEvents)
		}

		api.GET("/debug/events", h.DebugEvents)
		api.GET("/events/stream", h.EventStream)
	}

	s.router.GET("/health", s.healthCheck)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
}

// healthCheck обрабатывает health check запросы
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	resp := gin.H{
		"status":   "ok",
		"service":  "meridian-api",
		"version":  "1.0.0",
		"store":    s.config.Store.Backend,
		"sessions": s.sessions.Len(),
	}

	if err := s.store.Ping(ctx); err != nil {
		status = http.StatusServiceUnavailable
		resp["status"] = "degraded"
		resp["store_error"] = err.Error()
	}
	if s.es != nil {
		if err := s.es.HealthCheck(ctx); err != nil {
			resp["search_error"] = err.Error()
		}
	}

	c.JSON(status, resp)
}

// Start запускает фоновые задачи: поток событий и очистку сессий
func (s *Server) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.hub.Run(ctx)
	s.reaper.Start(ctx)
}

// Run запускает HTTP сервер
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup останавливает фоновые задачи и закрывает соединения
func (s *Server) Cleanup() error {
	if s.cancel != nil {
		s.reaper.Stop()
		s.cancel()
	}

	s.sessions.Shutdown()

	for _, unsubscribe := range s.unsubscribe {
		unsubscribe()
	}

	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if err := s.store.Close(); err != nil {
		slog.Error("Error closing store", "error", err)
		return err
	}

	return nil
}
