// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/grocery-pricer/internal/logging"
	"github.com/grocery-pricer/internal/models"
	"github.com/grocery-pricer/internal/pricing"
	"github.com/grocery-pricer/internal/service"
	"github.com/grocery-pricer/internal/types"
)

// Service interfaces for dependency injection and testing

// ListServiceInterface defines the interface for list operations
type ListServiceInterface interface {
	CreateList(ctx context.Context, input *service.CreateListInput) (*models.ShoppingList, error)
	GetList(ctx context.Context, listID string, userID string) (*models.ShoppingList, error)
	ListsForUser(ctx context.Context, userID string) ([]*models.ShoppingList, error)
	UpdateList(ctx context.Context, listID string, userID string, input *service.UpdateListInput) (*models.ShoppingList, error)
	DeleteList(ctx context.Context, listID string, userID string) error
	CopyList(ctx context.Context, listID string, userID string) (*models.ShoppingList, error)
}

// ItemServiceInterface defines the interface for item operations
type ItemServiceInterface interface {
	AddItem(ctx context.Context, listID string, userID string, input *service.AddItemInput) (*models.ShoppingListItem, error)
	UpdateItem(ctx context.Context, listID string, itemID string, userID string, input *service.UpdateItemInput) (*models.ShoppingListItem, error)
	RemoveItem(ctx context.Context, listID string, itemID string, userID string) error
}

// OverviewServiceInterface defines the interface for overview assembly
type OverviewServiceInterface interface {
	GetOverview(ctx context.Context, listID string, userID string) (*service.Overview, error)
}

// HistoryFetcherInterface defines the interface for price history walks
type HistoryFetcherInterface interface {
	Fetch(ctx context.Context, ean string, from time.Time, days int) ([]pricing.HistoryPoint, error)
}

// StorePriceSource defines the interface for store-level price lookups
type StorePriceSource interface {
	StorePrices(ctx context.Context, ean string) ([]types.StorePrice, error)
}

// PreferenceStore defines the preference persistence surface
type PreferenceStore interface {
	GetPreferences(ctx context.Context, userID string) (*models.UserPreferences, error)
	ReplacePinnedChains(ctx context.Context, userID string, pins []models.PinnedChain) error
	ReplacePinnedPlaces(ctx context.Context, userID string, pins []models.PinnedPlace) error
}

// Server represents the HTTP API server.
type Server struct {
	router          *mux.Router
	httpServer      *http.Server
	listService     ListServiceInterface
	itemService     ItemServiceInterface
	overviewService OverviewServiceInterface
	historyFetcher  HistoryFetcherInterface
	storePrices     StorePriceSource
	preferences     PreferenceStore
	config          *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RequestsPerUser float64
}

// NewServer creates a new API server instance.
func NewServer(
	config *ServerConfig,
	listService ListServiceInterface,
	itemService ItemServiceInterface,
	overviewService OverviewServiceInterface,
	historyFetcher HistoryFetcherInterface,
	storePrices StorePriceSource,
	preferences PreferenceStore,
) *Server {
	s := &Server{
		router:          mux.NewRouter(),
		listService:     listService,
		itemService:     itemService,
		overviewService: overviewService,
		historyFetcher:  historyFetcher,
		storePrices:     storePrices,
		preferences:     preferences,
		config:          config,
	}

	s.setupRouter()

	return s
}

func (s *Server) setupRouter() {
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware)
	if s.config.RequestsPerUser > 0 {
		s.router.Use(RateLimitMiddleware(NewRateLimiter(s.config.RequestsPerUser, rateLimitBurst)))
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Shopping list endpoints
	api.HandleFunc("/lists", s.handleCreateList).Methods("POST")
	api.HandleFunc("/lists", s.handleGetLists).Methods("GET")
	api.HandleFunc("/lists/{id}", s.handleGetList).Methods("GET")
	api.HandleFunc("/lists/{id}", s.handleUpdateList).Methods("PATCH")
	api.HandleFunc("/lists/{id}", s.handleDeleteList).Methods("DELETE")
	api.HandleFunc("/lists/{id}/copy", s.handleCopyList).Methods("POST")
	api.HandleFunc("/lists/{id}/overview", s.handleGetOverview).Methods("GET")

	// Item endpoints
	api.HandleFunc("/lists/{id}/items", s.handleAddItem).Methods("POST")
	api.HandleFunc("/lists/{id}/items/{itemId}", s.handleUpdateItem).Methods("PATCH")
	api.HandleFunc("/lists/{id}/items/{itemId}", s.handleRemoveItem).Methods("DELETE")

	// Product price endpoints
	api.HandleFunc("/products/{ean}/history", s.handleGetHistory).Methods("GET")
	api.HandleFunc("/products/{ean}/stores", s.handleGetStorePrices).Methods("GET")

	// Preference endpoints
	api.HandleFunc("/preferences", s.handleGetPreferences).Methods("GET")
	api.HandleFunc("/preferences/chains", s.handleReplacePinnedChains).Methods("PUT")
	api.HandleFunc("/preferences/places", s.handleReplacePinnedPlaces).Methods("PUT")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "grocery-pricer",
	})
}

// userID extracts the calling user's identity. Missing identity is
// rejected by requireUser before any handler logic runs.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := userID(r)
	if id == "" {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "X-User-ID header is required", nil)
		return "", false
	}
	return id, true
}

// Router exposes the router, used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logging.GetGlobalLogger().WithField("addr", s.httpServer.Addr).Info("starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.GetGlobalLogger().Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
