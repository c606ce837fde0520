package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/devskill-org/energy-dashboard/forecast"
	"github.com/devskill-org/energy-dashboard/viewstate"
)

const defaultHistoryLimit = 20

// WebServer provides the dashboard HTTP API, the websocket push channel
// and the front-end static files
type WebServer struct {
	service   *Service
	server    *http.Server
	port      int
	startTime time.Time
	upgrader  websocket.Upgrader
	clients   sync.Map
	count     atomic.Int64
	broadcast chan []byte
	done      chan struct{}
	logger    *log.Logger
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string        `json:"status"`
	Timestamp string        `json:"timestamp"`
	Version   string        `json:"version,omitempty"`
	Service   ServiceHealth `json:"service"`
	System    SystemHealth  `json:"system"`
}

// ServiceHealth represents service-specific health information
type ServiceHealth struct {
	IsRunning      bool   `json:"is_running"`
	Site           string `json:"site"`
	HistoryEnabled bool   `json:"history_enabled"`
	PlantEnabled   bool   `json:"plant_enabled"`
}

// SystemHealth represents system-level health information
type SystemHealth struct {
	Uptime     string `json:"uptime"`
	Goroutines int    `json:"goroutines,omitempty"`
}

// PageUpdate is pushed to websocket clients whenever a page changes
type PageUpdate struct {
	Type string `json:"type"`
	Page string `json:"page"`
	View any    `json:"view"`
}

// NewWebServer creates a new web server for service. It returns nil when
// port is not positive.
func NewWebServer(service *Service, port int) *WebServer {
	if port <= 0 {
		return nil
	}

	mux := http.NewServeMux()
	ws := &WebServer{
		service:   service,
		port:      port,
		startTime: time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		broadcast: make(chan []byte, 256),
		done:      make(chan struct{}),
		logger:    log.New(os.Stdout, "[WEB] ", log.LstdFlags),
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
	ws.routes(mux)

	return ws
}

func (ws *WebServer) routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", ws.healthHandler)
	mux.HandleFunc("/api/ready", ws.readinessHandler)
	mux.HandleFunc("/api/status", ws.statusHandler)
	mux.HandleFunc("/api/dashboard", ws.dashboardHandler)
	mux.HandleFunc("/api/dashboard/filters", ws.dashboardFiltersHandler)
	mux.HandleFunc("/api/weather", ws.weatherHandler)
	mux.HandleFunc("/api/forecasting", ws.forecastingHandler)
	mux.HandleFunc("/api/forecast", ws.forecastHandler)
	mux.HandleFunc("/api/forecast/history", ws.historyHandler)
	mux.HandleFunc("/api/analytics", ws.analyticsHandler)
	mux.HandleFunc("/api/analytics/filters", ws.analyticsFiltersHandler)
	mux.HandleFunc("/api/about", ws.aboutHandler)
	mux.HandleFunc("/api/ws", ws.wsHandler)
	mux.Handle("/metrics", ws.service.Metrics().Handler())

	mux.Handle("/", http.FileServer(http.Dir(ws.service.GetConfig().StaticDir)))
}

// Start starts the web server
func (ws *WebServer) Start() error {
	if ws == nil {
		return nil
	}

	go ws.handleBroadcasts()
	go ws.broadcastStatus()

	go func() {
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ws.logger.Printf("Web server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully stops the web server
func (ws *WebServer) Stop(ctx context.Context) error {
	if ws == nil {
		return nil
	}

	close(ws.done)

	ws.clients.Range(func(key, value any) bool {
		if conn, ok := key.(*websocket.Conn); ok {
			conn.Close()
		}
		return true
	})

	return ws.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (ws *WebServer) health() HealthResponse {
	status := ws.service.GetStatus()
	config := ws.service.GetConfig()

	health := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
		Service: ServiceHealth{
			IsRunning:      status.IsRunning,
			Site:           config.SiteName,
			HistoryEnabled: status.HistoryEnabled,
			PlantEnabled:   config.PlantModbusAddress != "",
		},
		System: SystemHealth{
			Uptime:     formatUptime(time.Since(ws.startTime)),
			Goroutines: runtime.NumGoroutine(),
		},
	}
	if !status.IsRunning {
		health.Status = "unhealthy"
	}
	return health
}

// healthHandler handles the /api/health endpoint
func (ws *WebServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := ws.health()
	code := http.StatusOK
	if health.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, health)
}

// readinessHandler handles the /api/ready endpoint
func (ws *WebServer) readinessHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	running := ws.service.IsRunning()
	code := http.StatusOK
	if !running {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"ready":     running,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// statusHandler handles the /api/status endpoint
func (ws *WebServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"service_status": ws.service.GetStatus(),
		"clients":        ws.count.Load(),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}

func (ws *WebServer) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, ws.service.DashboardView())
}

func (ws *WebServer) dashboardFiltersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var patch viewstate.DashboardFilters
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	filters, err := ws.service.SetDashboardFilters(patch)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, filters)
}

// weatherHandler runs a city lookup. The card state is returned even when
// the lookup fails; the previous snapshot stays on display.
func (ws *WebServer) weatherHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		City string `json:"city"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ws.service.LookupWeather(r.Context(), body.City))
}

func (ws *WebServer) forecastingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, ws.service.ForecastingView())
}

// forecastHandler runs the "Generate forecast" action. The body of every
// reply is a forecast response envelope.
func (ws *WebServer) forecastHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req forecast.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, forecast.Failure(fmt.Errorf("invalid request body: %w", err)))
		return
	}
	if req.EnergyType == "" {
		req.EnergyType = forecast.EnergyBoth
	}
	if req.Days < 1 || req.Days > 14 {
		writeJSON(w, http.StatusBadRequest, forecast.Failure(&forecast.ValidationError{Field: "days", Message: "must be between 1 and 14"}))
		return
	}
	if !req.EnergyType.Valid() {
		writeJSON(w, http.StatusBadRequest, forecast.Failure(&forecast.ValidationError{Field: "energyType", Message: "must be solar, wind or both"}))
		return
	}

	// blank locations are rejected by the client without a network call
	blank := strings.TrimSpace(req.Location) == ""

	resp := ws.service.GenerateForecast(r.Context(), req)
	switch {
	case resp.Success:
		writeJSON(w, http.StatusOK, resp)
	case blank:
		writeJSON(w, http.StatusBadRequest, resp)
	default:
		writeJSON(w, http.StatusBadGateway, resp)
	}
}

func (ws *WebServer) historyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := ws.service.ForecastHistory(r.Context(), r.URL.Query().Get("location"), limit)
	switch {
	case errors.Is(err, ErrHistoryDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		ws.logger.Printf("Failed to load forecast history: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load forecast history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(records),
		"records": records,
	})
}

func (ws *WebServer) analyticsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := ws.service.RefreshAnalytics(r.Context()); err != nil {
		ws.logger.Printf("Failed to refresh analytics: %v", err)
	}
	writeJSON(w, http.StatusOK, ws.service.AnalyticsView())
}

func (ws *WebServer) analyticsFiltersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var patch viewstate.AnalyticsFilters
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	filters, err := ws.service.SetAnalyticsFilters(patch)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, filters)
}

func (ws *WebServer) aboutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, ws.service.About())
}

// wsHandler handles WebSocket connections
func (ws *WebServer) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Printf("WebSocket upgrade error: %v", err)
		return
	}

	// initial data goes out before the client is visible to the broadcaster
	ws.sendStatusToClient(conn)

	ws.clients.Store(conn, true)
	clients := ws.count.Add(1)
	ws.service.Metrics().SetWebSocketClients(int(clients))
	ws.logger.Printf("New WebSocket client connected. Total clients: %d", clients)

	defer func() {
		ws.clients.Delete(conn)
		conn.Close()

		clients := ws.count.Add(-1)
		ws.service.Metrics().SetWebSocketClients(int(clients))
		ws.logger.Printf("WebSocket client disconnected. Total clients: %d", clients)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				ws.logger.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// handleBroadcasts sends messages to all connected clients
func (ws *WebServer) handleBroadcasts() {
	for {
		select {
		case message := <-ws.broadcast:
			ws.clients.Range(func(key, value any) bool {
				conn, ok := key.(*websocket.Conn)
				if !ok {
					return true
				}

				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					ws.logger.Printf("WebSocket write error: %v", err)
					conn.Close()
				}
				return true
			})
		case <-ws.done:
			return
		}
	}
}

func (ws *WebServer) hasClients() bool {
	return ws.count.Load() > 0
}

// enqueue hands message to the broadcaster without blocking the caller
func (ws *WebServer) enqueue(message []byte) {
	select {
	case ws.broadcast <- message:
	default:
		ws.logger.Printf("Broadcast queue full, dropping message")
	}
}

// pushPage broadcasts the current view of page
func (ws *WebServer) pushPage(page string) {
	if ws == nil || !ws.hasClients() {
		return
	}

	message, err := json.Marshal(ws.pageUpdate(page))
	if err != nil {
		ws.logger.Printf("Failed to marshal %s update: %v", page, err)
		return
	}
	ws.enqueue(message)
}

func (ws *WebServer) pageUpdate(page string) PageUpdate {
	update := PageUpdate{Type: "page_update", Page: page}
	switch page {
	case PageDashboard:
		update.View = ws.service.DashboardView()
	case PageForecasting:
		update.View = ws.service.ForecastingView()
	case PageAnalytics:
		update.View = ws.service.AnalyticsView()
	}
	return update
}

// broadcastStatus periodically broadcasts status updates
func (ws *WebServer) broadcastStatus() {
	ticker := time.NewTicker(ws.service.GetConfig().BroadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !ws.hasClients() {
				continue
			}
			message, err := json.Marshal(ws.buildStatusData())
			if err != nil {
				ws.logger.Printf("Failed to marshal status data: %v", err)
				continue
			}
			ws.enqueue(message)
		case <-ws.done:
			return
		}
	}
}

// sendStatusToClient sends the status and every page view to a new client
func (ws *WebServer) sendStatusToClient(conn *websocket.Conn) {
	if err := conn.WriteJSON(ws.buildStatusData()); err != nil {
		ws.logger.Printf("Failed to send initial data: %v", err)
		return
	}
	for _, page := range []string{PageDashboard, PageForecasting, PageAnalytics} {
		if err := conn.WriteJSON(ws.pageUpdate(page)); err != nil {
			ws.logger.Printf("Failed to send initial %s view: %v", page, err)
			return
		}
	}
}

// buildStatusData builds combined health and status data
func (ws *WebServer) buildStatusData() map[string]any {
	return map[string]any{
		"type":   "status_update",
		"health": ws.health(),
		"status": ws.service.GetStatus(),
	}
}

// formatUptime formats a duration as a string with seconds rounded to integer
func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
