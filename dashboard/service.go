package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/devskill-org/energy-dashboard/forecast"
	"github.com/devskill-org/energy-dashboard/history"
	"github.com/devskill-org/energy-dashboard/meteo"
	"github.com/devskill-org/energy-dashboard/metrics"
	"github.com/devskill-org/energy-dashboard/mockdata"
	"github.com/devskill-org/energy-dashboard/plant"
	"github.com/devskill-org/energy-dashboard/sun"
	"github.com/devskill-org/energy-dashboard/utils"
	"github.com/devskill-org/energy-dashboard/viewstate"
	"github.com/devskill-org/energy-dashboard/weather"
)

// ErrHistoryDisabled is returned by history operations when no store is configured
var ErrHistoryDisabled = errors.New("forecast history is disabled")

var errWeatherUnavailable = errors.New("weather lookup failed")

// SiteWeatherSource provides the hourly forecast for the plant site
type SiteWeatherSource interface {
	GetCompact(ctx context.Context, loc meteo.Location) (*meteo.Forecast, error)
}

// Service owns the dashboard pages and the clients feeding them
type Service struct {
	// Configuration
	config *Config

	// Sources
	forecasts forecast.Source
	tracker   *weather.Tracker
	site      SiteWeatherSource
	readPlant func() (*plant.Reading, error)
	store     history.Store

	// Pages
	dashboard   *viewstate.Page[weather.Snapshot]
	forecasting *viewstate.Page[forecast.Data]
	analytics   *viewstate.Page[AnalyticsData]

	// State
	dashboardFilters   viewstate.DashboardFilters
	forecastingFilters viewstate.ForecastingFilters
	analyticsFilters   viewstate.AnalyticsFilters
	siteForecast       *meteo.Forecast
	siteUpdated        time.Time
	plantReading       *plant.Reading
	isRunning          bool
	stopChan           chan struct{}
	mu                 sync.RWMutex

	// Web server
	webServer *WebServer

	metrics *metrics.Metrics
	logger  *log.Logger
	now     func() time.Time
}

// NewService creates a service wired to the real upstream clients
// described by config. History is opened by Start or OpenHistory.
func NewService(config *Config, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}

	fc := forecast.NewClientWithHTTPClient(&http.Client{Timeout: config.ForecastTimeout})
	fc.SetBaseURL(config.ForecastAPIURL)
	fc.SetModel(config.ForecastModel)
	var forecasts forecast.Source = fc
	if config.ForecastRateLimit > 0 {
		forecasts = forecast.NewRateLimited(fc, config.ForecastRateLimit, config.ForecastBurst)
	}

	wc := weather.NewClient(config.OpenWeatherAPIKey)
	if config.OpenWeatherURL != "" {
		wc.SetBaseURL(config.OpenWeatherURL)
	}
	var provider weather.Provider = wc
	if config.WeatherRateLimit > 0 {
		provider = weather.NewRateLimitedProvider(wc, config.WeatherRateLimit, 1)
	}

	s := newService(config, logger, forecasts, weather.NewTracker(provider, logger))

	if config.SiteWeatherEnabled {
		s.site = meteo.NewClient(config.UserAgent)
	}
	if addr := config.PlantModbusAddress; addr != "" {
		timeout := config.PlantTimeout
		s.readPlant = func() (*plant.Reading, error) {
			return plant.ReadOnce(addr, timeout)
		}
	}

	return s
}

// NewServiceWithWebServer creates a service that also serves the HTTP API
// on config.Port
func NewServiceWithWebServer(config *Config, logger *log.Logger) *Service {
	s := NewService(config, logger)
	s.webServer = NewWebServer(s, config.Port)
	return s
}

func newService(config *Config, logger *log.Logger, forecasts forecast.Source, tracker *weather.Tracker) *Service {
	initialWeather := weather.DefaultSnapshot
	initialAnalytics := mockAnalytics(time.Now().In(config.Location()).Year())

	s := &Service{
		config:             config,
		forecasts:          forecasts,
		tracker:            tracker,
		dashboard:          viewstate.NewPage(PageDashboard, &initialWeather),
		forecasting:        viewstate.NewPage[forecast.Data](PageForecasting, nil),
		analytics:          viewstate.NewPage(PageAnalytics, &initialAnalytics),
		dashboardFilters:   viewstate.DefaultDashboardFilters(),
		forecastingFilters: viewstate.DefaultForecastingFilters(),
		analyticsFilters:   viewstate.DefaultAnalyticsFilters(),
		stopChan:           make(chan struct{}),
		metrics:            metrics.New(),
		logger:             logger,
		now:                time.Now,
	}

	s.dashboard.OnChange(s.notify)
	s.forecasting.OnChange(s.notify)
	s.analytics.OnChange(s.notify)
	s.dashboard.OnStale(s.metrics.IncStale)
	s.forecasting.OnStale(s.metrics.IncStale)
	s.analytics.OnStale(s.metrics.IncStale)

	return s
}

// GetConfig returns the service configuration
func (s *Service) GetConfig() *Config {
	return s.config
}

// Metrics returns the service metrics
func (s *Service) Metrics() *metrics.Metrics {
	return s.metrics
}

func (s *Service) notify(page string) {
	if s.webServer != nil {
		s.webServer.pushPage(page)
	}
}

func (s *Service) historyStore() history.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// OpenHistory opens the configured forecast history store. PostgreSQL is
// used when a connection string is set, SQLite otherwise.
func (s *Service) OpenHistory(ctx context.Context) error {
	var (
		store *history.SQLStore
		err   error
	)
	switch {
	case s.config.PostgresConnString != "":
		store, err = history.OpenPostgres(ctx, s.config.PostgresConnString)
	case s.config.HistoryPath != "":
		store, err = history.OpenSQLite(ctx, s.config.HistoryPath)
	default:
		return ErrHistoryDisabled
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.store = store
	s.mu.Unlock()
	return nil
}

// DashboardView assembles the dashboard page
func (s *Service) DashboardView() DashboardView {
	s.mu.RLock()
	filters := s.dashboardFilters
	siteForecast := s.siteForecast
	reading := s.plantReading
	s.mu.RUnlock()

	now := s.now()
	loc := s.config.Location()
	current := s.dashboard.Snapshot()

	view := DashboardView{
		Filters: filters,
		Options: DashboardOptions{
			TimeRanges:  viewstate.TimeRanges,
			Locations:   viewstate.DashboardLocations,
			EnergyTypes: viewstate.DashboardEnergyTypes,
		},
		Production:      mockdata.Production(filters.EnergyType),
		Weather:         mockdata.Weather(),
		WeatherSource:   WeatherSourceMock,
		Metrics:         mockdata.DashboardMetrics(),
		Recommendations: mockdata.DashboardRecommendations(),
		CurrentWeather:  current,
		Site:            s.config.SiteName,
		Plant:           reading,
	}

	if peak, ok := mockdata.Peak(view.Production); ok {
		view.PeakProduction = &peak
	}

	if rows := weatherRows(siteForecast, now, loc); len(rows) > 0 {
		view.Weather = rows
		view.WeatherSource = WeatherSourceMET
	}

	daylight := sun.Today(now, s.config.Latitude, s.config.Longitude)
	view.Daylight = &daylight

	var cloud float64
	if step := meteo.Current(siteForecast, now); step != nil && step.Data.Instant.Details != nil {
		if c := step.Data.Instant.Details.CloudAreaFraction; c != nil {
			cloud = *c
		}
	}
	view.ExpectedPV = forecast.Round2(sun.ExpectedPower(now, s.config.Latitude, s.config.Longitude, s.config.PeakPowerKW, cloud))

	for i := range view.Metrics {
		m := &view.Metrics[i]
		switch m.Title {
		case "Current Weather":
			if current.Data != nil {
				m.Value = fmt.Sprintf("%.0f°C", current.Data.Temperature)
				m.Change = current.Data.Description
			}
		case "Current Production":
			if reading != nil {
				m.Value = fmt.Sprintf("%.2f kW", reading.PhotovoltaicPower)
				m.Change = ""
				m.Trend = ""
				m.Note = "Battery " + reading.ESSStatus()
			}
		}
	}

	return view
}

// weatherRows converts the site forecast into weather chart rows, six rows
// three hours apart. Wind speed is converted from m/s to km/h.
func weatherRows(f *meteo.Forecast, now time.Time, loc *time.Location) []mockdata.HourlyWeather {
	hourly := meteo.HourlyConditions(f, now, 6, 3*time.Hour)
	rows := make([]mockdata.HourlyWeather, 0, len(hourly))
	for _, h := range hourly {
		rows = append(rows, mockdata.HourlyWeather{
			Hour:      utils.HourLabel(h.Time.In(loc)),
			Temp:      math.Round(h.Temp),
			Humidity:  math.Round(h.Humidity),
			WindSpeed: math.Round(h.WindSpeed * 3.6),
		})
	}
	return rows
}

// SetDashboardFilters applies the non-empty fields of patch
func (s *Service) SetDashboardFilters(patch viewstate.DashboardFilters) (viewstate.DashboardFilters, error) {
	s.mu.Lock()
	merged := s.dashboardFilters.Merge(patch)
	if err := merged.Validate(); err != nil {
		s.mu.Unlock()
		return s.dashboardFilters, err
	}
	s.dashboardFilters = merged
	s.mu.Unlock()

	s.notify(PageDashboard)
	return merged, nil
}

// LookupWeather fetches the weather for city and returns the resulting
// card state. Failures keep the previous snapshot on display.
func (s *Service) LookupWeather(ctx context.Context, city string) viewstate.State[weather.Snapshot] {
	if strings.TrimSpace(city) == "" {
		s.logger.Printf("Weather lookup skipped: empty city")
		return s.dashboard.Snapshot()
	}

	_, err := viewstate.Run(s.dashboard, func() (weather.Snapshot, error) {
		snap, ok := s.tracker.Lookup(ctx, city)
		if !ok {
			return weather.Snapshot{}, errWeatherUnavailable
		}
		return snap, nil
	})
	s.metrics.ObserveWeatherLookup(err == nil)

	return s.dashboard.Snapshot()
}

// GenerateForecast runs one forecast request for the forecasting page and
// stores successful results in the history
func (s *Service) GenerateForecast(ctx context.Context, req forecast.Request) forecast.Response {
	s.mu.Lock()
	s.forecastingFilters = viewstate.ForecastingFilters{
		Location:   req.Location,
		Days:       req.Days,
		EnergyType: string(req.EnergyType),
	}
	s.mu.Unlock()

	start := time.Now()
	var resp forecast.Response
	_, err := viewstate.Run(s.forecasting, func() (forecast.Data, error) {
		resp = s.forecasts.Fetch(ctx, req)
		if !resp.Success || resp.Data == nil {
			return forecast.Data{}, errors.New(resp.Error)
		}
		resp.Data.Summary = s.summarize(req, resp.Data)
		return *resp.Data, nil
	})
	if err != nil && !resp.Success && resp.Error == "" {
		resp = forecast.Failure(err)
	}
	s.metrics.ObserveForecast(string(req.EnergyType), resp.Success, time.Since(start))

	if !resp.Success {
		s.logger.Printf("Forecast for %q failed: %s", req.Location, resp.Error)
		return resp
	}

	if store := s.historyStore(); store != nil {
		record := history.NewRecord(req, resp.Data, s.now())
		if err := store.SaveForecast(ctx, record); err != nil {
			s.logger.Printf("Failed to save forecast %s: %v", record.ID, err)
		}
	}

	return resp
}

// summarize computes the forecast summary. The peak time is the solar noon
// at the site on the peak day.
func (s *Service) summarize(req forecast.Request, data *forecast.Data) *forecast.Summary {
	summary := forecast.Summarize(req, data.Predictions)
	if summary == nil {
		return nil
	}

	loc := s.config.Location()
	today := utils.StartOfDay(s.now().In(loc))
	for i, p := range data.Predictions {
		if p.Date != summary.PeakDate {
			continue
		}
		day := today.AddDate(0, 0, i).Add(12 * time.Hour)
		noon := sun.Today(day, s.config.Latitude, s.config.Longitude).SolarNoon
		if !noon.IsZero() {
			summary.PeakTime = noon.In(loc).Format("3:04 PM")
		}
		break
	}
	return summary
}

// ForecastingView assembles the forecasting page
func (s *Service) ForecastingView() ForecastingView {
	s.mu.RLock()
	filters := s.forecastingFilters
	s.mu.RUnlock()

	return ForecastingView{
		Filters: filters,
		Options: ForecastingOptions{
			Locations:   viewstate.ForecastLocations,
			Days:        viewstate.ForecastDays,
			EnergyTypes: viewstate.ForecastEnergyTypes,
		},
		Daily:           mockdata.DailyForecasts(),
		Hourly:          mockdata.HourlyForecasts(),
		Highlights:      mockdata.ForecastHighlights(),
		Insights:        mockdata.ForecastInsights(),
		Recommendations: mockdata.ForecastRecommendations(),
		Result:          s.forecasting.Snapshot(),
	}
}

// ForecastHistory returns the most recent stored forecasts, newest first
func (s *Service) ForecastHistory(ctx context.Context, location string, limit int) ([]history.Record, error) {
	store := s.historyStore()
	if store == nil {
		return nil, ErrHistoryDisabled
	}
	return store.Recent(ctx, location, limit)
}

// AnalyticsView assembles the analytics page
func (s *Service) AnalyticsView() AnalyticsView {
	s.mu.RLock()
	filters := s.analyticsFilters
	s.mu.RUnlock()

	return AnalyticsView{
		Filters: filters,
		Options: AnalyticsOptions{
			Periods: viewstate.AnalyticsPeriods,
			Metrics: viewstate.AnalyticsMetrics,
		},
		Efficiency:         mockdata.EfficiencyBreakdown(),
		PerformanceMetrics: mockdata.PerformanceMetrics(),
		Insights:           mockdata.AnalyticsInsights(),
		Opportunities:      mockdata.AnalyticsOpportunities(),
		Data:               s.analytics.Snapshot(),
	}
}

// SetAnalyticsFilters applies the non-empty fields of patch
func (s *Service) SetAnalyticsFilters(patch viewstate.AnalyticsFilters) (viewstate.AnalyticsFilters, error) {
	s.mu.Lock()
	merged := s.analyticsFilters
	if patch.Period != "" {
		merged.Period = patch.Period
	}
	if patch.Metric != "" {
		merged.Metric = patch.Metric
	}
	if err := merged.Validate(); err != nil {
		s.mu.Unlock()
		return s.analyticsFilters, err
	}
	s.analyticsFilters = merged
	s.mu.Unlock()

	s.notify(PageAnalytics)
	return merged, nil
}

// RefreshAnalytics reloads the monthly chart of the current year, adding
// the stored forecast totals per month
func (s *Service) RefreshAnalytics(ctx context.Context) error {
	loc := s.config.Location()
	year := s.now().In(loc).Year()
	store := s.historyStore()

	_, err := viewstate.Run(s.analytics, func() (AnalyticsData, error) {
		data := mockAnalytics(year)
		if store == nil {
			return data, nil
		}
		totals, err := store.MonthlySolar(ctx, year, loc)
		if err != nil {
			return data, fmt.Errorf("failed to load forecast totals: %w", err)
		}
		for i := range data.Monthly {
			data.Monthly[i].Forecast = forecast.Round2(totals[time.Month(i+1)])
		}
		return data, nil
	})
	return err
}

// About returns the static about page
func (s *Service) About() AboutView {
	return aboutView()
}

// refreshSiteWeather fetches the MET forecast for the site
func (s *Service) refreshSiteWeather(ctx context.Context) {
	if s.site == nil {
		return
	}

	f, err := s.site.GetCompact(ctx, meteo.Location{Latitude: s.config.Latitude, Longitude: s.config.Longitude})
	if err != nil {
		s.logger.Printf("Failed to fetch site weather: %v", err)
		return
	}

	now := s.now()
	s.mu.Lock()
	s.siteForecast = f
	s.siteUpdated = now
	s.mu.Unlock()

	if step := meteo.Current(f, now); step != nil && step.Data.Instant.Details != nil {
		if t := step.Data.Instant.Details.AirTemperature; t != nil {
			s.metrics.SetSiteTemperature(*t)
		}
	}
	s.notify(PageDashboard)
}

// pollPlant reads the plant over Modbus
func (s *Service) pollPlant() {
	if s.readPlant == nil {
		return
	}

	reading, err := s.readPlant()
	if err != nil {
		s.logger.Printf("Failed to read plant: %v", err)
		return
	}

	s.mu.Lock()
	s.plantReading = reading
	s.mu.Unlock()

	s.metrics.SetPlant(reading.PhotovoltaicPower, reading.ESSSOC)
	s.notify(PageDashboard)
}

// pruneHistory deletes forecasts older than the retention
func (s *Service) pruneHistory(ctx context.Context) {
	store := s.historyStore()
	if store == nil || s.config.HistoryRetention <= 0 {
		return
	}

	cutoff := s.now().Add(-s.config.HistoryRetention)
	n, err := store.Prune(ctx, cutoff)
	if err != nil {
		s.logger.Printf("Failed to prune forecast history: %v", err)
		return
	}
	if n > 0 {
		s.logger.Printf("Pruned %d forecasts older than %s", n, cutoff.Format(time.RFC3339))
	}
}

// Start runs the web server and the periodic tasks until ctx is canceled
// or Stop is called. With serverOnly only the web server is started.
func (s *Service) Start(ctx context.Context, serverOnly bool) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("service is already running")
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	stopChan := s.stopChan
	s.mu.Unlock()

	if s.historyStore() == nil && s.config.HistoryEnabled() {
		if err := s.OpenHistory(ctx); err != nil {
			s.logger.Printf("Forecast history unavailable: %v", err)
		}
	}
	if err := s.RefreshAnalytics(ctx); err != nil {
		s.logger.Printf("Failed to refresh analytics: %v", err)
	}

	if s.webServer != nil {
		err := s.webServer.Start()
		if err != nil {
			s.logger.Printf("Failed to start web server: %v", err)
		} else {
			s.logger.Printf("Web server started on port %d", s.webServer.port)
		}
		if serverOnly {
			return err
		}
	}

	config := s.GetConfig()
	now := s.now()

	var tasks []PeriodicTask
	if s.site != nil {
		tasks = append(tasks, PeriodicTask{
			name:         "SiteWeather",
			initialDelay: 0,
			interval:     config.WeatherUpdateInterval,
			runFunc: func() {
				s.refreshSiteWeather(ctx)
			},
		})
	}
	if s.readPlant != nil {
		tasks = append(tasks, PeriodicTask{
			name:         "PlantPoll",
			initialDelay: alignedDelay(now, config.PlantPollInterval),
			interval:     config.PlantPollInterval,
			runFunc:      s.pollPlant,
		})
	}
	if s.historyStore() != nil && config.HistoryRetention > 0 {
		tasks = append(tasks, PeriodicTask{
			name:         "HistoryPrune",
			initialDelay: 0,
			interval:     config.HistoryPruneInterval,
			runFunc: func() {
				s.pruneHistory(ctx)
			},
		})
	}

	if len(tasks) == 0 {
		s.logger.Printf("No periodic tasks configured")
		select {
		case <-ctx.Done():
		case <-stopChan:
		}
	}

	var wg sync.WaitGroup
	for _, task := range tasks {
		task := task
		wg.Add(1)
		go func() {
			defer wg.Done()
			task.run(ctx, stopChan, s.logger)
		}()
	}
	wg.Wait()

	s.logger.Printf("All periodic tasks stopped")
	s.stop()
	return nil
}

// Stop gracefully stops the service
func (s *Service) Stop() {
	s.stop()
}

func (s *Service) stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}

	s.isRunning = false

	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	s.mu.Unlock()

	// handlers still being served take s.mu
	if s.webServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.webServer.Stop(ctx); err != nil {
			s.logger.Printf("Error stopping web server: %v", err)
		}
	}
}

// Close detaches the pages and closes the history store. Requests still
// in flight finish but their results are dropped.
func (s *Service) Close() error {
	s.dashboard.Close()
	s.forecasting.Close()
	s.analytics.Close()

	s.mu.Lock()
	store := s.store
	s.store = nil
	s.mu.Unlock()

	if store != nil {
		return store.Close()
	}
	return nil
}

// IsRunning returns whether the service is currently running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetStatus returns the current status of the service
func (s *Service) GetStatus() ServiceStatus {
	s.mu.RLock()
	status := ServiceStatus{
		IsRunning:       s.isRunning,
		HasSiteWeather:  s.siteForecast != nil,
		HasPlantReading: s.plantReading != nil,
		HistoryEnabled:  s.store != nil,
	}
	if !s.siteUpdated.IsZero() {
		updated := s.siteUpdated
		status.SiteWeatherUpdated = &updated
	}
	s.mu.RUnlock()

	if city := s.tracker.City(); city != "" {
		updated := s.tracker.Updated()
		status.WeatherCity = city
		status.WeatherUpdated = &updated
	}
	status.WeatherLoading = s.dashboard.Loading()
	status.ForecastLoading = s.forecasting.Loading()
	status.StaleResults = s.dashboard.Stale() + s.forecasting.Stale() + s.analytics.Stale()
	return status
}

// ServiceStatus represents the current status of the service
type ServiceStatus struct {
	IsRunning          bool       `json:"is_running"`
	WeatherLoading     bool       `json:"weather_loading"`
	WeatherCity        string     `json:"weather_city,omitempty"`
	WeatherUpdated     *time.Time `json:"weather_updated,omitempty"`
	ForecastLoading    bool       `json:"forecast_loading"`
	HasSiteWeather     bool       `json:"has_site_weather"`
	SiteWeatherUpdated *time.Time `json:"site_weather_updated,omitempty"`
	HasPlantReading    bool       `json:"has_plant_reading"`
	HistoryEnabled     bool       `json:"history_enabled"`
	StaleResults       uint64     `json:"stale_results"`
}
