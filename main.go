// Package main provides the renewable energy dashboard entry point and CLI interface.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/devskill-org/energy-dashboard/dashboard"
	"github.com/devskill-org/energy-dashboard/forecast"
	"github.com/devskill-org/energy-dashboard/plant"
)

const defaultConfigFile = "config.json"

func main() {
	// Command line flags
	var (
		configFile = flag.String("config", defaultConfigFile, "Configuration file path (.json, .yaml or .yml)")
		envFile    = flag.String("env", ".env", "Environment file with API keys")
		info       = flag.Bool("info", false, "Show Plant Information")
		help       = flag.Bool("help", false, "Show help message")
		serverOnly = flag.Bool("serverOnly", false, "Run only web server without periodic tasks")
		location   = flag.String("forecast", "", "Generate a forecast for the given location and exit")
		days       = flag.Int("days", 7, "Forecast days (1, 3, 7 or 14)")
		energy     = flag.String("energy", "both", "Forecast energy type (solar, wind or both)")
		city       = flag.String("weather", "", "Look up the current weather for the given city and exit")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	config, err := loadConfig(*configFile, *envFile)
	if err != nil {
		fmt.Println("Error loading configuration:", err)
		return
	}

	if *info {
		if err := showPlantInfo(config); err != nil {
			fmt.Println("Error:", err)
		}
		return
	}

	if *location != "" {
		runForecast(config, forecast.Request{Location: *location, Days: *days, EnergyType: forecast.EnergyType(*energy)})
		return
	}

	if *city != "" {
		runWeather(config, *city)
		return
	}

	fmt.Printf("Starting Renewable Energy Dashboard with the following configuration:\n")
	fmt.Printf("  Port: %d\n", config.Port)
	fmt.Printf("  Site: %s (%.4f, %.4f)\n", config.SiteName, config.Latitude, config.Longitude)
	fmt.Printf("  Forecast API: %s (model %s)\n", config.ForecastAPIURL, config.ForecastModel)
	if config.OpenWeatherAPIKey == "" {
		fmt.Printf("  Weather: no %s set, city lookups will fail\n", dashboard.EnvOpenWeatherAPIKey)
	}
	if config.PlantModbusAddress != "" {
		fmt.Printf("  Plant: %s every %s\n", config.PlantModbusAddress, config.PlantPollInterval)
	}
	switch {
	case config.PostgresConnString != "":
		fmt.Printf("  History: PostgreSQL\n")
	case config.HistoryPath != "":
		fmt.Printf("  History: %s\n", config.HistoryPath)
	}
	fmt.Println()

	logger := log.New(os.Stdout, "[DASHBOARD] ", log.LstdFlags)

	service := dashboard.NewServiceWithWebServer(config, logger)
	defer service.Close()

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := service.Start(ctx, *serverOnly); err != nil {
			if err != context.Canceled {
				logger.Printf("Service error: %v", err)
			}
		}
	}()

	logger.Printf("Dashboard started. Press Ctrl+C to stop...")

	<-sigChan
	logger.Printf("Shutdown signal received, stopping dashboard...")

	cancel()
	service.Stop()

	logger.Printf("Dashboard stopped successfully")
}

// loadConfig reads the configuration file and applies .env and process
// environment overrides, in that order. A missing default config file
// falls back to the built-in defaults.
func loadConfig(configFile, envFile string) (*dashboard.Config, error) {
	config, err := dashboard.LoadConfig(configFile)
	if err != nil {
		if configFile != defaultConfigFile || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		config = dashboard.DefaultConfig()
	}

	if err := config.ApplyEnvFile(envFile); err != nil {
		return nil, err
	}
	config.ApplyEnv(os.LookupEnv)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func showPlantInfo(config *dashboard.Config) error {
	if config.PlantModbusAddress == "" {
		return fmt.Errorf("plant_modbus_address is not configured")
	}

	reading, err := plant.ReadOnce(config.PlantModbusAddress, config.PlantTimeout)
	if err != nil {
		return err
	}

	fmt.Println("\n========================================")
	fmt.Println("PLANT INFORMATION")
	fmt.Println("========================================")
	fmt.Printf("Address:            %s\n", config.PlantModbusAddress)
	fmt.Printf("Read at:            %s\n", reading.ReadAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Running state:      %d (on grid: %v)\n", reading.RunningState, reading.OnGrid)
	fmt.Printf("PV power:           %.3f kW\n", reading.PhotovoltaicPower)
	fmt.Printf("Plant active power: %.3f kW\n", reading.PlantActivePower)
	fmt.Printf("Grid power:         %.3f kW\n", reading.GridPower)
	fmt.Printf("ESS SOC:            %.1f %%\n", reading.ESSSOC)
	fmt.Printf("ESS power:          %.3f kW (%s)\n", reading.ESSPower, reading.ESSStatus())
	if reading.ESSCapacity > 0 {
		fmt.Printf("ESS capacity:       %.2f kWh\n", reading.ESSCapacity)
	}
	fmt.Println("========================================")
	return nil
}

func runForecast(config *dashboard.Config, req forecast.Request) {
	logger := log.New(os.Stdout, "[FORECAST] ", log.LstdFlags)
	service := dashboard.NewService(config, logger)
	defer service.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if config.HistoryEnabled() {
		if err := service.OpenHistory(ctx); err != nil {
			logger.Printf("Forecast history unavailable: %v", err)
		}
	}

	logger.Printf("Requesting %d day %s forecast for %s...", req.Days, req.EnergyType, req.Location)
	resp := service.GenerateForecast(ctx, req)
	if !resp.Success {
		logger.Printf("Forecast failed: %s", resp.Error)
		return
	}

	data := resp.Data
	fmt.Println("\n========================================")
	fmt.Printf("FORECAST: %s (%d days)\n", data.Location, data.ForecastPeriod)
	fmt.Println("========================================")

	fmt.Println("┌──────────┬────────────┬────────────┬────────────┬───────────────┬──────────┐")
	fmt.Println("│   Date   │ Solar (kW) │ Wind (kW)  │ Confidence │    Weather    │ Temp (°C)│")
	fmt.Println("├──────────┼────────────┼────────────┼────────────┼───────────────┼──────────┤")
	for _, p := range data.Predictions {
		fmt.Printf("│ %8s │ %10.2f │ %10.2f │   %5.0f%%   │ %13s │  %6.1f  │\n",
			p.Date,
			p.Solar,
			p.Wind,
			p.Confidence,
			p.Weather,
			p.Temperature,
		)
	}
	fmt.Println("└──────────┴────────────┴────────────┴────────────┴───────────────┴──────────┘")

	if s := data.Summary; s != nil {
		fmt.Println("\n========================================")
		fmt.Println("SUMMARY")
		fmt.Println("========================================")
		fmt.Printf("Total expected:     %.2f\n", s.TotalExpected)
		fmt.Printf("Peak production:    %.2f on %s", s.PeakProduction, s.PeakDate)
		if s.PeakTime != "" {
			fmt.Printf(" around %s", s.PeakTime)
		}
		fmt.Println()
		fmt.Printf("Average confidence: %.0f%%\n", s.AverageConfidence)
		fmt.Println("\nInsights:")
		for _, line := range s.Insights {
			fmt.Printf("  - %s\n", line)
		}
		fmt.Println("\nRecommendations:")
		for _, line := range s.Recommendations {
			fmt.Printf("  - %s\n", line)
		}
		fmt.Println("========================================")
	}
}

func runWeather(config *dashboard.Config, city string) {
	logger := log.New(os.Stdout, "[WEATHER] ", log.LstdFlags)
	service := dashboard.NewService(config, logger)
	defer service.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	state := service.LookupWeather(ctx, city)
	if state.Data == nil {
		logger.Printf("No weather available")
		return
	}
	if state.Error != "" {
		logger.Printf("Lookup failed, showing previous snapshot")
	}
	fmt.Printf("%s: %.1f°C, %s\n", strings.TrimSpace(city), state.Data.Temperature, state.Data.Description)
}

func showHelp() {
	fmt.Println("Renewable Energy Dashboard - Production metrics and solar/wind forecasts")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Serves the dashboard, forecasting and analytics pages as a JSON API with")
	fmt.Println("  websocket push. Forecasts come from a hosted forecasting model, city weather")
	fmt.Println("  from OpenWeatherMap, site weather from MET Norway.")
	fmt.Println()
	fmt.Println("  Key Features:")
	fmt.Println("  - Solar and wind production charts")
	fmt.Println("  - Multi-day renewable forecasts with insights")
	fmt.Println("  - Current weather lookup by city")
	fmt.Println("  - Live plant telemetry via Modbus")
	fmt.Println("  - Forecast history in SQLite or PostgreSQL")
	fmt.Println("  - Prometheus metrics")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  energy-dashboard [OPTIONS]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("ENVIRONMENT:")
	fmt.Printf("  %-22s OpenWeatherMap API key\n", dashboard.EnvOpenWeatherAPIKey)
	fmt.Printf("  %-22s Forecast model base URL\n", dashboard.EnvForecastAPIURL)
	fmt.Printf("  %-22s PostgreSQL connection string for the forecast history\n", dashboard.EnvPostgresConn)
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Basic usage with default settings")
	fmt.Println("  energy-dashboard")
	fmt.Println()
	fmt.Println("  # Custom configuration")
	fmt.Println("  energy-dashboard --config=config.yaml")
	fmt.Println()
	fmt.Println("  # Generate a 3 day solar forecast")
	fmt.Println("  energy-dashboard -forecast \"Assam, India\" -days 3 -energy solar")
	fmt.Println()
	fmt.Println("  # Look up the weather in a city")
	fmt.Println("  energy-dashboard -weather London")
	fmt.Println()
	fmt.Println("  # Show plant information")
	fmt.Println("  energy-dashboard -info")
	fmt.Println()
	fmt.Println("  # Run only web server without periodic tasks")
	fmt.Println("  energy-dashboard -serverOnly")
}
