package dashboard

import (
	"github.com/devskill-org/energy-dashboard/forecast"
	"github.com/devskill-org/energy-dashboard/mockdata"
	"github.com/devskill-org/energy-dashboard/plant"
	"github.com/devskill-org/energy-dashboard/sun"
	"github.com/devskill-org/energy-dashboard/viewstate"
	"github.com/devskill-org/energy-dashboard/weather"
)

// Page names used in view states and websocket pushes
const (
	PageDashboard   = "dashboard"
	PageForecasting = "forecasting"
	PageAnalytics   = "analytics"
)

// Weather chart sources
const (
	WeatherSourceMock = "mock"
	WeatherSourceMET  = "met"
)

// DashboardOptions are the select options offered on the dashboard
type DashboardOptions struct {
	TimeRanges  []viewstate.Option `json:"timeRanges"`
	Locations   []viewstate.Option `json:"locations"`
	EnergyTypes []viewstate.Option `json:"energyTypes"`
}

// DashboardView is everything the dashboard page renders
type DashboardView struct {
	Filters         viewstate.DashboardFilters        `json:"filters"`
	Options         DashboardOptions                  `json:"options"`
	Production      []mockdata.ProductionPoint        `json:"production"`
	PeakProduction  *mockdata.ProductionPoint         `json:"peakProduction,omitempty"`
	Weather         []mockdata.HourlyWeather          `json:"weather"`
	WeatherSource   string                            `json:"weatherSource"`
	Metrics         []mockdata.Metric                 `json:"metrics"`
	Recommendations []mockdata.Note                   `json:"recommendations"`
	CurrentWeather  viewstate.State[weather.Snapshot] `json:"currentWeather"`
	Site            string                            `json:"site"`
	Daylight        *sun.Daylight                     `json:"daylight,omitempty"`
	Plant           *plant.Reading                    `json:"plant,omitempty"`
	ExpectedPV      float64                           `json:"expectedPv"` // kW
}

// ForecastingOptions are the inputs offered on the forecasting page
type ForecastingOptions struct {
	Locations   []viewstate.Option `json:"locations"`
	Days        []viewstate.Option `json:"days"`
	EnergyTypes []viewstate.Option `json:"energyTypes"`
}

// ForecastingView is the forecasting page: static charts plus the state
// of the last "Generate forecast" request
type ForecastingView struct {
	Filters         viewstate.ForecastingFilters   `json:"filters"`
	Options         ForecastingOptions             `json:"options"`
	Daily           []mockdata.DailyForecast       `json:"daily"`
	Hourly          []mockdata.HourlyForecast      `json:"hourly"`
	Highlights      []mockdata.Metric              `json:"highlights"`
	Insights        []mockdata.Note                `json:"insights"`
	Recommendations []mockdata.Note                `json:"recommendations"`
	Result          viewstate.State[forecast.Data] `json:"result"`
}

// MonthlyRow is one month of the analytics production chart. Forecast is
// the sum of stored forecast totals created in that month.
type MonthlyRow struct {
	mockdata.MonthlyProduction
	Forecast float64 `json:"forecast"`
}

// AnalyticsData is the refreshable part of the analytics page
type AnalyticsData struct {
	Year    int          `json:"year"`
	Monthly []MonthlyRow `json:"monthly"`
}

// AnalyticsOptions are the selects of the analytics page
type AnalyticsOptions struct {
	Periods []viewstate.Option `json:"periods"`
	Metrics []viewstate.Option `json:"metrics"`
}

// AnalyticsView is the analytics page. The period and metric filters are
// echoed back but do not narrow the static series.
type AnalyticsView struct {
	Filters            viewstate.AnalyticsFilters     `json:"filters"`
	Options            AnalyticsOptions               `json:"options"`
	Efficiency         []mockdata.Efficiency          `json:"efficiency"`
	PerformanceMetrics []mockdata.Metric              `json:"performanceMetrics"`
	Insights           []mockdata.Note                `json:"insights"`
	Opportunities      []mockdata.Note                `json:"opportunities"`
	Data               viewstate.State[AnalyticsData] `json:"data"`
}

// AboutView is the static about page
type AboutView struct {
	Features []mockdata.Feature `json:"features"`
	Stats    []mockdata.Stat    `json:"stats"`
}

func mockAnalytics(year int) AnalyticsData {
	months := mockdata.Monthly()
	rows := make([]MonthlyRow, len(months))
	for i, m := range months {
		rows[i] = MonthlyRow{MonthlyProduction: m}
	}
	return AnalyticsData{Year: year, Monthly: rows}
}

func aboutView() AboutView {
	return AboutView{Features: mockdata.Features(), Stats: mockdata.Stats()}
}
