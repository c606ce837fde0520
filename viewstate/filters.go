package viewstate

import (
	"fmt"
	"slices"
	"strconv"
)

// Option is one entry of a select control
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var (
	TimeRanges = []Option{
		{"24h", "24 Hours"},
		{"7d", "7 Days"},
		{"30d", "30 Days"},
	}
	DashboardLocations = []Option{
		{"San Francisco, CA", "San Francisco, CA"},
		{"Austin, TX", "Austin, TX"},
		{"Denver, CO", "Denver, CO"},
	}
	DashboardEnergyTypes = []Option{
		{"solar", "Solar"},
		{"wind", "Wind"},
	}

	ForecastLocations = []Option{
		{"san-francisco", "San Francisco, CA"},
		{"austin", "Austin, TX"},
		{"denver", "Denver, CO"},
		{"portland", "Portland, OR"},
	}
	ForecastDays = []Option{
		{"1", "24 Hours"},
		{"3", "3 Days"},
		{"7", "7 Days"},
		{"14", "14 Days"},
	}
	ForecastEnergyTypes = []Option{
		{"both", "Solar + Wind"},
		{"solar", "Solar Only"},
		{"wind", "Wind Only"},
	}

	AnalyticsPeriods = []Option{
		{"7days", "Last 7 Days"},
		{"30days", "Last 30 Days"},
		{"90days", "Last 90 Days"},
		{"year", "This Year"},
	}
	AnalyticsMetrics = []Option{
		{"production", "Production"},
		{"efficiency", "Efficiency"},
	}
)

// OptionError is returned when a filter value is not one of its options
type OptionError struct {
	Filter string
	Value  string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Filter, e.Value)
}

func hasOption(opts []Option, v string) bool {
	return slices.ContainsFunc(opts, func(o Option) bool { return o.Value == v })
}

// LabelFor returns the label of value v, or v itself when unknown
func LabelFor(opts []Option, v string) string {
	for _, o := range opts {
		if o.Value == v {
			return o.Label
		}
	}
	return v
}

// DashboardFilters are the selects of the dashboard page
type DashboardFilters struct {
	TimeRange  string `json:"timeRange"`
	Location   string `json:"location"`
	EnergyType string `json:"energyType"`
}

func DefaultDashboardFilters() DashboardFilters {
	return DashboardFilters{TimeRange: "24h", Location: "San Francisco, CA", EnergyType: "solar"}
}

// Validate checks every field against its option list. Empty fields are
// rejected too.
func (f DashboardFilters) Validate() error {
	if !hasOption(TimeRanges, f.TimeRange) {
		return &OptionError{"timeRange", f.TimeRange}
	}
	if !hasOption(DashboardLocations, f.Location) {
		return &OptionError{"location", f.Location}
	}
	if !hasOption(DashboardEnergyTypes, f.EnergyType) {
		return &OptionError{"energyType", f.EnergyType}
	}
	return nil
}

// Merge returns f with the non-empty fields of patch applied
func (f DashboardFilters) Merge(patch DashboardFilters) DashboardFilters {
	if patch.TimeRange != "" {
		f.TimeRange = patch.TimeRange
	}
	if patch.Location != "" {
		f.Location = patch.Location
	}
	if patch.EnergyType != "" {
		f.EnergyType = patch.EnergyType
	}
	return f
}

// ForecastingFilters are the inputs of the forecasting page
type ForecastingFilters struct {
	Location   string `json:"location"`
	Days       int    `json:"days"`
	EnergyType string `json:"energyType"`
}

func DefaultForecastingFilters() ForecastingFilters {
	return ForecastingFilters{Location: "san-francisco", Days: 7, EnergyType: "both"}
}

// Validate checks days and energy type against their options. The
// location is free text for the model and is only checked by the
// forecast client.
func (f ForecastingFilters) Validate() error {
	if !hasOption(ForecastDays, strconv.Itoa(f.Days)) {
		return &OptionError{"days", strconv.Itoa(f.Days)}
	}
	if !hasOption(ForecastEnergyTypes, f.EnergyType) {
		return &OptionError{"energyType", f.EnergyType}
	}
	return nil
}

// AnalyticsFilters are the selects of the analytics page
type AnalyticsFilters struct {
	Period string `json:"period"`
	Metric string `json:"metric"`
}

func DefaultAnalyticsFilters() AnalyticsFilters {
	return AnalyticsFilters{Period: "30days", Metric: "production"}
}

func (f AnalyticsFilters) Validate() error {
	if !hasOption(AnalyticsPeriods, f.Period) {
		return &OptionError{"period", f.Period}
	}
	if !hasOption(AnalyticsMetrics, f.Metric) {
		return &OptionError{"metric", f.Metric}
	}
	return nil
}
