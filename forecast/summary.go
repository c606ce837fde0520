package forecast

import (
	"fmt"
	"math"
)

// HighProductionThreshold is the expected total above which a period is
// considered an excellent production period.
const HighProductionThreshold = 5000.0

// Summary condenses a forecast into headline figures and advice
type Summary struct {
	TotalExpected     float64  `json:"totalExpected"`
	PeakProduction    float64  `json:"peakProduction"`
	PeakDate          string   `json:"peakDate"`
	PeakTime          string   `json:"peakTime,omitempty"`
	AverageConfidence float64  `json:"averageConfidence"`
	Insights          []string `json:"insights"`
	Recommendations   []string `json:"recommendations"`
}

// Summarize computes totals, the peak day, and the insight and
// recommendation texts for a set of predictions. It returns nil when there
// is nothing to summarize.
func Summarize(req Request, predictions []Prediction) *Summary {
	if len(predictions) == 0 {
		return nil
	}

	var totalSolar, totalWind, totalConfidence float64
	peak := predictions[0]
	sunnyDays := 0
	hasRain := false
	for _, p := range predictions {
		totalSolar += p.Solar
		totalWind += p.Wind
		totalConfidence += p.Confidence
		if p.Solar+p.Wind > peak.Solar+peak.Wind {
			peak = p
		}
		switch p.Weather {
		case "sunny":
			sunnyDays++
		case "rainy":
			hasRain = true
		}
	}

	n := float64(len(predictions))
	avgConfidence := math.Round(totalConfidence / n)

	var total float64
	switch req.EnergyType {
	case EnergySolar:
		total = totalSolar
	case EnergyWind:
		total = totalWind
	default:
		total = totalSolar + totalWind
	}
	total = Round2(total)

	insights := []string{
		fmt.Sprintf("%s forecast shows %.0f%% confidence for the next %d days.", req.Location, avgConfidence, len(predictions)),
		fmt.Sprintf("Peak combined production expected on %s with %.2f total.", peak.Date, Round2(peak.Solar+peak.Wind)),
		fmt.Sprintf("Weather analysis indicates %d optimal days for solar generation.", sunnyDays),
		fmt.Sprintf("Average solar output: %.2f, wind output: %.2f", Round2(totalSolar/n), Round2(totalWind/n)),
	}

	recommendations := make([]string, 0, 4)
	if total > HighProductionThreshold {
		recommendations = append(recommendations, "Excellent production period - consider maximizing grid feed-in during peak hours.")
	} else {
		recommendations = append(recommendations, "Moderate production expected - optimize battery storage and consider backup energy sources.")
	}
	if hasRain {
		recommendations = append(recommendations, "Rain periods detected - ensure wind systems are optimized for increased wind energy capture.")
	} else {
		recommendations = append(recommendations, "Clear weather forecast - schedule solar panel cleaning and maintenance for optimal efficiency.")
	}
	if avgConfidence > 90 {
		recommendations = append(recommendations, "High confidence forecast - proceed with planned energy commitments and trading.")
	} else {
		recommendations = append(recommendations, "Moderate confidence - maintain flexible energy backup options and monitor weather updates.")
	}
	recommendations = append(recommendations, fmt.Sprintf("Location-specific optimization: %s shows %s potential.", req.Location, potential(req.EnergyType)))

	return &Summary{
		TotalExpected:     total,
		PeakProduction:    Round2(peak.Solar + peak.Wind),
		PeakDate:          peak.Date,
		AverageConfidence: avgConfidence,
		Insights:          insights,
		Recommendations:   recommendations,
	}
}

func potential(e EnergyType) string {
	switch e {
	case EnergySolar:
		return "strong solar"
	case EnergyWind:
		return "good wind"
	default:
		return "balanced renewable"
	}
}
