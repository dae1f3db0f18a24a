// Package advice produces one-sentence appliance scheduling advice for a
// solar forecast.
//
// Advice comes from an optional text generation Service. An Advisor always
// answers: when the service is not configured, fails or returns nothing, it
// falls back to the deterministic rule table in Fallback.
package advice

import (
	"context"
	"fmt"
	"strings"

	"github.com/ezoic/wattwise/pkg/log"
)

// Request describes the forecast to advise on.
type Request struct {
	Efficiency      float64 `json:"efficiency"`
	Temperature     float64 `json:"temperature"`
	CloudCover      float64 `json:"cloud_cover"`
	Humidity        float64 `json:"humidity"`
	HourOfDay       int     `json:"hour_of_day"`
	ConfidenceLower float64 `json:"confidence_lower"`
	ConfidenceUpper float64 `json:"confidence_upper"`
}

// NewRequest builds a Request with a ±5 point confidence band around
// efficiency.
func NewRequest(efficiency, temperature, cloudCover, humidity float64, hour int) Request {
	return Request{
		Efficiency:      efficiency,
		Temperature:     temperature,
		CloudCover:      cloudCover,
		Humidity:        humidity,
		HourOfDay:       hour,
		ConfidenceLower: efficiency - 5,
		ConfidenceUpper: efficiency + 5,
	}
}

// Service generates advice text.
type Service interface {
	Advise(ctx context.Context, req Request) (string, error)
}

// Source tells where a piece of advice came from.
type Source string

const (
	SourceService  Source = "service"
	SourceFallback Source = "fallback"
)

// Advisor answers with the Service when possible and the rule table otherwise.
type Advisor struct {
	Service Service // nil disables the service
	logger  log.Logger
}

// NewAdvisor creates an Advisor; svc may be nil.
func NewAdvisor(svc Service) *Advisor {
	return &Advisor{
		Service: svc,
		logger:  log.GetLoggerWithName("advice"),
	}
}

// Advise never fails.
func (a *Advisor) Advise(ctx context.Context, req Request) (string, Source) {
	if a.Service == nil {
		return Fallback(req), SourceFallback
	}
	text, err := a.Service.Advise(ctx, req)
	if err != nil {
		a.logger.Warn("Advice service failed, using fallback", log.ErrorKey, err)
		return Fallback(req), SourceFallback
	}
	text = strings.TrimSpace(text)
	if text == "" {
		a.logger.Warn("Advice service returned no text, using fallback")
		return Fallback(req), SourceFallback
	}
	return text, SourceService
}

// Fallback is the context-aware rule table, checked in order: heavy cloud,
// partial cloud, heat, humidity, otherwise good conditions.
func Fallback(req Request) string {
	switch {
	case req.CloudCover > 70:
		return fmt.Sprintf("☁️ With %.0f%% cloud cover, delay high-energy tasks like laundry until conditions improve. Consider scheduling for tomorrow if the forecast shows clearer skies.", req.CloudCover)
	case req.CloudCover > 40:
		return fmt.Sprintf("⛅ Partial clouds at %.0f%%, you'll still generate decent power. Run your dishwasher between 11 AM and 2 PM to catch the peak output window.", req.CloudCover)
	case req.Temperature > 40:
		return fmt.Sprintf("🌡️ High temperature (%.0f°C) may reduce panel efficiency slightly. Morning hours (8 to 11 AM) will likely be your sweet spot today.", req.Temperature)
	case req.Humidity > 80:
		return fmt.Sprintf("💧 High humidity (%.0f%%) might cause slight haze. Output is good, but peak performance is expected between 10 AM and 1 PM.", req.Humidity)
	default:
		return fmt.Sprintf("🌞 Excellent conditions! Clear skies and %.0f°C is near optimal. Run your heavy appliances between 10 AM and 3 PM to maximize free solar power.", req.Temperature)
	}
}

// Generic is the efficiency-only rule table.
func Generic(efficiency float64) string {
	switch {
	case efficiency > 70:
		return "🌞 Stellar solar conditions! Perfect time to run energy-hungry appliances and show your utility company who's boss."
	case efficiency > 40:
		return "☀️ Decent solar output today. Maybe save the heavy stuff for noon, but you're good to go!"
	default:
		return "☁️ Solar panels taking a coffee break today. Consider running major appliances during peak sun hours (or just blame it on the clouds)."
	}
}
