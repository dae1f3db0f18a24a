package dashboard

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/ezoic/wattwise/advice"
	"github.com/ezoic/wattwise/forecast"
	"github.com/ezoic/wattwise/pkg/log"
	"github.com/ezoic/wattwise/weather"
)

var validate = validator.New()

// Panel defaults.
const (
	DefaultCapacityKW = 5.0
	DefaultRatePerKWh = 7.0
	DefaultLatest     = 10
)

// Where forecast conditions came from.
const (
	ConditionsManual = "manual"
	ConditionsLive   = "live"
	ConditionsStore  = "store"
)

func (s *Server) registerRoutes() {
	v1 := s.app.Group("/api/v1")

	v1.Get("/locations", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"default":   forecast.DefaultLocation,
			"locations": forecast.Locations,
		})
	})

	v1.Get("/ticker", func(c *fiber.Ctx) error {
		loc, err := location(c.Query("location", forecast.DefaultLocation))
		if err != nil {
			return err
		}
		return c.JSON(s.ticker(loc))
	})

	v1.Get("/weather/latest", func(c *fiber.Ctx) error {
		if s.deps.Store == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "record store unavailable")
		}
		q := newQuery(c)
		req := latestQuery{N: q.int("n", DefaultLatest)}
		if err := q.check(req); err != nil {
			return err
		}
		readings, err := s.deps.Store.Latest(c.UserContext(), req.N)
		if err != nil {
			s.logger.Error("Failed to read latest readings", log.ErrorKey, err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
		}
		return c.JSON(fiber.Map{"count": len(readings), "readings": readings})
	})

	v1.Get("/predict", s.predict)
	v1.Get("/forecast", s.forecast)
	v1.Get("/forecast/chart.png", s.chart)
}

func (s *Server) predict(c *fiber.Ctx) error {
	if s.deps.Model == nil {
		return errNoModel
	}
	now := s.deps.Clock()
	q := newQuery(c)
	req := predictQuery{
		Temperature: q.float("temperature", forecast.DefaultConditions.Temperature),
		CloudCover:  q.float("cloud_cover", forecast.DefaultConditions.CloudCover),
		Humidity:    q.float("humidity", forecast.DefaultConditions.Humidity),
		Hour:        q.int("hour", now.Hour()),
		DayOfYear:   q.int("day_of_year", now.YearDay()),
	}
	if err := q.check(req); err != nil {
		return err
	}

	sample := weather.Sample{
		Temperature: req.Temperature,
		CloudCover:  req.CloudCover,
		Humidity:    req.Humidity,
		HourOfDay:   req.Hour,
		DayOfYear:   req.DayOfYear,
	}
	eff, err := s.deps.Model.Efficiency(sample)
	if err != nil {
		s.logger.Error("Prediction failed", log.OperationKey, log.OperationPredict, log.ErrorKey, err)
		return fiber.NewError(fiber.StatusInternalServerError, "prediction failed")
	}
	s.metrics.Predictions.WithLabelValues("predict").Inc()

	return c.JSON(fiber.Map{
		"input":      sample,
		"efficiency": eff,
		"category":   forecast.CategorizeEfficiency(eff),
		"appliance":  forecast.ApplianceStatus(eff),
		"time_emoji": forecast.TimeEmoji(req.Hour),
	})
}

// dayForecast is the body of /api/v1/forecast.
type dayForecast struct {
	ConditionsSource string                `json:"conditions_source"`
	Location         string                `json:"location,omitempty"`
	DayOfYear        int                   `json:"day_of_year"`
	CapacityKW       float64               `json:"capacity_kw"`
	RatePerKWh       float64               `json:"rate_per_kwh"`
	Conditions       forecast.Conditions   `json:"conditions"`
	Curve            []forecast.HourPoint  `json:"curve"`
	Summary          forecast.DailySummary `json:"summary"`
	Appliance        forecast.Appliance    `json:"appliance"`
	Category         forecast.Category     `json:"category"`
	Advice           string                `json:"advice"`
	AdviceSource     advice.Source         `json:"advice_source"`
}

func (s *Server) forecast(c *fiber.Ctx) error {
	f, err := s.buildForecast(c)
	if err != nil {
		return err
	}

	req := advice.NewRequest(f.Summary.EfficiencyPct, f.Conditions.Temperature, f.Conditions.CloudCover, f.Conditions.Humidity, 12)
	f.Advice, f.AdviceSource = s.deps.Advisor.Advise(c.UserContext(), req)
	s.metrics.Advice.WithLabelValues(string(f.AdviceSource)).Inc()

	return c.JSON(f)
}

func (s *Server) chart(c *fiber.Ctx) error {
	f, err := s.buildForecast(c)
	if err != nil {
		return err
	}
	title := fmt.Sprintf("Solar output, day %d (%.1f kWh)", f.DayOfYear, f.Summary.TotalKWh)
	png, err := RenderCurve(f.Curve, title)
	if err != nil {
		s.logger.Error("Failed to render chart", log.ErrorKey, err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render chart")
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

// buildForecast resolves the conditions, in order of preference: explicit
// query values, the live ticker of ?location=, the newest store reading,
// DefaultConditions.
func (s *Server) buildForecast(c *fiber.Ctx) (*dayForecast, error) {
	if s.deps.Model == nil {
		return nil, errNoModel
	}

	q := newQuery(c)
	f := &dayForecast{}
	cond, err := s.conditions(c, q, f)
	if err != nil {
		return nil, err
	}
	req := forecastQuery{
		Temperature: cond.Temperature,
		CloudCover:  cond.CloudCover,
		Humidity:    cond.Humidity,
		Capacity:    q.float("capacity", DefaultCapacityKW),
		Rate:        q.float("rate", DefaultRatePerKWh),
		DayOfYear:   q.int("day_of_year", forecast.TomorrowDayOfYear(s.deps.Clock())),
	}
	if err := q.check(req); err != nil {
		return nil, err
	}

	curve, err := forecast.DailyCurve(s.deps.Model, cond, req.DayOfYear, req.Capacity)
	if err != nil {
		s.logger.Error("Forecast failed", log.OperationKey, log.OperationPredict, log.ErrorKey, err)
		return nil, fiber.NewError(fiber.StatusInternalServerError, "forecast failed")
	}
	s.metrics.Predictions.WithLabelValues("forecast").Add(float64(len(curve)))

	f.DayOfYear = req.DayOfYear
	f.CapacityKW = req.Capacity
	f.RatePerKWh = req.Rate
	f.Conditions = cond
	f.Curve = curve
	f.Summary = forecast.Summarize(curve, req.Capacity, req.Rate)
	f.Appliance = forecast.ApplianceStatus(f.Summary.EfficiencyPct)
	f.Category = forecast.CategorizeEfficiency(f.Summary.EfficiencyPct)
	return f, nil
}

func (s *Server) conditions(c *fiber.Ctx, q *query, f *dayForecast) (forecast.Conditions, error) {
	if q.has("temperature") || q.has("cloud_cover") || q.has("humidity") {
		f.ConditionsSource = ConditionsManual
		return forecast.Conditions{
			Temperature: q.float("temperature", forecast.DefaultConditions.Temperature),
			CloudCover:  q.float("cloud_cover", forecast.DefaultConditions.CloudCover),
			Humidity:    q.float("humidity", forecast.DefaultConditions.Humidity),
		}, nil
	}

	if name := c.Query("location"); name != "" {
		loc, err := location(name)
		if err != nil {
			return forecast.Conditions{}, err
		}
		f.ConditionsSource = ConditionsLive
		f.Location = loc.Name
		return s.ticker(loc).Conditions(), nil
	}

	f.ConditionsSource = ConditionsStore
	if s.deps.Store == nil {
		return forecast.DefaultConditions, nil
	}
	readings, err := s.deps.Store.Latest(c.UserContext(), 1)
	if err != nil {
		s.logger.Warn("Failed to read latest reading, using defaults", log.ErrorKey, err)
		return forecast.DefaultConditions, nil
	}
	if len(readings) > 0 {
		f.Location = readings[0].City
	}
	return forecast.FromReadings(readings), nil
}

var errNoModel = fiber.NewError(fiber.StatusServiceUnavailable, "model not loaded; run `wattwise train` first")

func location(name string) (forecast.Location, error) {
	loc, ok := forecast.LookupLocation(name)
	if !ok {
		return forecast.Location{}, fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("unknown location %q", name))
	}
	return loc, nil
}

type latestQuery struct {
	N int `validate:"gte=1,lte=1000"`
}

type predictQuery struct {
	Temperature float64 `validate:"gte=-50,lte=60"`
	CloudCover  float64 `validate:"gte=0,lte=100"`
	Humidity    float64 `validate:"gte=0,lte=100"`
	Hour        int     `validate:"gte=0,lte=23"`
	DayOfYear   int     `validate:"gte=1,lte=366"`
}

type forecastQuery struct {
	Temperature float64 `validate:"gte=-50,lte=60"`
	CloudCover  float64 `validate:"gte=0,lte=100"`
	Humidity    float64 `validate:"gte=0,lte=100"`
	Capacity    float64 `validate:"gte=1,lte=10"`
	Rate        float64 `validate:"gte=1,lte=20"`
	DayOfYear   int     `validate:"gte=1,lte=366"`
}

// query reads numeric query parameters, keeping the first parse error.
type query struct {
	c   *fiber.Ctx
	err error
}

func newQuery(c *fiber.Ctx) *query {
	return &query{c: c}
}

func (q *query) has(key string) bool {
	return q.c.Query(key) != ""
}

func (q *query) float(key string, def float64) float64 {
	raw := q.c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil && q.err == nil {
		q.err = fmt.Errorf("invalid %s %q: expected a number", key, raw)
	}
	return v
}

func (q *query) int(key string, def int) int {
	raw := q.c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil && q.err == nil {
		q.err = fmt.Errorf("invalid %s %q: expected an integer", key, raw)
	}
	return v
}

// check reports a parse error or a validation failure of req as 400.
func (q *query) check(req interface{}) error {
	if q.err != nil {
		return fiber.NewError(fiber.StatusBadRequest, q.err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}
