package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/wattwise/advice"
	"github.com/ezoic/wattwise/forecast"
	wwErrors "github.com/ezoic/wattwise/pkg/errors"
	"github.com/ezoic/wattwise/store"
	"github.com/ezoic/wattwise/weather"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// constant predicts the same efficiency for every row.
type constant float64

func (c constant) Predict(X mat.Matrix) (mat.Matrix, error) {
	r, _ := X.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		out.Set(i, 0, float64(c))
	}
	return out, nil
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Insert(ctx context.Context, r weather.Reading) bool {
	return m.Called(ctx, r).Bool(0)
}

func (m *mockStore) Latest(ctx context.Context, n int) ([]weather.Reading, error) {
	args := m.Called(ctx, n)
	readings, _ := args.Get(0).([]weather.Reading)
	return readings, args.Error(1)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}

type mockAdvice struct {
	mock.Mock
}

func (m *mockAdvice) Advise(ctx context.Context, req advice.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func newTestServer(t *testing.T, deps Deps) *Server {
	t.Helper()
	if deps.Clock == nil {
		deps.Clock = func() time.Time { return testNow }
	}
	if deps.Source == nil {
		deps.Source = rand.NewPCG(7, 7)
	}
	return New(deps)
}

func withModel(eff float64) *forecast.Handle {
	return forecast.NewHandle(constant(eff), "test")
}

func get(t *testing.T, s *Server, target string) (*http.Response, []byte) {
	t.Helper()
	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func getJSON(t *testing.T, s *Server, target string, wantStatus int, out interface{}) {
	t.Helper()
	resp, body := get(t, s, target)
	require.Equal(t, wantStatus, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, out))
}

type errorBody struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Deps{Model: withModel(50)})

	var body map[string]interface{}
	getJSON(t, s, "/health", http.StatusOK, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["model_loaded"])
	assert.Equal(t, "test", body["model_source"])
}

func TestPredict(t *testing.T) {
	s := newTestServer(t, Deps{Model: withModel(50)})

	var body struct {
		Input      weather.Sample     `json:"input"`
		Efficiency float64            `json:"efficiency"`
		Category   forecast.Category  `json:"category"`
		Appliance  forecast.Appliance `json:"appliance"`
		TimeEmoji  string             `json:"time_emoji"`
	}
	getJSON(t, s, "/api/v1/predict?temperature=25&cloud_cover=10&humidity=40&hour=9&day_of_year=100", http.StatusOK, &body)

	assert.Equal(t, 50.0, body.Efficiency)
	assert.Equal(t, "Moderate", body.Category.Label)
	assert.Equal(t, "WAIT", body.Appliance.Status)
	assert.Equal(t, "🌤️", body.TimeEmoji)
	assert.Equal(t, weather.Sample{Temperature: 25, CloudCover: 10, Humidity: 40, HourOfDay: 9, DayOfYear: 100}, body.Input)
}

func TestPredictDefaultsToClock(t *testing.T) {
	s := newTestServer(t, Deps{Model: withModel(80)})

	var body struct {
		Input weather.Sample `json:"input"`
	}
	getJSON(t, s, "/api/v1/predict", http.StatusOK, &body)
	assert.Equal(t, 12, body.Input.HourOfDay)
	assert.Equal(t, testNow.YearDay(), body.Input.DayOfYear)
	assert.Equal(t, forecast.DefaultConditions.Temperature, body.Input.Temperature)
}

func TestPredictValidation(t *testing.T) {
	s := newTestServer(t, Deps{Model: withModel(50)})

	tests := []string{
		"/api/v1/predict?cloud_cover=150",
		"/api/v1/predict?humidity=-1",
		"/api/v1/predict?temperature=61",
		"/api/v1/predict?hour=24",
		"/api/v1/predict?day_of_year=0",
		"/api/v1/predict?hour=noon",
		"/api/v1/predict?temperature=warm",
	}
	for _, target := range tests {
		t.Run(target, func(t *testing.T) {
			var body errorBody
			getJSON(t, s, target, http.StatusBadRequest, &body)
			assert.True(t, body.Error)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestPredictWithoutModel(t *testing.T) {
	s := newTestServer(t, Deps{})

	var body errorBody
	getJSON(t, s, "/api/v1/predict", http.StatusServiceUnavailable, &body)
	assert.Contains(t, body.Message, "model not loaded")

	getJSON(t, s, "/api/v1/forecast", http.StatusServiceUnavailable, &body)
}

func TestForecastManualConditions(t *testing.T) {
	s := newTestServer(t, Deps{Model: withModel(50)})

	var f dayForecast
	getJSON(t, s, "/api/v1/forecast?temperature=30&cloud_cover=20&humidity=50&capacity=5&rate=7", http.StatusOK, &f)

	assert.Equal(t, ConditionsManual, f.ConditionsSource)
	assert.Equal(t, forecast.Conditions{Temperature: 30, CloudCover: 20, Humidity: 50}, f.Conditions)
	assert.Equal(t, forecast.TomorrowDayOfYear(testNow), f.DayOfYear)
	require.Len(t, f.Curve, 24)
	for _, p := range f.Curve {
		assert.InDelta(t, 2.5, p.EnergyKWh, 1e-9)
	}
	assert.InDelta(t, 60, f.Summary.TotalKWh, 1e-9)
	assert.InDelta(t, 40, f.Summary.MaxPossibleKWh, 1e-9)
	assert.InDelta(t, 420, f.Summary.EstimatedSavings, 1e-9)
	assert.Equal(t, forecast.StatusHigh, f.Summary.Status)
	assert.Equal(t, advice.SourceFallback, f.AdviceSource)
	assert.Contains(t, f.Advice, "Excellent conditions")
}

func TestForecastValidation(t *testing.T) {
	s := newTestServer(t, Deps{Model: withModel(50)})

	for _, target := range []string{
		"/api/v1/forecast?capacity=0.5",
		"/api/v1/forecast?capacity=11",
		"/api/v1/forecast?rate=25",
		"/api/v1/forecast?day_of_year=367",
		"/api/v1/forecast?cloud_cover=101",
	} {
		resp, _ := get(t, s, target)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
	}
}

func TestForecastLiveLocation(t *testing.T) {
	s := newTestServer(t, Deps{Model: withModel(50)})

	var f dayForecast
	getJSON(t, s, "/api/v1/forecast?location=pune", http.StatusOK, &f)
	assert.Equal(t, ConditionsLive, f.ConditionsSource)
	assert.Equal(t, "Pune, Maharashtra", f.Location)
	assert.InDelta(t, 26, f.Conditions.Temperature, 2)
	assert.InDelta(t, 25, f.Conditions.CloudCover, 10)

	var body errorBody
	getJSON(t, s, "/api/v1/forecast?location=Atlantis", http.StatusNotFound, &body)
	assert.Contains(t, body.Message, "Atlantis")
}

func TestForecastFromStore(t *testing.T) {
	mem := store.NewMemory(10)
	require.True(t, mem.Insert(context.Background(), weather.Reading{
		Timestamp: testNow, Temperature: 31, CloudCover: 80, Humidity: 70, City: "Delhi",
	}))
	s := newTestServer(t, Deps{Model: withModel(20), Store: mem})

	var f dayForecast
	getJSON(t, s, "/api/v1/forecast", http.StatusOK, &f)
	assert.Equal(t, ConditionsStore, f.ConditionsSource)
	assert.Equal(t, "Delhi", f.Location)
	assert.Equal(t, 80.0, f.Conditions.CloudCover)
	assert.Contains(t, f.Advice, "80% cloud cover")
}

func TestForecastStoreFailureUsesDefaults(t *testing.T) {
	st := &mockStore{}
	st.On("Latest", mock.Anything, 1).Return(nil, errors.New("disk on fire"))
	s := newTestServer(t, Deps{Model: withModel(50), Store: st})

	var f dayForecast
	getJSON(t, s, "/api/v1/forecast", http.StatusOK, &f)
	assert.Equal(t, forecast.DefaultConditions, f.Conditions)
	st.AssertExpectations(t)
}

func TestForecastAdviceService(t *testing.T) {
	svc := &mockAdvice{}
	svc.On("Advise", mock.Anything, mock.MatchedBy(func(r advice.Request) bool {
		return r.HourOfDay == 12 && r.CloudCover == 20
	})).Return("Run the dishwasher at noon.", nil)
	s := newTestServer(t, Deps{Model: withModel(50), Advisor: advice.NewAdvisor(svc)})

	var f dayForecast
	getJSON(t, s, "/api/v1/forecast?cloud_cover=20", http.StatusOK, &f)
	assert.Equal(t, advice.SourceService, f.AdviceSource)
	assert.Equal(t, "Run the dishwasher at noon.", f.Advice)
	svc.AssertExpectations(t)
}

func TestChart(t *testing.T) {
	s := newTestServer(t, Deps{Model: withModel(60)})

	resp, body := get(t, s, "/api/v1/forecast/chart.png?temperature=25")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(string(body), "\x89PNG"))
}

func TestRenderCurveEmpty(t *testing.T) {
	_, err := RenderCurve(nil, "empty")
	assert.ErrorIs(t, err, wwErrors.ErrEmptyData)
}

func TestLatestWeather(t *testing.T) {
	mem := store.NewMemory(10)
	for i, city := range []string{"Mumbai", "Pune", "Delhi"} {
		require.True(t, mem.Insert(context.Background(), weather.Reading{
			Timestamp: testNow.Add(time.Duration(i) * time.Minute), Temperature: 25, CloudCover: 40, Humidity: 60, City: city,
		}))
	}
	s := newTestServer(t, Deps{Store: mem})

	var body struct {
		Count    int               `json:"count"`
		Readings []weather.Reading `json:"readings"`
	}
	getJSON(t, s, "/api/v1/weather/latest?n=2", http.StatusOK, &body)
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "Delhi", body.Readings[0].City)
	assert.Equal(t, "Pune", body.Readings[1].City)

	resp, _ := get(t, s, "/api/v1/weather/latest?n=0")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLatestWeatherErrors(t *testing.T) {
	resp, _ := get(t, newTestServer(t, Deps{}), "/api/v1/weather/latest")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	st := &mockStore{}
	st.On("Latest", mock.Anything, DefaultLatest).Return(nil, errors.New("locked"))
	resp, _ = get(t, newTestServer(t, Deps{Store: st}), "/api/v1/weather/latest")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	st.AssertExpectations(t)
}

func TestTickerAndLocations(t *testing.T) {
	s := newTestServer(t, Deps{})

	var tk forecast.Ticker
	getJSON(t, s, "/api/v1/ticker", http.StatusOK, &tk)
	assert.Equal(t, forecast.DefaultLocation, tk.Location)
	assert.InDelta(t, 100, tk.SolarIndex+tk.CloudCover, 1e-9)
	assert.True(t, tk.Timestamp.Equal(testNow))

	resp, _ := get(t, s, "/api/v1/ticker?location=Gotham")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var locs struct {
		Default   string              `json:"default"`
		Locations []forecast.Location `json:"locations"`
	}
	getJSON(t, s, "/api/v1/locations", http.StatusOK, &locs)
	assert.Equal(t, forecast.DefaultLocation, locs.Default)
	assert.Len(t, locs.Locations, len(forecast.Locations))
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, Deps{Model: withModel(50)})

	resp, _ := get(t, s, "/api/v1/predict")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = get(t, s, "/api/v1/forecast")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	text := string(body)
	assert.Contains(t, text, `wattwise_predictions_total{endpoint="predict"} 1`)
	assert.Contains(t, text, `wattwise_predictions_total{endpoint="forecast"} 24`)
	assert.Contains(t, text, `wattwise_advice_total{source="fallback"} 1`)
	assert.Contains(t, text, "wattwise_request_duration_seconds")
}
