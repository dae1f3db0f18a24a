package advice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	wwErrors "github.com/ezoic/wattwise/pkg/errors"
)

// Gemini defaults.
const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com"
	DefaultModel    = "gemini-1.5-flash"
	DefaultTimeout  = 10 * time.Second
)

// apiKeyHeader carries the API key. Request URLs never include it.
const apiKeyHeader = "x-goog-api-key"

const systemPrompt = `You are an energy consultant. Based on this solar output prediction,
give a 1-sentence actionable recommendation for a homeowner (e.g., "Run your washing machine at 2 PM").
Keep it witty and fun, but genuinely helpful.`

var (
	errNoAPIKey      = errors.New("advice api key is not configured")
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errCircuitOpen   = errors.New("circuit breaker open")
	errEmptyResponse = errors.New("empty response")
)

// BackoffConfig controls retries of failed calls.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// GeminiConfig configures the Gemini client.
type GeminiConfig struct {
	APIKey   string
	Endpoint string // base URL, DefaultEndpoint when empty
	Model    string // DefaultModel when empty
	Timeout  time.Duration
	Client   *http.Client
	Backoff  BackoffConfig
}

// Gemini calls the generateContent REST method of a Gemini model.
type Gemini struct {
	cfg     GeminiConfig
	circuit *gobreaker.CircuitBreaker
}

// NewGemini creates a client. Missing settings take their defaults.
func NewGemini(cfg GeminiConfig) *Gemini {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Backoff.InitialInterval <= 0 {
		cfg.Backoff = BackoffConfig{MaxRetries: 2, InitialInterval: 500 * time.Millisecond, MaxInterval: 4 * time.Second}
	}

	return &Gemini{
		cfg: cfg,
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "gemini",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     2 * time.Minute,
			// Client errors say nothing about the health of the service.
			IsSuccessful: func(err error) bool {
				var perm backoffPermanent
				return err == nil || errors.As(err, &perm)
			},
		}),
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Prompt renders the prompt sent for req.
func Prompt(req Request) string {
	return fmt.Sprintf(`%s

Solar Output Prediction:
- Predicted Efficiency: %.1f%%
- Confidence Interval: %.1f%% - %.1f%%
- Temperature: %.1f°C
- Cloud Cover: %.1f%%
- Humidity: %.1f%%
- Time of Day: %d:00

Based on this data, provide one witty, actionable recommendation for a homeowner.`,
		systemPrompt, req.Efficiency, req.ConfidenceLower, req.ConfidenceUpper,
		req.Temperature, req.CloudCover, req.Humidity, req.HourOfDay)
}

// Advise asks the model for one sentence of advice.
func (g *Gemini) Advise(ctx context.Context, req Request) (string, error) {
	if g.cfg.APIKey == "" {
		return "", errNoAPIKey
	}

	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: Prompt(req)}}}},
		GenerationConfig: generationConfig{Temperature: 0.9, TopP: 0.95, MaxOutputTokens: 100},
	})
	if err != nil {
		return "", wwErrors.Wrap(err, "encode gemini request")
	}

	u := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(g.cfg.Endpoint, "/"), g.cfg.Model)

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	payload, err := g.doWithResilience(ctx, func() (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Content-Type", "application/json")
		r.Header.Set(apiKeyHeader, g.cfg.APIKey)
		return r, nil
	})
	if err != nil {
		return "", err
	}

	var resp generateResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return "", wwErrors.Wrap(err, "decode gemini response")
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errEmptyResponse
	}
	return StripQuotes(resp.Candidates[0].Content.Parts[0].Text), nil
}

// doWithResilience runs the request through the circuit breaker, retrying
// rate limits, server errors and transport failures with exponential
// backoff. It returns the response body of the first 2xx answer.
func (g *Gemini) doWithResilience(ctx context.Context, build func() (*http.Request, error)) ([]byte, error) {
	var attempt int
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		req, err := build()
		if err != nil {
			return nil, err
		}

		result, err := g.circuit.Execute(func() (interface{}, error) {
			resp, err := g.cfg.Client.Do(req)
			if err != nil {
				return nil, err
			}
			defer func() { _ = resp.Body.Close() }()

			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				return nil, errRateLimited
			case resp.StatusCode >= 500:
				return nil, errServerError
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				return nil, backoffPermanent{fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)}
			}
			return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		})
		if err == nil {
			return result.([]byte), nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		var perm backoffPermanent
		if errors.As(err, &perm) || attempt >= g.cfg.Backoff.MaxRetries {
			return nil, err
		}

		delay := g.cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if g.cfg.Backoff.MaxInterval > 0 && delay > g.cfg.Backoff.MaxInterval {
			delay = g.cfg.Backoff.MaxInterval
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		attempt++
	}
}

// backoffPermanent marks an error that retrying cannot fix.
type backoffPermanent struct{ err error }

func (e backoffPermanent) Error() string { return e.err.Error() }
func (e backoffPermanent) Unwrap() error { return e.err }

// StripQuotes trims whitespace and one pair of surrounding double quotes.
func StripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = s[1 : len(s)-1]
	}
	return s
}

var _ Service = (*Gemini)(nil)
