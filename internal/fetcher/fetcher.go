package fetcher

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"weather-panel/internal/model"
)

// Fetcher polls the weather provider and owns the latest combined
// (current conditions, forecast) snapshot. UpdateData is safe to call on
// every display tick; overlapping ticks are serialized.
type Fetcher struct {
	weatherURL   string
	forecastURL  string
	probeURL     string
	pollInterval time.Duration
	client       *http.Client
	limiter      *rate.Limiter

	updateMu sync.Mutex // serializes update cycles

	mu             sync.RWMutex
	current        model.CurrentConditions
	forecast       []model.ForecastEntry
	lastUpdate     time.Time
	lastAttempt    time.Time
	lastFetch      time.Time
	internetActive bool
}

type FetcherConfig struct {
	WeatherURL   string
	ForecastURL  string
	ProbeURL     string
	PollInterval time.Duration
	Timeout      time.Duration
}

func NewFetcher(cfg FetcherConfig) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		weatherURL:   cfg.WeatherURL,
		forecastURL:  cfg.ForecastURL,
		probeURL:     cfg.ProbeURL,
		pollInterval: cfg.PollInterval,
		client: &http.Client{
			Timeout: timeout,
		},
		// Courtesy limit on provider calls; one cycle issues two requests.
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 2),
		current: model.NewCurrentConditions(),
	}
}

// ExpandURL interpolates the {latitude}, {longitude}, {key} and {units}
// placeholders of a configured URL template.
func ExpandURL(template string, latitude, longitude float64, key, units string) string {
	return strings.NewReplacer(
		"{latitude}", fmt.Sprintf("%v", latitude),
		"{longitude}", fmt.Sprintf("%v", longitude),
		"{key}", key,
		"{units}", units,
	).Replace(template)
}

// UpdateData runs one refresh cycle: reachability probe, poll-interval
// gate, then a concurrent current+forecast fetch whose results commit
// together or not at all. All failures are logged and leave the previous
// snapshot untouched.
func (f *Fetcher) UpdateData(ctx context.Context) {
	f.updateMu.Lock()
	defer f.updateMu.Unlock()

	now := time.Now()
	reachable := f.probe(ctx)

	f.mu.Lock()
	f.lastAttempt = now
	f.internetActive = reachable
	f.mu.Unlock()

	if !reachable {
		return
	}

	f.mu.RLock()
	due := now.After(f.lastFetch.Add(f.pollInterval))
	f.mu.RUnlock()
	if !due {
		return
	}

	f.mu.Lock()
	f.lastFetch = now
	f.mu.Unlock()

	// The two documents are independent network calls; fetch them
	// concurrently and join before touching any state.
	var (
		wg       sync.WaitGroup
		current  *model.CurrentConditions
		forecast []model.ForecastEntry
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		body, err := f.fetch(ctx, f.weatherURL)
		if err != nil {
			log.Printf("Error fetching current weather: %v", err)
			return
		}
		parsed, err := parseCurrent(body)
		if err != nil {
			log.Printf("Error parsing current weather: %v", err)
			return
		}
		current = &parsed
	}()
	go func() {
		defer wg.Done()
		body, err := f.fetch(ctx, f.forecastURL)
		if err != nil {
			log.Printf("Error fetching forecast: %v", err)
			return
		}
		parsed, err := parseForecasts(body)
		if err != nil {
			log.Printf("Error parsing forecast: %v", err)
			return
		}
		forecast = parsed
	}()
	wg.Wait()

	// Commit only the combined result. A partial cycle keeps the previous
	// conditions, forecast, and last-update timestamp.
	if current == nil || forecast == nil {
		return
	}

	f.mu.Lock()
	f.current = *current
	f.forecast = forecast
	f.lastUpdate = time.Now()
	f.mu.Unlock()
	log.Println("Weather data updated.")
}

// probe checks internet reachability with a lightweight request to a
// well-known host. Any completed response counts as reachable.
func (f *Fetcher) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.probeURL, nil)
	if err != nil {
		log.Printf("Error building probe request: %v", err)
		return false
	}
	resp, err := f.client.Do(req)
	if err != nil {
		log.Printf("Error fetching internet status: %v", err)
		return false
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		log.Printf("Error fetching internet status: %s", resp.Status)
		return false
	}
	return true
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}
	return readBody(resp)
}

// Current returns the latest committed conditions. The bool is false until
// the first successful combined update.
func (f *Fetcher) Current() (model.CurrentConditions, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current, !f.lastUpdate.IsZero()
}

// Forecast returns a copy of the latest committed forecast sequence,
// earliest entry first.
func (f *Fetcher) Forecast() []model.ForecastEntry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]model.ForecastEntry, len(f.forecast))
	copy(out, f.forecast)
	return out
}

// LastUpdate returns the time of the last successful combined commit, zero
// if none has happened yet.
func (f *Fetcher) LastUpdate() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lastUpdate
}

// LastAttempt returns the time of the last UpdateData cycle.
func (f *Fetcher) LastAttempt() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lastAttempt
}

// InternetActive reports the result of the most recent reachability probe.
func (f *Fetcher) InternetActive() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.internetActive
}
