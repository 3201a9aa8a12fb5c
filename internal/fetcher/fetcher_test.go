package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-panel/internal/model"
)

const currentBody = `{
	"weather": [{"id": 800, "description": "clear sky", "icon": "01d"}],
	"main": {"humidity": 64, "temp": 21.5},
	"timezone": 3600,
	"wind": {"deg": 180, "speed": 7.2},
	"rain": {"1h": 2.0},
	"snow": {"1h": 1.5}
}`

const forecastBody = `{
	"list": [
		{"weather": [{"id": 500, "description": "light rain", "icon": "10n"}],
		 "main": {"humidity": 80, "temp": 15.0}, "pop": 0.35, "dt": 1700000000},
		{"weather": [{"id": 800, "description": "clear sky", "icon": "01d"}],
		 "main": {"humidity": 60, "temp": 18.0}, "pop": 0, "dt": 1700010800}
	]
}`

// testProvider stands in for the probe host and both weather endpoints.
type testProvider struct {
	server        *httptest.Server
	probeCount    atomic.Int64
	currentCount  atomic.Int64
	forecastCount atomic.Int64
	failCurrent   atomic.Bool
	failForecast  atomic.Bool
	failProbe     atomic.Bool
	probeCode     atomic.Int64
}

func newTestProvider(t *testing.T) *testProvider {
	t.Helper()
	p := &testProvider{}
	mux := http.NewServeMux()
	mux.HandleFunc("/probe", func(w http.ResponseWriter, r *http.Request) {
		p.probeCount.Add(1)
		if p.failProbe.Load() {
			// Hijack and drop the connection so the client sees an error.
			conn, _, err := w.(http.Hijacker).Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		code := int(p.probeCode.Load())
		if code == 0 {
			code = http.StatusOK
		}
		w.WriteHeader(code)
	})
	mux.HandleFunc("/weather", func(w http.ResponseWriter, r *http.Request) {
		p.currentCount.Add(1)
		if p.failCurrent.Load() {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(currentBody))
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		p.forecastCount.Add(1)
		if p.failForecast.Load() {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(forecastBody))
	})
	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

func (p *testProvider) fetcher(pollInterval time.Duration) *Fetcher {
	return NewFetcher(FetcherConfig{
		WeatherURL:   p.server.URL + "/weather",
		ForecastURL:  p.server.URL + "/forecast",
		ProbeURL:     p.server.URL + "/probe",
		PollInterval: pollInterval,
		Timeout:      2 * time.Second,
	})
}

func TestUpdateDataCommitsCombinedResult(t *testing.T) {
	assert := assert.New(t)
	provider := newTestProvider(t)
	f := provider.fetcher(0)

	f.UpdateData(context.Background())

	assert.True(f.InternetActive())
	assert.False(f.LastUpdate().IsZero())

	weather, ok := f.Current()
	assert.True(ok)
	assert.Equal(800, weather.ConditionID)
	assert.Equal("clear sky", weather.ConditionText)
	assert.Equal(model.Day, weather.ConditionTime)
	assert.Equal(64, weather.Humidity)
	assert.Equal(21.5, weather.Temp)
	assert.Equal(3600, weather.TimezoneOffset)
	assert.Equal(180, weather.WindDeg)
	assert.Equal(7.2, weather.WindSpeed)
	// Rain and snow volumes are summed, not mutually exclusive.
	assert.Equal(3.5, weather.HourlyPrecip)

	forecast := f.Forecast()
	assert.Len(forecast, 2)
	assert.Equal(500, forecast[0].ConditionID)
	assert.Equal(model.Night, forecast[0].ConditionTime)
	assert.Equal(float64(35), forecast[0].PrecipChance)
	assert.Equal(int64(1700000000), forecast[0].Timestamp)
	// Insertion order is chronological, earliest first.
	assert.Less(forecast[0].Timestamp, forecast[1].Timestamp)
}

func TestUpdateDataPartialFailureIsDiscarded(t *testing.T) {
	assert := assert.New(t)
	provider := newTestProvider(t)
	f := provider.fetcher(0)

	f.UpdateData(context.Background())
	before, ok := f.Current()
	assert.True(ok)
	beforeForecast := f.Forecast()
	beforeUpdate := f.LastUpdate()

	// Forecast fails: the whole cycle is discarded, current included.
	provider.failForecast.Store(true)
	f.UpdateData(context.Background())

	after, ok := f.Current()
	assert.True(ok)
	assert.Equal(before, after)
	assert.Equal(beforeForecast, f.Forecast())
	assert.Equal(beforeUpdate, f.LastUpdate())

	// And the mirror image: current fails, forecast succeeds.
	provider.failForecast.Store(false)
	provider.failCurrent.Store(true)
	f.UpdateData(context.Background())

	assert.Equal(beforeUpdate, f.LastUpdate())
	assert.Equal(beforeForecast, f.Forecast())
}

func TestUpdateDataPollIntervalGating(t *testing.T) {
	assert := assert.New(t)
	provider := newTestProvider(t)
	f := provider.fetcher(time.Hour)

	f.UpdateData(context.Background())
	f.UpdateData(context.Background())

	// Both ticks probe, but only the first performs a fetch pair.
	assert.Equal(int64(2), provider.probeCount.Load())
	assert.Equal(int64(1), provider.currentCount.Load())
	assert.Equal(int64(1), provider.forecastCount.Load())
}

func TestUpdateDataProbeFailureSkipsFetch(t *testing.T) {
	assert := assert.New(t)
	provider := newTestProvider(t)
	provider.failProbe.Store(true)
	f := provider.fetcher(0)

	f.UpdateData(context.Background())

	assert.False(f.InternetActive())
	assert.False(f.LastAttempt().IsZero())
	assert.True(f.LastUpdate().IsZero())
	assert.Equal(int64(0), provider.currentCount.Load())
	assert.Equal(int64(0), provider.forecastCount.Load())

	_, ok := f.Current()
	assert.False(ok)

	// Probe recovery on a later tick resumes fetching, stale state intact
	// until the commit lands.
	provider.failProbe.Store(false)
	f.UpdateData(context.Background())
	assert.True(f.InternetActive())
	assert.False(f.LastUpdate().IsZero())
}

func TestUpdateDataProbeErrorStatusIsDown(t *testing.T) {
	assert := assert.New(t)
	provider := newTestProvider(t)
	provider.probeCode.Store(http.StatusServiceUnavailable)
	f := provider.fetcher(0)

	f.UpdateData(context.Background())

	// An error status from the probe host means the connection is not
	// usable, same as a transport failure.
	assert.False(f.InternetActive())
	assert.Equal(int64(0), provider.currentCount.Load())
	assert.Equal(int64(0), provider.forecastCount.Load())
}

func TestUpdateDataOverlappingTicksSerialize(t *testing.T) {
	assert := assert.New(t)

	// Each fetch pair is version-stamped through the temperature; a
	// committed snapshot must carry a matched pair.
	const currentTemplate = `{
		"weather": [{"id": 800, "description": "clear sky", "icon": "01d"}],
		"main": {"humidity": 64, "temp": %d},
		"timezone": 0,
		"wind": {"deg": 180, "speed": 7}
	}`
	const forecastTemplate = `{
		"list": [{"weather": [{"id": 800, "description": "clear sky", "icon": "01d"}],
			"main": {"humidity": 60, "temp": %d}, "pop": 0, "dt": 1700000000}]
	}`

	var currentCount, forecastCount atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/probe", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/weather", func(w http.ResponseWriter, r *http.Request) {
		n := currentCount.Add(1)
		time.Sleep(50 * time.Millisecond)
		fmt.Fprintf(w, currentTemplate, n)
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		n := forecastCount.Add(1)
		time.Sleep(50 * time.Millisecond)
		fmt.Fprintf(w, forecastTemplate, n)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	f := NewFetcher(FetcherConfig{
		WeatherURL:   server.URL + "/weather",
		ForecastURL:  server.URL + "/forecast",
		ProbeURL:     server.URL + "/probe",
		PollInterval: 0,
		Timeout:      2 * time.Second,
	})

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.UpdateData(context.Background())
		}()
	}
	wg.Wait()

	// Serialized cycles run back to back, each with its own fetch pair.
	assert.Equal(int64(2), currentCount.Load())
	assert.Equal(int64(2), forecastCount.Load())

	weather, ok := f.Current()
	assert.True(ok)
	forecast := f.Forecast()
	assert.Len(forecast, 1)
	// Interleaved partial writes would mix versions across documents.
	assert.Equal(weather.Temp, forecast[0].Temp)
}

func TestParseCurrentRejectsMissingFields(t *testing.T) {
	assert := assert.New(t)

	cases := []string{
		`{"weather": [], "main": {"humidity": 1, "temp": 1}, "timezone": 0, "wind": {"deg": 0, "speed": 0}}`,
		`{"weather": [{"id": 800, "description": "x", "icon": "01d"}], "timezone": 0, "wind": {"deg": 0, "speed": 0}}`,
		`{"weather": [{"id": 800, "description": "x", "icon": "01d"}], "main": {"humidity": 1, "temp": 1}, "wind": {"deg": 0, "speed": 0}}`,
		`{"weather": [{"id": 800, "description": "x", "icon": "01d"}], "main": {"humidity": 1, "temp": 1}, "timezone": 0}`,
		`not json`,
	}
	for i, body := range cases {
		_, err := parseCurrent([]byte(body))
		assert.Error(err, "case %d", i)
	}
}

func TestParseCurrentPrecipDefaultsToZero(t *testing.T) {
	assert := assert.New(t)

	body := `{"weather": [{"id": 800, "description": "clear", "icon": "01n"}],
		"main": {"humidity": 50, "temp": 10}, "timezone": 0,
		"wind": {"deg": 90, "speed": 3}}`
	weather, err := parseCurrent([]byte(body))
	assert.NoError(err)
	assert.Equal(float64(0), weather.HourlyPrecip)
	assert.Equal(model.Night, weather.ConditionTime)
}

func TestParseForecastsRejectsBadDocuments(t *testing.T) {
	assert := assert.New(t)

	cases := []string{
		`{"list": []}`,
		`{"list": [{"weather": [], "main": {"humidity": 1, "temp": 1}, "dt": 1}]}`,
		`{"list": [{"weather": [{"id": 1, "description": "x", "icon": "01d"}], "main": {"humidity": 1, "temp": 1}}]}`,
		`not json`,
	}
	for i, body := range cases {
		_, err := parseForecasts([]byte(body))
		assert.Error(err, "case %d", i)
	}
}

func TestExpandURL(t *testing.T) {
	assert := assert.New(t)

	url := ExpandURL("https://api.example.com/weather?lat={latitude}&lon={longitude}&appid={key}&units={units}",
		60.17, 24.94, "secret", "metric")
	assert.Equal("https://api.example.com/weather?lat=60.17&lon=24.94&appid=secret&units=metric", url)
}
