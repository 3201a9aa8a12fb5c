package fetcher

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"weather-panel/internal/model"
)

// Provider payload shapes. Required blocks are pointers so a missing field
// is distinguishable from a zero value and fails the parse for that
// document instead of committing garbage.

type conditionBlock struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type mainBlock struct {
	Humidity int     `json:"humidity"`
	Temp     float64 `json:"temp"`
}

type windBlock struct {
	Deg   float64 `json:"deg"`
	Speed float64 `json:"speed"`
}

type precipBlock struct {
	OneHour float64 `json:"1h"`
}

type currentPayload struct {
	Weather  []conditionBlock `json:"weather"`
	Main     *mainBlock       `json:"main"`
	Timezone *int             `json:"timezone"`
	Wind     *windBlock       `json:"wind"`
	Rain     *precipBlock     `json:"rain"`
	Snow     *precipBlock     `json:"snow"`
}

type forecastItem struct {
	Weather []conditionBlock `json:"weather"`
	Main    *mainBlock       `json:"main"`
	Pop     float64          `json:"pop"`
	Dt      *int64           `json:"dt"`
}

type forecastPayload struct {
	List []forecastItem `json:"list"`
}

func readBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

func parseCurrent(body []byte) (model.CurrentConditions, error) {
	weather := model.NewCurrentConditions()

	var payload currentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather, fmt.Errorf("decoding current weather: %w", err)
	}
	if len(payload.Weather) == 0 || payload.Main == nil || payload.Wind == nil || payload.Timezone == nil {
		return weather, fmt.Errorf("current weather document is missing required fields")
	}

	weather.ConditionID = payload.Weather[0].ID
	weather.ConditionText = payload.Weather[0].Description
	weather.ConditionTime = model.TimeOfDayFromIcon(payload.Weather[0].Icon)
	weather.Humidity = payload.Main.Humidity
	weather.Temp = payload.Main.Temp
	weather.TimezoneOffset = *payload.Timezone
	weather.WindDeg = int(payload.Wind.Deg)
	weather.WindSpeed = payload.Wind.Speed

	// Rain and snow volumes are not mutually exclusive; sum whatever the
	// provider reports.
	weather.HourlyPrecip = 0
	if payload.Rain != nil {
		weather.HourlyPrecip += payload.Rain.OneHour
	}
	if payload.Snow != nil {
		weather.HourlyPrecip += payload.Snow.OneHour
	}
	return weather, nil
}

func parseForecasts(body []byte) ([]model.ForecastEntry, error) {
	var payload forecastPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding forecast: %w", err)
	}
	if len(payload.List) == 0 {
		return nil, fmt.Errorf("forecast document contains no entries")
	}

	forecasts := make([]model.ForecastEntry, 0, len(payload.List))
	for i, item := range payload.List {
		if len(item.Weather) == 0 || item.Main == nil || item.Dt == nil {
			return nil, fmt.Errorf("forecast entry %d is missing required fields", i)
		}
		entry := model.NewForecastEntry()
		entry.ConditionID = item.Weather[0].ID
		entry.ConditionText = item.Weather[0].Description
		entry.ConditionTime = model.TimeOfDayFromIcon(item.Weather[0].Icon)
		entry.Humidity = item.Main.Humidity
		entry.Temp = item.Main.Temp
		// The provider reports a 0-1 fraction; scale once here so the
		// percentage formatter stays a plain integer renderer.
		entry.PrecipChance = item.Pop * 100
		entry.Timestamp = *item.Dt
		forecasts = append(forecasts, entry)
	}
	return forecasts, nil
}
