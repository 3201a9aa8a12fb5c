package display

import (
	"fmt"
	"io"

	"weather-panel/internal/fetcher"
	"weather-panel/internal/format"
	"weather-panel/internal/icons"
)

// Console renders the fetcher state as a text dump. It is the only
// presentation this process carries; anything richer consumes the same
// read accessors from outside.
type Console struct {
	fetcher   *fetcher.Fetcher
	icons     *icons.Resolver
	formatter *format.Formatter
	forecasts int
	out       io.Writer
}

func NewConsole(f *fetcher.Fetcher, resolver *icons.Resolver, formatter *format.Formatter, forecasts int, out io.Writer) *Console {
	if forecasts <= 0 {
		forecasts = 4
	}
	return &Console{
		fetcher:   f,
		icons:     resolver,
		formatter: formatter,
		forecasts: forecasts,
		out:       out,
	}
}

// Print writes the current conditions and forecast prefix to the console.
func (c *Console) Print() {
	status := "DOWN"
	if c.fetcher.InternetActive() {
		status = "OK"
	}
	fmt.Fprintf(c.out, "Internet Status: %s\n", status)

	weather, ok := c.fetcher.Current()
	if !ok {
		fmt.Fprintln(c.out, "Unable to fetch weather data.")
		return
	}

	fmt.Fprintf(c.out, "Last weather update: %s\n", c.formatter.DateTime(c.fetcher.LastUpdate().Unix()))
	fmt.Fprintln(c.out, "------Current Conditions------")
	fmt.Fprintln(c.out, c.formatter.DescribeCurrent(weather))
	fmt.Fprintf(c.out, "Condition: %s\n", weather.ConditionText)
	fmt.Fprintf(c.out, "Icon: %s\n", c.icons.Resolve(weather.ConditionID, weather.ConditionTime))
	fmt.Fprintln(c.out, "------Forecast---------")

	forecasts := c.fetcher.Forecast()
	if len(forecasts) > c.forecasts {
		forecasts = forecasts[:c.forecasts]
	}
	for _, entry := range forecasts {
		// Forecast headers are shifted by the location's timezone offset,
		// the way the provider labels its windows.
		fmt.Fprintf(c.out, "------ %s:-------\n", c.formatter.DateTime(entry.Timestamp+int64(weather.TimezoneOffset)))
		fmt.Fprintln(c.out, c.formatter.DescribeForecast(entry))
		fmt.Fprintf(c.out, "C: %s\n", entry.ConditionText)
	}
}
