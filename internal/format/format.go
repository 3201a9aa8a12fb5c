package format

import (
	"fmt"
	"math"
	"time"

	"github.com/lestrrat-go/strftime"

	"weather-panel/internal/model"
)

const mmToInches = 0.0393700787

// The 16-point compass rose, clockwise from north.
var directions = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// Formatter renders weather values as display strings for a fixed unit
// system. It is stateless after construction and safe for concurrent use.
type Formatter struct {
	units      string
	tempUnit   string
	windUnit   string
	dateFormat *strftime.Strftime
	timeFormat *strftime.Strftime
}

// New builds a Formatter for the given unit system ("metric" or "imperial")
// and strftime-style date and time patterns. Bad patterns are a
// configuration error.
func New(units, dateFormat, timeFormat string) (*Formatter, error) {
	df, err := strftime.New(dateFormat)
	if err != nil {
		return nil, fmt.Errorf("invalid date format %q: %w", dateFormat, err)
	}
	tf, err := strftime.New(timeFormat)
	if err != nil {
		return nil, fmt.Errorf("invalid time format %q: %w", timeFormat, err)
	}

	f := &Formatter{
		units:      units,
		tempUnit:   "°K",
		windUnit:   "m/s",
		dateFormat: df,
		timeFormat: tf,
	}
	switch units {
	case "metric":
		f.tempUnit = "°C"
	case "imperial":
		f.tempUnit = "°F"
		f.windUnit = "mph"
	}
	return f, nil
}

// Temp renders a temperature as an integer with the unit suffix.
func (f *Formatter) Temp(temp float64) string {
	return fmt.Sprintf("%d %s", int(temp), f.tempUnit)
}

// WindSpeed renders a wind speed plus the nearest of the 16 compass points
// for the given bearing in degrees. Negative bearings wrap the same way
// positive ones do.
func (f *Formatter) WindSpeed(speed float64, degree int) string {
	index := int(math.Round(float64(degree) / (360.0 / float64(len(directions)))))
	index = ((index % len(directions)) + len(directions)) % len(directions)
	return fmt.Sprintf("%d %s %s", int(speed), f.windUnit, directions[index])
}

// Percentage renders a value as an integer percent.
func (f *Formatter) Percentage(value float64) string {
	return fmt.Sprintf("%d%%", int(value))
}

// Precip renders an hourly precipitation volume given in millimeters.
// Imperial output converts to inches with two decimal places.
func (f *Formatter) Precip(mm float64) string {
	if f.units == "imperial" {
		return fmt.Sprintf("%0.2f in/h", mm*mmToInches)
	}
	return fmt.Sprintf("%d mm/h", int(mm))
}

// DateTime renders a Unix timestamp with the date+time pattern in the local
// time zone.
func (f *Formatter) DateTime(timestamp int64) string {
	return f.dateFormat.FormatString(time.Unix(timestamp, 0))
}

// Time renders a Unix timestamp with the time-only pattern in the local
// time zone.
func (f *Formatter) Time(timestamp int64) string {
	return f.timeFormat.FormatString(time.Unix(timestamp, 0))
}

// DescribeCurrent renders a multi-line console summary of the current
// conditions.
func (f *Formatter) DescribeCurrent(w model.CurrentConditions) string {
	return "Temp: " + f.Temp(w.Temp) + "\n" +
		"Humidity: " + f.Percentage(float64(w.Humidity)) + "\n" +
		"Precip: " + f.Precip(w.HourlyPrecip) + "\n" +
		"Wind: " + f.WindSpeed(w.WindSpeed, w.WindDeg)
}

// DescribeForecast renders a short multi-line console summary of one
// forecast entry.
func (f *Formatter) DescribeForecast(e model.ForecastEntry) string {
	return "T: " + f.Temp(e.Temp) + "\n" +
		"H: " + f.Percentage(float64(e.Humidity)) + "\n" +
		"P: " + f.Percentage(e.PrecipChance)
}
