package model

// TimeOfDay classifies a condition by the icon variant it should use.
type TimeOfDay string

const (
	Day     TimeOfDay = "day"
	Night   TimeOfDay = "night"
	General TimeOfDay = "general"
)

// TimeOfDayFromIcon derives the time-of-day tag from a provider icon code
// such as "01d" or "10n". Anything without a recognized suffix is general.
func TimeOfDayFromIcon(icon string) TimeOfDay {
	if icon == "" {
		return General
	}
	switch icon[len(icon)-1] {
	case 'd':
		return Day
	case 'n':
		return Night
	}
	return General
}

// CurrentConditions holds one snapshot of the current weather. Numeric
// fields stay at -1 until a fetch populates the whole record; an instance
// is replaced wholesale, never field by field.
type CurrentConditions struct {
	ConditionID    int       `json:"condition_id"`
	ConditionText  string    `json:"condition_text"`
	ConditionTime  TimeOfDay `json:"condition_time"`
	Humidity       int       `json:"humidity"`
	Temp           float64   `json:"temp"`
	TimezoneOffset int       `json:"timezone_offset"`
	WindSpeed      float64   `json:"wind_speed"`
	WindDeg        int       `json:"wind_deg"`
	HourlyPrecip   float64   `json:"hourly_precip"`
}

// NewCurrentConditions returns a record with all sentinels set.
func NewCurrentConditions() CurrentConditions {
	return CurrentConditions{
		ConditionID:    -1,
		ConditionText:  "N/A",
		ConditionTime:  General,
		Humidity:       -1,
		Temp:           -1,
		TimezoneOffset: -1,
		WindSpeed:      -1,
		WindDeg:        -1,
		HourlyPrecip:   0,
	}
}

// ForecastEntry is one forecast window. PrecipChance is a 0-100 percentage
// and Timestamp marks the window start as a Unix timestamp.
type ForecastEntry struct {
	ConditionID   int       `json:"condition_id"`
	ConditionText string    `json:"condition_text"`
	ConditionTime TimeOfDay `json:"condition_time"`
	Humidity      int       `json:"humidity"`
	Temp          float64   `json:"temp"`
	PrecipChance  float64   `json:"precip_chance"`
	Timestamp     int64     `json:"timestamp"`
}

// NewForecastEntry returns an entry with all sentinels set.
func NewForecastEntry() ForecastEntry {
	return ForecastEntry{
		ConditionID:   -1,
		ConditionText: "N/A",
		ConditionTime: General,
		Humidity:      -1,
		Temp:          -1,
		PrecipChance:  -1,
		Timestamp:     -1,
	}
}
