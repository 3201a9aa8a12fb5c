package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeOfDayFromIcon(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(Day, TimeOfDayFromIcon("01d"))
	assert.Equal(Night, TimeOfDayFromIcon("10n"))
	assert.Equal(General, TimeOfDayFromIcon("13x"))
	assert.Equal(General, TimeOfDayFromIcon(""))
}

func TestSentinelDefaults(t *testing.T) {
	assert := assert.New(t)

	weather := NewCurrentConditions()
	assert.Equal(-1, weather.ConditionID)
	assert.Equal("N/A", weather.ConditionText)
	assert.Equal(General, weather.ConditionTime)
	assert.Equal(-1, weather.Humidity)
	assert.Equal(float64(0), weather.HourlyPrecip)

	entry := NewForecastEntry()
	assert.Equal(-1, entry.ConditionID)
	assert.Equal(int64(-1), entry.Timestamp)
}
