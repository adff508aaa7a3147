package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnit(t *testing.T) {
	u, err := ParseUnit("")
	require.NoError(t, err)
	assert.Equal(t, Celsius, u)

	u, err = ParseUnit(" Fahrenheit ")
	require.NoError(t, err)
	assert.Equal(t, Fahrenheit, u)

	_, err = ParseUnit("kelvin")
	assert.Error(t, err)
}

func TestConvertTemperature(t *testing.T) {
	assert.Equal(t, 32.0, ConvertTemperature(0, Celsius, Fahrenheit))
	assert.Equal(t, 212.0, ConvertTemperature(100, Celsius, Fahrenheit))
	assert.Equal(t, 0.0, ConvertTemperature(32, Fahrenheit, Celsius))
	assert.InDelta(t, 37.0, ConvertTemperature(98.6, Fahrenheit, Celsius), 1e-9)

	// Identity when units match.
	assert.Equal(t, 21.5, ConvertTemperature(21.5, Celsius, Celsius))
	assert.Equal(t, 70.0, ConvertTemperature(70, Fahrenheit, Fahrenheit))
}
