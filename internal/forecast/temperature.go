package forecast

import (
	"fmt"
	"strings"
)

// Unit is a temperature measurement unit.
type Unit string

const (
	Celsius    Unit = "celsius"
	Fahrenheit Unit = "fahrenheit"
)

// ParseUnit normalizes a unit string.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(Celsius):
		return Celsius, nil
	case string(Fahrenheit):
		return Fahrenheit, nil
	default:
		return "", fmt.Errorf("unknown temperature unit %q", s)
	}
}

// Symbol returns the display suffix for the unit.
func (u Unit) Symbol() string {
	if u == Fahrenheit {
		return "°F"
	}
	return "°C"
}

// ConvertTemperature converts between Celsius and Fahrenheit. Equal units are
// an identity.
func ConvertTemperature(v float64, from, to Unit) float64 {
	if from == to {
		return v
	}
	switch {
	case from == Celsius && to == Fahrenheit:
		return v*9/5 + 32
	case from == Fahrenheit && to == Celsius:
		return (v - 32) * 5 / 9
	default:
		return v
	}
}
