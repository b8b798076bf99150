package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertTo(t *testing.T) {
	tests := []struct {
		name string
		from LinearUnit
		to   LinearUnit
		v    float64
		want float64
	}{
		{"mile to feet", Miles, Feet, 1, 5280},
		{"mile to meters", Miles, Meters, 1, 1609.344},
		{"kilometer to meters", Kilometers, Meters, 1, 1000},
		{"meters to kilometers", Meters, Kilometers, 2500, 2.5},
		{"feet to meters", Feet, Meters, 10, 3.048},
		{"same unit", Feet, Feet, 42, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.from.ConvertTo(tt.to, tt.v), 1e-9)
		})
	}
}

func TestConvertRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 0.3, 1, 450, 2000, 123456.789} {
		km := Meters.ConvertTo(Kilometers, v)
		assert.InDelta(t, v, Kilometers.ConvertTo(Meters, km), 1e-9)

		d := Distance{Value: v, Unit: Feet}
		assert.InDelta(t, v, d.In(Miles).In(Feet).Value, 1e-9)
	}
}

func TestSelectLinearUnit(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		base     LinearUnit
		sys      System
		th       Thresholds
		want     LinearUnit
	}{
		{"metric below threshold", 999, Meters, Metric, Thresholds{}, Meters},
		{"metric at threshold", 1000, Meters, Metric, Thresholds{}, Kilometers},
		{"imperial below threshold", 5000, Feet, Imperial, Thresholds{}, Feet},
		{"imperial at threshold", 5280, Feet, Imperial, Thresholds{}, Miles},
		{"imperial from meters", 2000, Meters, Imperial, Thresholds{}, Miles},
		{"custom metric threshold", 5000, Meters, Metric, Thresholds{Meters: 10000}, Meters},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectLinearUnit(tt.distance, tt.base, tt.sys, tt.th))
		})
	}
}

func TestParse(t *testing.T) {
	sys, err := ParseSystem(" Imperial ")
	require.NoError(t, err)
	assert.Equal(t, Imperial, sys)
	assert.Equal(t, Feet, sys.BaseUnit())

	_, err = ParseSystem("nautical")
	assert.Error(t, err)

	u, err := ParseLinearUnit("Kilometres")
	require.NoError(t, err)
	assert.Equal(t, Kilometers, u)
	assert.Equal(t, Metric, u.System())

	_, err = ParseLinearUnit("furlong")
	assert.Error(t, err)
}

func TestDistanceString(t *testing.T) {
	assert.Equal(t, "2 km", Distance{Value: 2, Unit: Kilometers}.String())
	assert.InDelta(t, 3218.688, Distance{Value: 2, Unit: Miles}.Meters(), 1e-9)
}
