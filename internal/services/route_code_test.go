package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRouteCode(t *testing.T) {
	tests := []struct {
		name          string
		departureTime string
		departureCode string
		arrivalCode   string
		busType       string
		totalSeats    int
		expected      string
	}{
		{
			name:          "sleeper morning departure",
			departureTime: "08:30",
			departureCode: "ABC",
			arrivalCode:   "XYZ",
			busType:       "Sleeper",
			totalSeats:    40,
			expected:      "0830ABCXYZSLE40",
		},
		{
			name:          "seater overnight departure",
			departureTime: "23:45",
			departureCode: "HYD",
			arrivalCode:   "VIZ",
			busType:       "Seater",
			totalSeats:    52,
			expected:      "2345HYDVIZSEA52",
		},
		{
			name:          "missing departure time falls back to 0000",
			departureTime: "",
			departureCode: "HYD",
			arrivalCode:   "VIZ",
			busType:       "Sleeper",
			totalSeats:    36,
			expected:      "0000HYDVIZSLE36",
		},
		{
			name:          "unknown stands use XXX placeholders",
			departureTime: "06:00",
			departureCode: "XXX",
			arrivalCode:   "XXX",
			busType:       "Seater",
			totalSeats:    48,
			expected:      "0600XXXXXXSEA48",
		},
		{
			name:          "short bus type kept whole",
			departureTime: "10:15",
			departureCode: "BLR",
			arrivalCode:   "MAA",
			busType:       "AC",
			totalSeats:    30,
			expected:      "1015BLRMAAAC30",
		},
		{
			name:          "multibyte type is cut on rune boundaries",
			departureTime: "07:00",
			departureCode: "HYD",
			arrivalCode:   "VIZ",
			busType:       "సూపర్ లగ్జరీ",
			totalSeats:    44,
			expected:      "0700HYDVIZసూప44",
		},
		{
			name:          "lowercase type is uppercased",
			departureTime: "10:15",
			departureCode: "BLR",
			arrivalCode:   "MAA",
			busType:       "sleeper",
			totalSeats:    30,
			expected:      "1015BLRMAASLE30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := GenerateRouteCode(tt.departureTime, tt.departureCode, tt.arrivalCode, tt.busType, tt.totalSeats)
			assert.Equal(t, tt.expected, code)
		})
	}
}

func TestGenerateRouteCode_Deterministic(t *testing.T) {
	first := GenerateRouteCode("08:30", "ABC", "XYZ", "Sleeper", 40)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, GenerateRouteCode("08:30", "ABC", "XYZ", "Sleeper", 40))
	}
}
