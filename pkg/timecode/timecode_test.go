package timecode

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinutes(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		ok       bool
	}{
		{"00:00", 0, true},
		{"08:30", 510, true},
		{"23:59", 1439, true},
		{"12:00", 720, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"-1:30", 0, false},
		{"", 0, false},
		{"0830", 0, false},
		{"8:3a", 0, false},
		{"::", 0, false},
		{"08:30:00", 0, false},
		{"ab:cd", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ToMinutes(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestToText(t *testing.T) {
	assert.Equal(t, "00:00", ToText(0))
	assert.Equal(t, "08:30", ToText(510))
	assert.Equal(t, "23:59", ToText(1439))
}

// Every valid HH:MM string must survive a round trip unchanged.
func TestRoundTrip(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			s := fmt.Sprintf("%02d:%02d", h, m)
			mins, ok := ToMinutes(s)
			require.True(t, ok, s)
			require.Equal(t, s, ToText(mins))
		}
	}
}

func TestMinutesPtr(t *testing.T) {
	assert.Nil(t, MinutesPtr(nil))

	bad := "25:00"
	assert.Nil(t, MinutesPtr(&bad))

	good := "06:15"
	got := MinutesPtr(&good)
	require.NotNil(t, got)
	assert.Equal(t, 375, *got)
}

func TestTextPtr(t *testing.T) {
	assert.Equal(t, "00:00", TextPtr(nil))

	mins := 1125
	assert.Equal(t, "18:45", TextPtr(&mins))
}
