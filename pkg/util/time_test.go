package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := map[string]struct {
		given time.Duration
		want  string
	}{
		"zero":          {0, "00:00:00.000"},
		"seconds":       {75500 * time.Millisecond, "00:01:15.500"},
		"hours":         {2*time.Hour + 3*time.Minute + 4*time.Second, "02:03:04.000"},
		"sub-second":    {250 * time.Millisecond, "00:00:00.250"},
		"long duration": {90 * time.Minute, "01:30:00.000"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.given))
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "00:00:12.500", FormatSeconds(12.5))
}

func TestParseFrameRate(t *testing.T) {
	assert.Equal(t, 30.0, ParseFrameRate("30/1"))
	assert.InDelta(t, 29.97, ParseFrameRate("30000/1001"), 0.01)
	assert.Equal(t, 0.0, ParseFrameRate("garbage"))
	assert.Equal(t, 0.0, ParseFrameRate("30/0"))
	assert.Equal(t, 0.0, ParseFrameRate("30"))
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.2345))
	assert.Equal(t, 1.38, Round2(1.375))
	assert.Equal(t, 0.1234, Round4(0.12344))
	assert.Equal(t, 0.5, Round4(0.5))
}
