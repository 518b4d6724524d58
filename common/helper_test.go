package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("VOXLUME_TEST_VALUE", "  set  ")
	assert.Equal(t, "set", GetEnv("VOXLUME_TEST_VALUE", "fallback"))

	t.Setenv("VOXLUME_TEST_BLANK", "   ")
	assert.Equal(t, "fallback", GetEnv("VOXLUME_TEST_BLANK", "fallback"))
	assert.Equal(t, "fallback", GetEnv("VOXLUME_TEST_UNSET", "fallback"))
}

func TestParseDuration(t *testing.T) {
	fallback := 5 * time.Minute
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"2h", 2 * time.Hour},
		{"30", 30 * time.Second},
		{" 1m30s ", 90 * time.Second},
		{"not-a-duration", fallback},
		{"-3s", fallback},
		{"-3", fallback},
		{"", fallback},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseDuration(tt.in, fallback), "input %q", tt.in)
	}
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 12, ParseInt(" 12 ", 7))
	assert.Equal(t, 7, ParseInt("nope", 7))
	assert.Equal(t, -2, ParseInt("-2", 7))
}

func TestSplitList(t *testing.T) {
	got := SplitList([]string{"is, lu", "", " fi ,"})
	assert.Equal(t, []string{"is", "lu", "fi"}, got)
	assert.Nil(t, SplitList(nil))
}
