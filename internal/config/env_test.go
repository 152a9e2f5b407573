// SPDX-License-Identifier: MIT

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseString(t *testing.T) {
	t.Setenv("TEST_STRING", "from-env")
	t.Setenv("TEST_STRING_EMPTY", "")

	assert.Equal(t, "from-env", ParseString("TEST_STRING", "default"))
	assert.Equal(t, "default", ParseString("TEST_STRING_UNSET", "default"))
	assert.Equal(t, "default", ParseString("TEST_STRING_EMPTY", "default"))
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"valid", "42", 42},
		{"padded", " 7 ", 7},
		{"negative", "-3", -3},
		{"invalid", "abc", 10},
		{"float", "1.5", 10},
		{"empty", "", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.value)
			assert.Equal(t, tt.want, ParseInt("TEST_INT", 10))
		})
	}
}

func TestParseInt64(t *testing.T) {
	t.Setenv("TEST_INT64", "8589934592")
	assert.Equal(t, int64(8589934592), ParseInt64("TEST_INT64", 1))

	t.Setenv("TEST_INT64", "lots")
	assert.Equal(t, int64(1), ParseInt64("TEST_INT64", 1))
}

func TestParseFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "0.25")
	assert.InDelta(t, 0.25, ParseFloat("TEST_FLOAT", 1), 1e-9)

	t.Setenv("TEST_FLOAT", "quarter")
	assert.InDelta(t, 1.0, ParseFloat("TEST_FLOAT", 1), 1e-9)
}

func TestParseDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "90s")
	assert.Equal(t, 90*time.Second, ParseDuration("TEST_DURATION", time.Second))

	t.Setenv("TEST_DURATION", "90")
	assert.Equal(t, time.Second, ParseDuration("TEST_DURATION", time.Second))
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"YES", false, true},
		{"1", false, true},
		{"false", true, false},
		{"No", true, false},
		{"0", true, false},
		{"maybe", true, true},
		{"", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)
			assert.Equal(t, tt.want, ParseBool("TEST_BOOL", tt.def))
		})
	}
}

func TestParseList(t *testing.T) {
	t.Setenv("TEST_LIST", " a, b ,,c ")
	assert.Equal(t, []string{"a", "b", "c"}, ParseList("TEST_LIST", nil))
	assert.Equal(t, []string{"x"}, ParseList("TEST_LIST_UNSET", []string{"x"}))
}

func TestIsSensitiveKey(t *testing.T) {
	assert.True(t, isSensitiveKey(EnvRedisPassword))
	assert.True(t, isSensitiveKey(EnvStoreDSN))
	assert.True(t, isSensitiveKey(EnvDatabaseURI))
	assert.False(t, isSensitiveKey(EnvListen))
}
