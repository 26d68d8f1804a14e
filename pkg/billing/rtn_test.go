package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidRTN(t *testing.T) {
	valid := []string{
		"0801-1990-123456",
		"08011990123456",
		"0501-1985-000123",
	}
	for _, s := range valid {
		assert.True(t, ValidRTN(s), "expected %q to be valid", s)
	}

	invalid := []string{
		"",
		"0801-1990-12345",    // short last group
		"0801-1990-1234567",  // long last group
		"801-1990-123456",    // short first group
		"0801.1990.123456",   // wrong separator
		"0801-19X0-123456",   // letter
		"0801--1990-123456",  // double dash
	}
	for _, s := range invalid {
		assert.False(t, ValidRTN(s), "expected %q to be invalid", s)
	}
}

func TestNormalizeRTN(t *testing.T) {
	assert.Equal(t, "0801-1990-123456", NormalizeRTN("08011990123456"))
	assert.Equal(t, "0801-1990-123456", NormalizeRTN("0801-1990-123456"))
	assert.Equal(t, "not-an-rtn", NormalizeRTN("not-an-rtn"))
}
