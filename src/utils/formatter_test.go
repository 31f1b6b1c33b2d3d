package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantizePrice(t *testing.T) {
	assertion := assert.New(t)

	formatter := Formatter{}

	assertion.Equal(106.70, formatter.QuantizePrice(0.10, 106.73))
	assertion.Equal(106.70, formatter.QuantizePrice(0.10, 106.70))
	assertion.Equal(50_123_000.00, formatter.QuantizePrice(1_000.00, 50_123_456.00))
	// no tick size configured, price passes through
	assertion.Equal(106.73, formatter.QuantizePrice(0.00, 106.73))
}

func TestToFixed(t *testing.T) {
	assertion := assert.New(t)

	formatter := Formatter{}

	assertion.Equal(1.23, formatter.ToFixed(1.2345, 2))
	assertion.Equal(1.24, formatter.ToFixed(1.2350, 2))
}
