package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceAcceptsStringAndNumber(t *testing.T) {
	assertion := assert.New(t)

	var fromString Price
	assertion.Nil(json.Unmarshal([]byte(`"106.70"`), &fromString))
	assertion.Equal(106.70, fromString.Value())

	var fromNumber Price
	assertion.Nil(json.Unmarshal([]byte(`106.70`), &fromNumber))
	assertion.Equal(106.70, fromNumber.Value())
}

func TestTimestampMilli(t *testing.T) {
	assertion := assert.New(t)

	timestamp := TimestampMilli(1_750_000_000_000)

	assertion.Equal(int64(1_750_000_000_000), timestamp.Value())
	assertion.True(timestamp.Gt(TimestampMilli(1_000)))
	assertion.True(TimestampMilli(1_000).Lt(timestamp))
	assertion.Equal(int64(1_750_000_000), timestamp.ToTime().Unix())
}
