package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVoteValidation(t *testing.T) {
	assertion := assert.New(t)

	vote, err := NewVote("rsi_momentum", ActionBuy, 0.70, 0.50, "oversold", nil)
	assertion.Nil(err)
	assertion.Equal(ActionBuy, vote.Action)
	assertion.Equal(0.70, vote.Confidence)
	assertion.NotNil(vote.Indicators)

	_, err = NewVote("rsi_momentum", "LONG", 0.70, 0.50, "", nil)
	assertion.NotNil(err)
	assertion.Contains(err.Error(), "Unknown vote action")

	_, err = NewVote("rsi_momentum", ActionBuy, 1.20, 0.50, "", nil)
	assertion.NotNil(err)
	assertion.Contains(err.Error(), "Confidence")

	_, err = NewVote("rsi_momentum", ActionSell, 0.70, -0.10, "", nil)
	assertion.NotNil(err)
	assertion.Contains(err.Error(), "Strength")
}

func TestHoldVoteIsZeroConfidence(t *testing.T) {
	assertion := assert.New(t)

	vote := HoldVote("band_width", "strategy timeout")

	assertion.Equal(ActionHold, vote.Action)
	assertion.Equal(0.00, vote.Confidence)
	assertion.Equal("strategy timeout", vote.Reasoning)
}

func TestVoteExpiry(t *testing.T) {
	assertion := assert.New(t)

	now := time.Now().UnixMilli()

	fresh := Vote{Timestamp: TimestampMilli(now - 10_000)}
	stale := Vote{Timestamp: TimestampMilli(now - 400_000)}

	assertion.False(fresh.IsExpired(300, now))
	assertion.True(stale.IsExpired(300, now))
}
