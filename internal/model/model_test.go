package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowContainsIsInclusive(t *testing.T) {
	tw := TravelWindow{DayStart: 100, DayEnd: 200}
	assert.True(t, tw.Contains(100))
	assert.True(t, tw.Contains(200))
	assert.False(t, tw.Contains(99))
	assert.False(t, tw.Contains(201))

	vw := VisibleWindow{Start: 10, End: 10}
	assert.True(t, vw.Contains(10))
	assert.False(t, vw.Contains(11))
}

func TestTimeOfDefaultsToUTC(t *testing.T) {
	got := TimeOf(1700000000000, nil)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, int64(1700000000000), Millis(got))
}
