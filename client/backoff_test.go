package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Schedule_Delay(t *testing.T) {
	schedule := Schedule{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
	}

	for _, test := range []struct {
		name     string
		attempt  int
		expected time.Duration
	}{
		{name: "first attempt", attempt: 0, expected: 1 * time.Second},
		{name: "second attempt", attempt: 1, expected: 2 * time.Second},
		{name: "last scheduled attempt", attempt: 2, expected: 4 * time.Second},
		{name: "attempt beyond schedule reuses cap", attempt: 3, expected: 4 * time.Second},
		{name: "attempt far beyond schedule reuses cap", attempt: 100, expected: 4 * time.Second},
		{name: "negative attempt clamps to first", attempt: -1, expected: 1 * time.Second},
	} {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, schedule.Delay(test.attempt))
		})
	}
}

func Test_Schedule_Delay_Empty(t *testing.T) {
	assert.Equal(t, time.Duration(0), Schedule(nil).Delay(3))
}

func Test_DefaultSchedule(t *testing.T) {
	assert.Equal(t, 1*time.Second, DefaultSchedule.Delay(0))
	assert.Equal(t, 60*time.Second, DefaultSchedule.Delay(len(DefaultSchedule)))
}
