package battery

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_Defaults(t *testing.T) {
	m := NewManager("mouse", func() (float64, error) { return 100, nil }, nil, Settings{})
	assert.Equal(t, DefaultFrequency, m.Settings().Frequency)
	assert.Equal(t, DefaultPercent, m.Settings().Percent)
}

func TestCheck(t *testing.T) {
	level := 20.0
	charging := false
	m := NewManager("mouse",
		func() (float64, error) { return level, nil },
		func() (bool, error) { return charging, nil },
		Settings{Percent: 33},
	)

	r, err := m.Check()
	require.NoError(t, err)
	assert.True(t, r.Low)

	charging = true
	r, _ = m.Check()
	assert.False(t, r.Low, "charging is never low")

	charging, level = false, 50
	r, _ = m.Check()
	assert.False(t, r.Low)
}

func TestCheck_LevelError(t *testing.T) {
	m := NewManager("mouse", func() (float64, error) { return 0, errors.New("gone") }, nil, Settings{})
	_, err := m.Check()
	assert.Error(t, err)
}

func TestStart_NotifiesWhenLow(t *testing.T) {
	m := NewManager("mouse", func() (float64, error) { return 5, nil }, nil,
		Settings{Active: true, Frequency: 5 * time.Millisecond, Percent: 33})

	var calls atomic.Int32
	m.SetOnLow(func(r Reading) {
		if r.Level == 5 {
			calls.Add(1)
		}
	})

	m.Start(context.Background())
	m.Start(context.Background())
	require.Eventually(t, func() bool { return calls.Load() > 0 }, time.Second, time.Millisecond)
	m.Close()
	m.Close()
}

func TestStart_Inactive(t *testing.T) {
	var polls atomic.Int32
	m := NewManager("mouse", func() (float64, error) { polls.Add(1); return 5, nil }, nil,
		Settings{Frequency: time.Millisecond})

	m.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	m.Close()
	assert.Zero(t, polls.Load())
}
