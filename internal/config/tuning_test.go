package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadTuning_Defaults(t *testing.T) {
	tuning := LoadTuning()
	assert.Equal(t, 5, tuning.ProvisionConcurrency)
	assert.Equal(t, 10, tuning.TestConcurrency)
	assert.Equal(t, 120*time.Second, tuning.ReadyTimeout)
	assert.Equal(t, 3, tuning.TestAttempts)
	assert.Equal(t, 10*time.Second, tuning.ConnectTimeout)
}

func TestLoadTuning_EnvOverrides(t *testing.T) {
	t.Setenv("NETCHECK_TEST_CONCURRENCY", "3")
	t.Setenv("NETCHECK_READY_TIMEOUT", "30s")
	t.Setenv("NETCHECK_TEST_ATTEMPTS", "1")
	t.Setenv("NETCHECK_READY_POLL_FACTOR", "2.5")

	tuning := LoadTuning()
	assert.Equal(t, 3, tuning.TestConcurrency)
	assert.Equal(t, 30*time.Second, tuning.ReadyTimeout)
	assert.Equal(t, 1, tuning.TestAttempts)
	assert.Equal(t, 2.5, tuning.ReadyPollFactor)
}

func TestLoadTuning_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("NETCHECK_TEST_CONCURRENCY", "lots")
	t.Setenv("NETCHECK_READY_TIMEOUT", "soon")
	t.Setenv("NETCHECK_READY_POLL_FACTOR", "fast")

	tuning := LoadTuning()
	assert.Equal(t, 10, tuning.TestConcurrency)
	assert.Equal(t, 120*time.Second, tuning.ReadyTimeout)
	assert.Equal(t, 1.5, tuning.ReadyPollFactor)
}

func TestReadyTimeoutFor(t *testing.T) {
	tuning := &Tuning{ReadyTimeout: 120 * time.Second}

	assert.Equal(t, 120*time.Second, tuning.ReadyTimeoutFor(3))
	assert.Equal(t, 120*time.Second, tuning.ReadyTimeoutFor(20))
	assert.Equal(t, 150*time.Second, tuning.ReadyTimeoutFor(50))
}
