package config

import (
	"os"
	"strconv"
	"time"
)

// Tuning holds all configurable timeout, concurrency, and retry values.
// These can be customized via environment variables; none of them are
// hard-coded laws of the checker.
type Tuning struct {
	ProvisionConcurrency int           // parallel probe provisioning bound
	TestConcurrency      int           // parallel reachability test bound
	ReadyTimeout         time.Duration // base probe readiness timeout
	ReadyPollInitial     time.Duration // first readiness poll delay
	ReadyPollCap         time.Duration // readiness poll delay ceiling
	ReadyPollFactor      float64       // readiness poll backoff factor
	TestTimeout          time.Duration // timeout for a single exec
	TestAttempts         int           // exec attempts per pair, including the first
	TestRetryInitial     time.Duration // delay before the first exec retry
	ConnectTimeout       time.Duration // connect timeout inside the probe
	TeardownTimeout      time.Duration // budget for the whole teardown pass
}

// LoadTuning loads tuning from environment variables, falling back to
// defaults for unset or invalid values.
//
// Environment Variables:
//   - NETCHECK_PROVISION_CONCURRENCY (default: 5)
//   - NETCHECK_TEST_CONCURRENCY (default: 10)
//   - NETCHECK_READY_TIMEOUT (default: 120s)
//   - NETCHECK_READY_POLL_INITIAL (default: 2s)
//   - NETCHECK_READY_POLL_CAP (default: 15s)
//   - NETCHECK_READY_POLL_FACTOR (default: 1.5)
//   - NETCHECK_TEST_TIMEOUT (default: 30s)
//   - NETCHECK_TEST_ATTEMPTS (default: 3)
//   - NETCHECK_TEST_RETRY_INITIAL (default: 1s)
//   - NETCHECK_CONNECT_TIMEOUT (default: 10s)
//   - NETCHECK_TEARDOWN_TIMEOUT (default: 2m)
func LoadTuning() *Tuning {
	return &Tuning{
		ProvisionConcurrency: parseInt("NETCHECK_PROVISION_CONCURRENCY", 5),
		TestConcurrency:      parseInt("NETCHECK_TEST_CONCURRENCY", 10),
		ReadyTimeout:         parseDuration("NETCHECK_READY_TIMEOUT", 120*time.Second),
		ReadyPollInitial:     parseDuration("NETCHECK_READY_POLL_INITIAL", 2*time.Second),
		ReadyPollCap:         parseDuration("NETCHECK_READY_POLL_CAP", 15*time.Second),
		ReadyPollFactor:      parseFloat("NETCHECK_READY_POLL_FACTOR", 1.5),
		TestTimeout:          parseDuration("NETCHECK_TEST_TIMEOUT", 30*time.Second),
		TestAttempts:         parseInt("NETCHECK_TEST_ATTEMPTS", 3),
		TestRetryInitial:     parseDuration("NETCHECK_TEST_RETRY_INITIAL", 1*time.Second),
		ConnectTimeout:       parseDuration("NETCHECK_CONNECT_TIMEOUT", 10*time.Second),
		TeardownTimeout:      parseDuration("NETCHECK_TEARDOWN_TIMEOUT", 2*time.Minute),
	}
}

// ReadyTimeoutFor scales the readiness timeout with cluster size: image
// pulls queue up on large clusters, so every node beyond 20 adds a second.
func (t *Tuning) ReadyTimeoutFor(nodes int) time.Duration {
	timeout := t.ReadyTimeout
	if nodes > 20 {
		timeout += time.Duration(nodes-20) * time.Second
	}
	return timeout
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}

// parseFloat parses a float from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseFloat(envVar string, defaultVal float64) float64 {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}

	return f
}
