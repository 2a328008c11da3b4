package check

import (
	"time"

	"github.com/remram44/kubernetes-network-checker/internal/config"
)

// testConfig returns a configuration with timeouts shrunk so tests that
// exercise readiness timeouts and retry budgets finish in milliseconds.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Tuning = config.Tuning{
		ProvisionConcurrency: 4,
		TestConcurrency:      4,
		ReadyTimeout:         50 * time.Millisecond,
		ReadyPollInitial:     time.Millisecond,
		ReadyPollCap:         5 * time.Millisecond,
		ReadyPollFactor:      1.5,
		TestTimeout:          100 * time.Millisecond,
		TestAttempts:         3,
		TestRetryInitial:     time.Millisecond,
		ConnectTimeout:       time.Second,
		TeardownTimeout:      time.Second,
	}
	return cfg
}
