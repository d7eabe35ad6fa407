package capability

import (
	"math"
	"time"
)

// Clock returns a monotonic timestamp, or an error when no timer exists.
type Clock func() (time.Duration, error)

// MonotonicClock measures time since its creation with the Go runtime clock.
func MonotonicClock() Clock {
	start := time.Now()
	return func() (time.Duration, error) {
		return time.Since(start), nil
	}
}

var benchmarkSink float64

// Benchmark runs the throttle workload once as a warm-up and then
// cfg.Repetitions timed times, returning the timed durations in run order.
func Benchmark(cfg ThrottleConfig, now Clock) ([]time.Duration, error) {
	cfg = cfg.withDefaults()
	if now == nil {
		return nil, ErrNoTimer
	}

	trigWorkload(cfg.Iterations)

	samples := make([]time.Duration, 0, cfg.Repetitions)
	for r := 0; r < cfg.Repetitions; r++ {
		start, err := now()
		if err != nil {
			return nil, err
		}
		trigWorkload(cfg.Iterations)
		end, err := now()
		if err != nil {
			return nil, err
		}
		samples = append(samples, end-start)
	}
	return samples, nil
}

func trigWorkload(iterations int) {
	sum := 0.0
	for i := 0; i < iterations; i++ {
		x := float64(i)
		sum += math.Sin(x) * math.Cos(x)
	}
	benchmarkSink = sum
}
