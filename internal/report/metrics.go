package report

import "time"

// Rate computes items processed per second over the elapsed duration.
func Rate(processed int, elapsed time.Duration) float64 {
	if processed <= 0 || elapsed <= 0 {
		return 0
	}
	return float64(processed) / elapsed.Seconds()
}

// ETASeconds linearly extrapolates the remaining work from the observed rate.
func ETASeconds(processed, total int, elapsed time.Duration) float64 {
	rate := Rate(processed, elapsed)
	if rate <= 0 || total <= processed {
		return 0
	}
	return float64(total-processed) / rate
}

// Snapshot assembles a progress snapshot with its derived rate and ETA.
func Snapshot(stage, state string, counters Counters, startedAt, now time.Time) Progress {
	elapsed := now.Sub(startedAt)
	return Progress{
		Stage:      stage,
		State:      state,
		StartedAt:  startedAt,
		UpdatedAt:  now,
		Counters:   counters,
		RatePerSec: Rate(counters.Processed, elapsed),
		ETASeconds: ETASeconds(counters.Processed, counters.Total, elapsed),
	}
}

// TerminalProgress renders the progress view of a completed run so polling
// either file observes the same final counters.
func TerminalProgress(summary Summary) Progress {
	return Progress{
		Stage:     summary.Stage,
		RunID:     summary.RunID,
		State:     StateDone,
		StartedAt: summary.StartedAt,
		UpdatedAt: summary.FinishedAt,
		Counters:  summary.Counters,
	}
}
