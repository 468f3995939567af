package pipeline

import "sync"

// RunStats aggregates per-file outcomes across a batch run. Files may
// complete concurrently, so mutation goes through Record.
type RunStats struct {
	mu sync.Mutex

	Total     int
	Converted int
	Skipped   int
	Failed    int

	TotalInputBytes  int64
	TotalOutputBytes int64
}

// Record folds one file's outcome and byte sizes into the totals.
// Output bytes are only counted for converted files.
func (s *RunStats) Record(o Outcome, inputBytes, outputBytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch o.Kind {
	case OutcomeConverted:
		s.Converted++
		s.TotalInputBytes += inputBytes
		s.TotalOutputBytes += outputBytes
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
}

// SpaceSaved returns the aggregate byte difference between converted inputs
// and their outputs. Positive means the outputs are smaller.
func (s *RunStats) SpaceSaved() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.TotalInputBytes - s.TotalOutputBytes
}
