package judge

// Verdict is the aggregate outcome of one evaluation, folded from the
// per-test-case results.
type Verdict struct {
	// Status is StatusAccepted when every case passed, otherwise the status
	// of the first failing case in submission order.
	Status       Status  `json:"status"`
	PassedCount  int     `json:"passed_count"`
	TotalCount   int     `json:"total_count"`
	TotalTimeMs  float64 `json:"total_time_ms"` // summed over accepted cases only
	MaxMemoryKb  int     `json:"max_memory_kb"` // max over accepted cases only
	ErrorMessage string  `json:"error_message,omitempty"`
}

// Accepted reports whether every test case passed.
func (v Verdict) Accepted() bool {
	return v.Status == StatusAccepted
}

// Reduce folds a list of per-test-case results into one Verdict. The first
// failing case in order determines the reported status and error message;
// later failures of a different kind do not override it, but passing cases
// after a failure still count toward PassedCount. Empty input is invalid:
// every evaluation has at least one test case.
func Reduce(results []ExecutionResult) (Verdict, error) {
	if len(results) == 0 {
		return Verdict{}, ErrEmptyBatch
	}

	verdict := Verdict{Status: StatusAccepted, TotalCount: len(results)}
	for _, r := range results {
		if r.Status != StatusAccepted {
			if verdict.Status == StatusAccepted {
				verdict.Status = r.Status
				verdict.ErrorMessage = r.Stderr
				if verdict.ErrorMessage == "" {
					verdict.ErrorMessage = r.Status.Label()
				}
			}
			continue
		}
		verdict.PassedCount++
		if r.TimeMs > 0 {
			verdict.TotalTimeMs += r.TimeMs
		}
		if r.MemoryKb > verdict.MaxMemoryKb {
			verdict.MaxMemoryKb = r.MemoryKb
		}
	}
	return verdict, nil
}
