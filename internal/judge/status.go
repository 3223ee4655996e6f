package judge

import "errors"

var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrEmptyBatch          = errors.New("empty execution batch")
	ErrDispatchFailed      = errors.New("judge dispatch failed")
	ErrPollFailed          = errors.New("judge result polling failed")
	ErrPollTimeout         = errors.New("judge result polling timed out")
)

// Status is the outcome code the judge reports for one execution. The numeric
// values are the judge's own status ids and appear verbatim on the wire.
type Status int

const (
	StatusInQueue             Status = 1
	StatusProcessing          Status = 2
	StatusAccepted            Status = 3
	StatusWrongAnswer         Status = 4
	StatusTimeLimitExceeded   Status = 5
	StatusCompilationError    Status = 6
	StatusRuntimeErrorSIGSEGV Status = 7
	StatusRuntimeErrorSIGXFSZ Status = 8
	StatusRuntimeErrorSIGFPE  Status = 9
	StatusRuntimeErrorSIGABRT Status = 10
	StatusRuntimeErrorNZEC    Status = 11
	StatusRuntimeErrorOther   Status = 12
	StatusInternalError       Status = 13
	StatusExecFormatError     Status = 14
)

// UnknownStatusLabel is reported for status ids outside the known set. An
// unrecognized id counts as a failing case, never as a crash.
const UnknownStatusLabel = "Unknown Error"

var statusLabels = map[Status]string{
	StatusInQueue:             "In Queue",
	StatusProcessing:          "Processing",
	StatusAccepted:            "Accepted",
	StatusWrongAnswer:         "Wrong Answer",
	StatusTimeLimitExceeded:   "Time Limit Exceeded",
	StatusCompilationError:    "Compilation Error",
	StatusRuntimeErrorSIGSEGV: "Runtime Error (SIGSEGV)",
	StatusRuntimeErrorSIGXFSZ: "Runtime Error (SIGXFSZ)",
	StatusRuntimeErrorSIGFPE:  "Runtime Error (SIGFPE)",
	StatusRuntimeErrorSIGABRT: "Runtime Error (SIGABRT)",
	StatusRuntimeErrorNZEC:    "Runtime Error (NZEC)",
	StatusRuntimeErrorOther:   "Runtime Error (Other)",
	StatusInternalError:       "Internal Error",
	StatusExecFormatError:     "Exec Format Error",
}

// Terminal reports whether the status will not change on subsequent polls.
func (s Status) Terminal() bool {
	return s != StatusInQueue && s != StatusProcessing
}

// Label returns the human-readable description for the status.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return UnknownStatusLabel
}
