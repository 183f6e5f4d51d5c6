package encoding

import (
	"fmt"
	"strings"

	"lapsync/internal/services"
)

// Failure stages of one candidate attempt.
const (
	StageStart  = "start"
	StageWrite  = "write"
	StageExit   = "exit"
	StageOutput = "output"
)

// CandidateError reports why one encoder candidate was abandoned.
type CandidateError struct {
	Codec  string
	Stage  string
	Err    error
	Stderr string
}

func (e *CandidateError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "encoder %s failed at %s", e.Codec, e.Stage)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if last := lastLine(e.Stderr); last != "" {
		fmt.Fprintf(&b, " (%s)", last)
	}
	return b.String()
}

func (e *CandidateError) Unwrap() []error {
	if e.Err == nil {
		return []error{services.ErrEncoderCandidate}
	}
	return []error{services.ErrEncoderCandidate, e.Err}
}

// FatalError is returned once every candidate has failed. Diagnostic is
// the stderr captured from the last attempt.
type FatalError struct {
	Attempts   []*CandidateError
	Diagnostic string
}

func (e *FatalError) Error() string {
	codecs := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		codecs[i] = a.Codec
	}
	msg := fmt.Sprintf("encode: all %d encoder candidates failed (%s)", len(e.Attempts), strings.Join(codecs, ", "))
	if len(e.Attempts) > 0 {
		msg += ": last error: " + e.Attempts[len(e.Attempts)-1].Error()
	}
	if e.Diagnostic != "" {
		msg += "\n" + e.Diagnostic
	}
	return msg
}

func (e *FatalError) Unwrap() error { return services.ErrEncodePipeline }

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[idx+1:])
	}
	return s
}
