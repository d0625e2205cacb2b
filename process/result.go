package process

import (
	"encoding/json"
	"fmt"
	"time"
)

// Result holds the output and status of a completed subprocess.
type Result struct {
	// Stdout is the captured standard output.
	Stdout []byte
	// Stderr is the captured standard error.
	Stderr []byte
	// ExitCode is the process exit code. -1 if the process was killed.
	ExitCode int
	// Duration is how long the process ran.
	Duration time.Duration
}

// DecodeJSON unmarshals the process stdout into v. Transcription engine
// binaries report their results as a single JSON document on stdout.
func (r *Result) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Stdout, v); err != nil {
		return fmt.Errorf("process: decode json output: %w", err)
	}
	return nil
}
