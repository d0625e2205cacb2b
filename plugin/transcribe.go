package plugin

import "context"

// TranscribeRequest describes one transcription job handed to an active
// backend.
type TranscribeRequest struct {
	// AudioPath is the path to the audio file to transcribe.
	AudioPath string `json:"audio_path"`
	// Language is the expected language code, or "auto".
	Language string `json:"language,omitempty"`
	// Model overrides the backend's configured model for this request.
	Model string `json:"model,omitempty"`
	// Format selects the output format (text, json, srt).
	Format string `json:"format,omitempty"`
}

// TranscribeSegment is one timed span of recognized speech.
type TranscribeSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranscribeResponse is the result of one transcription job.
type TranscribeResponse struct {
	Text     string              `json:"text"`
	Segments []TranscribeSegment `json:"segments,omitempty"`
	Duration float64             `json:"duration,omitempty"`
	Language string              `json:"language,omitempty"`
}

// Transcriber is optionally implemented by plugins that can run batch
// transcription jobs while active. The manager does not require it; surfaces
// that need transcription type-assert for it on the active plugin.
type Transcriber interface {
	Transcribe(ctx context.Context, req TranscribeRequest) (*TranscribeResponse, error)
}

// AsTranscriber unwraps middleware layers until it finds a Transcriber,
// or reports false.
func AsTranscriber(p Plugin) (Transcriber, bool) {
	for p != nil {
		if t, ok := p.(Transcriber); ok {
			return t, true
		}
		u, ok := p.(interface{ Unwrap() Plugin })
		if !ok {
			return nil, false
		}
		p = u.Unwrap()
	}
	return nil, false
}
