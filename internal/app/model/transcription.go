package model

// Segment is one timed span of recognized speech. Offsets are seconds from
// the start of the audio; End is always >= Start. A file's segments are
// ordered by Start and do not overlap.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// TranscriptionResult is the outcome of recognizing one AudioStream. It is
// created once per successful inference and consumed once by the writer.
type TranscriptionResult struct {
	Media    MediaFile
	Segments []Segment
	// Language is the forced or detected ISO 639-1 code, e.g. "en".
	Language string
	// Model identifies the model the segments were produced with,
	// e.g. "ggml-medium".
	Model string
}
