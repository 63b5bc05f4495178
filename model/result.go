package model

import "time"

// AnalysisResult is the final report for one analyzed file: the last
// published estimates after every frame has been ingested.
type AnalysisResult struct {
	Duration   float64      `json:"duration"`
	SampleRate int          `json:"sample_rate"`
	Frames     int          `json:"frames"`
	Beat       BeatEstimate `json:"beat"`
	Key        *KeyEstimate `json:"key,omitempty"`
	KeyName    string       `json:"key_name,omitempty"`
	AnalyzedAt time.Time    `json:"analyzed_at"`
}
