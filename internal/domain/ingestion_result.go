package domain

import "time"

type IngestionResult struct {
	Status     IngestionStatus `json:"status"`
	Timestamp  time.Time       `json:"timestamp"`
	Date       string          `json:"date,omitempty"`
	Successful []Symbol        `json:"successful"`
	Failed     []Symbol        `json:"failed"`
	Skipped    bool            `json:"skipped,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// StatusFor reports ok when nothing failed and partial otherwise.
func StatusFor(failed []Symbol) IngestionStatus {
	if len(failed) == 0 {
		return IngestionStatusOK
	}
	return IngestionStatusPartial
}
