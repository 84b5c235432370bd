package domain

type IngestionStatus string

const (
	IngestionStatusOK      IngestionStatus = "ok"
	IngestionStatusPartial IngestionStatus = "partial"
	IngestionStatusError   IngestionStatus = "error"
)
