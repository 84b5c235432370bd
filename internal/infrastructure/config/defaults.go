package config

import "time"

const (
	DefaultHTTPPort        = "8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultPGMaxConns      = 5
	DefaultPGMinConns      = 1
	DefaultSQLiteBusyMS    = 5000
	DefaultRetryInitial    = 200 * time.Millisecond
	DefaultRetryMax        = 1 * time.Second
	DefaultRetryElapsed    = 3 * time.Second
)
