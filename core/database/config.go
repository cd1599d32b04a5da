package database

// Config holds configuration for the embedded store.
type Config struct {
	// Path is the SQLite database file path. Use ":memory:" for tests.
	Path string `mapstructure:"path" default:"cards.db"`
	// BusyTimeoutMS bounds the wait on write-lock contention.
	BusyTimeoutMS int `mapstructure:"busy_timeout_ms" default:"5000"`
	// IngestTuning applies bulk-load pragmas (reduced synchronous level).
	// Only intended for the connection used by the ingestion worker.
	IngestTuning bool `mapstructure:"ingest_tuning" default:"false"`
}
