package ingest

import "time"

// Message is the tagged union of everything the worker sends back to the
// host. Exactly one terminal message (Completed or Failed) ends the stream;
// the channel is closed after it.
type Message interface {
	ingestMessage()
}

// Started signals that the worker accepted the stream and began decoding.
type Started struct{}

// Progress is a periodic update, emitted once per committed batch.
type Progress struct {
	// Records is the count of records written so far.
	Records int64
	// Batches is the count of committed batches.
	Batches int
	// HeapBytes is the worker's approximate heap footprint.
	HeapBytes uint64
}

// Completed carries the terminal summary of a successful run.
type Completed struct {
	Summary Summary
}

// Failed carries the terminal error of an aborted run. Batches committed
// before the failure remain committed.
type Failed struct {
	Err error
}

// Summary describes a finished import.
type Summary struct {
	// Records is the number of records written.
	Records int64
	// Skipped is the number of records filtered out (e.g. non-English).
	Skipped int64
	// Batches is the number of committed transactions.
	Batches int
	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

func (Started) ingestMessage()   {}
func (Progress) ingestMessage()  {}
func (Completed) ingestMessage() {}
func (Failed) ingestMessage()    {}
