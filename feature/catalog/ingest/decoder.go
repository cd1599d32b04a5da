package ingest

import (
	"encoding/json"
	"fmt"
	"io"

	"cardvault/core/errs"
)

// Decoder walks a top-level JSON array one element at a time. It never
// materializes the array: each Next call advances the underlying stream by
// exactly one element, so peak residency is one record regardless of input
// size. The sequence is finite and non-restartable.
type Decoder struct {
	dec     *json.Decoder
	started bool
	done    bool
}

// NewDecoder wraps the stream. No input is consumed until the first Next.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: json.NewDecoder(r)}
}

// Next returns the next array element, or io.EOF once the closing bracket
// has been consumed. Malformed input yields an InputError; the stream is
// unusable afterwards.
func (d *Decoder) Next() (json.RawMessage, error) {
	if d.done {
		return nil, io.EOF
	}

	if !d.started {
		t, err := d.dec.Token()
		if err != nil {
			return nil, d.fail(fmt.Sprintf("reading opening token: %v", err))
		}
		if delim, ok := t.(json.Delim); !ok || delim != '[' {
			return nil, d.fail(fmt.Sprintf("expected JSON array '[', got %v", t))
		}
		d.started = true
	}

	if !d.dec.More() {
		// Consume the closing ']'.
		if _, err := d.dec.Token(); err != nil {
			return nil, d.fail(fmt.Sprintf("reading closing token: %v", err))
		}
		d.done = true
		return nil, io.EOF
	}

	var raw json.RawMessage
	if err := d.dec.Decode(&raw); err != nil {
		return nil, d.fail(fmt.Sprintf("decoding element: %v", err))
	}
	return raw, nil
}

func (d *Decoder) fail(reason string) error {
	d.done = true
	return &errs.InputError{Offset: d.dec.InputOffset(), Reason: reason}
}
