package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcaster_LatestPerPhase(t *testing.T) {
	b := NewBroadcaster()

	_, ok := b.Latest(PhaseImport)
	assert.False(t, ok)

	b.Report(Message{Phase: PhaseImport, State: StateStart})
	b.Report(Message{Phase: PhaseImport, State: StateProgress, Records: 500})
	b.Report(Message{Phase: PhaseReconcile, State: StateStart})

	msg, ok := b.Latest(PhaseImport)
	require.True(t, ok)
	assert.Equal(t, StateProgress, msg.State)
	assert.Equal(t, int64(500), msg.Records)

	msg, ok = b.Latest(PhaseReconcile)
	require.True(t, ok)
	assert.Equal(t, StateStart, msg.State)
}

func TestBroadcaster_Subscribe(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe()
	defer cancel()

	b.Report(Message{Phase: PhaseImport, State: StateStart})
	b.Report(Message{Phase: PhaseImport, State: StateDone, Records: 10})

	msg := <-ch
	assert.Equal(t, StateStart, msg.State)
	msg = <-ch
	assert.Equal(t, StateDone, msg.State)
}

func TestBroadcaster_ReportRacingCancel(t *testing.T) {
	b := NewBroadcaster()

	// A reporter hammering the bus while subscribers come and go must never
	// send on a closed channel, even with full buffers.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5000; i++ {
			b.Report(Message{Phase: PhaseImport, State: StateProgress, Records: int64(i)})
		}
	}()

	for i := 0; i < 200; i++ {
		ch, cancel := b.Subscribe()
		for j := 0; j < cap(ch); j++ {
			b.Report(Message{Phase: PhaseReconcile, State: StateProgress})
		}
		cancel()
		// Cancelling twice must stay a no-op, not a double close.
		cancel()
	}
	<-done
}

func TestBroadcaster_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroadcaster()
	_, cancel := b.Subscribe()
	defer cancel()

	// Overflow the subscriber buffer; Report must not block.
	for i := 0; i < 200; i++ {
		b.Report(Message{Phase: PhaseImport, State: StateProgress, Records: int64(i)})
	}

	msg, ok := b.Latest(PhaseImport)
	require.True(t, ok)
	assert.Equal(t, int64(199), msg.Records)
}
