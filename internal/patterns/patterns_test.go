package patterns

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkheadRejectsWhenFull(t *testing.T) {
	b := NewBulkhead(1, "receipts", "test")

	occupied := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- b.Execute(func() error {
			close(occupied)
			<-release
			return nil
		})
	}()
	<-occupied

	// no free slot: the call must return immediately instead of queueing
	err := b.Execute(func() error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capacity exhausted")

	close(release)
	require.NoError(t, <-done)
}

func TestCircuitBreakerTripsOnConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker("ReceiptWebhook", "test")
	boom := errors.New("webhook down")

	for i := 0; i < 2; i++ {
		_, err := cb.Execute(func() (interface{}, error) { return nil, boom })
		require.ErrorIs(t, err, boom)
	}

	_, err := cb.Execute(func() (interface{}, error) { return nil, nil })
	assert.Equal(t, gobreaker.ErrOpenState, err)
	assert.Equal(t, gobreaker.StateOpen.String(), cb.GetState())
}
