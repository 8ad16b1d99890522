package patterns

import (
	"fmt"
	"time"

	"github.com/ashendes/bookstore/internal/metrics"
)

// DefaultTimeout is the default timeout for outbound HTTP requests
const DefaultTimeout = 3 * time.Second

// Bulkhead caps the number of in-flight outbound calls. Acquisition never
// blocks: receipt delivery is best-effort and a checkout response must not
// queue behind a saturated webhook, so a full bulkhead rejects immediately.
type Bulkhead struct {
	semaphore chan struct{}
	name      string
	service   string
}

// NewBulkhead creates a new bulkhead with specified capacity
func NewBulkhead(size int, name, service string) *Bulkhead {
	return &Bulkhead{
		semaphore: make(chan struct{}, size),
		name:      name,
		service:   service,
	}
}

// Execute runs a function if a slot is free, rejecting otherwise
func (b *Bulkhead) Execute(fn func() error) error {
	select {
	case b.semaphore <- struct{}{}:
		metrics.BulkheadActiveRequests.WithLabelValues(b.service, b.name).Inc()

		defer func() {
			<-b.semaphore
			metrics.BulkheadActiveRequests.WithLabelValues(b.service, b.name).Dec()
		}()

		return fn()

	default:
		metrics.BulkheadRejectedRequests.WithLabelValues(b.service, b.name).Inc()
		return fmt.Errorf("bulkhead %s: capacity exhausted", b.name)
	}
}
