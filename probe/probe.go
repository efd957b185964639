// Package probe provides the instruction-count threshold capability that
// the surrounding simulator uses to coordinate milestones with interested
// observers. The prefetch predictor never depends on it directly; it is
// glue for drivers and harnesses.
package probe

// Callback receives the count value whose threshold was crossed.
type Callback func(count uint64)

// Notifier is the capability surface of a threshold tracker.
type Notifier interface {
	// RegisterObserver adds a callback to be fired on threshold crossings.
	RegisterObserver(cb Callback)
	// Notify reports the current running count. Counts must be
	// monotonically non-decreasing.
	Notify(count uint64)
}

// ThresholdNotifier fires its observers once each time the running count
// crosses another multiple of the threshold.
type ThresholdNotifier struct {
	threshold uint64
	next      uint64
	observers []Callback
}

// NewThresholdNotifier creates a notifier that fires every threshold
// counts. A zero threshold never fires.
func NewThresholdNotifier(threshold uint64) *ThresholdNotifier {
	return &ThresholdNotifier{
		threshold: threshold,
		next:      threshold,
	}
}

// RegisterObserver adds a callback to be fired on threshold crossings.
func (n *ThresholdNotifier) RegisterObserver(cb Callback) {
	n.observers = append(n.observers, cb)
}

// Notify reports the current running count, firing observers once per
// crossed multiple of the threshold.
func (n *ThresholdNotifier) Notify(count uint64) {
	if n.threshold == 0 {
		return
	}
	for count >= n.next {
		for _, cb := range n.observers {
			cb(n.next)
		}
		n.next += n.threshold
	}
}
