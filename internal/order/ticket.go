package order

import "time"

// Ticket is the broker's runtime record for a tracked order: the
// immutable Order instruction plus mutable lifecycle state. Grounded
// on internal/execution/tracker.go's OrderState, generalized to carry
// a typed Order and a Status that can only move forward.
type Ticket struct {
	ID         string
	Order      Order
	Status     Status
	FilledSize float64
	AvgFillPx  float64
	CreatedAt  time.Time
	AcceptedAt time.Time
	UpdatedAt  time.Time
	Expiry     time.Time
	HasExpiry  bool
}

// NewTicket starts a ticket in the INITIAL state.
func NewTicket(id string, o Order, now time.Time) *Ticket {
	return &Ticket{ID: id, Order: o, Status: Initial, CreatedAt: now, UpdatedAt: now}
}

// Accept moves the ticket to ACCEPTED at acceptedAt, computing its
// expiry (if any) from the order's time-in-force.
func (t *Ticket) Accept(acceptedAt time.Time, tif TIF) error {
	if !t.Status.CanTransition(Accepted) {
		return ErrIllegalTransition{From: t.Status, To: Accepted}
	}
	t.Status = Accepted
	t.AcceptedAt = acceptedAt
	t.UpdatedAt = acceptedAt
	if expiry, ok := tif.ExpiresAt(acceptedAt); ok {
		t.Expiry = expiry
		t.HasExpiry = true
	}
	return nil
}

// Close transitions the ticket to a terminal status.
func (t *Ticket) Close(status Status, at time.Time) error {
	if !status.IsClosed() {
		return ErrIllegalTransition{From: t.Status, To: status}
	}
	if !t.Status.CanTransition(status) {
		return ErrIllegalTransition{From: t.Status, To: status}
	}
	t.Status = status
	t.UpdatedAt = at
	return nil
}

// IsExpired reports whether the ticket's time-in-force has elapsed as
// of instant now.
func (t *Ticket) IsExpired(now time.Time) bool {
	return t.HasExpiry && t.Status.IsOpen() && !now.Before(t.Expiry)
}
