package order

import "time"

// TIFKind selects a time-in-force policy for a single order.
type TIFKind int

const (
	// DAY expires an unfilled order at 23:59:59 of the calendar day it
	// was accepted on, in the acceptance time's location; exchange
	// trading hours are not consulted.
	DAY TIFKind = iota
	// GTC (good till cancelled) expires after MaxDays calendar days,
	// defaulting to 90.
	GTC
	// GTD (good till date) expires at a fixed instant.
	GTD
	// IOC (immediate or cancel) fills what it can against the current
	// event and cancels the remainder immediately.
	IOC
	// FOK (fill or kill) either fills in full against the current event
	// or is cancelled.
	FOK
)

// DefaultGTCMaxDays is the GTC expiry horizon used when MaxDays is left
// at its zero value.
const DefaultGTCMaxDays = 90

// TIF is a time-in-force policy attached to a single order.
type TIF struct {
	Kind    TIFKind
	MaxDays int       // GTC only
	Until   time.Time // GTD only
}

// Day returns the DAY policy.
func Day() TIF { return TIF{Kind: DAY} }

// GoodTillCancelled returns the GTC policy with the default 90-day
// horizon.
func GoodTillCancelled() TIF { return TIF{Kind: GTC, MaxDays: DefaultGTCMaxDays} }

// GoodTillCancelledDays returns the GTC policy with a custom horizon.
func GoodTillCancelledDays(maxDays int) TIF {
	if maxDays <= 0 {
		maxDays = DefaultGTCMaxDays
	}
	return TIF{Kind: GTC, MaxDays: maxDays}
}

// GoodTillDate returns the GTD policy expiring at until.
func GoodTillDate(until time.Time) TIF { return TIF{Kind: GTD, Until: until} }

// ImmediateOrCancel returns the IOC policy.
func ImmediateOrCancel() TIF { return TIF{Kind: IOC} }

// FillOrKill returns the FOK policy.
func FillOrKill() TIF { return TIF{Kind: FOK} }

// ExpiresAt reports the instant at which an order accepted at acceptedAt
// expires under this policy, and whether the policy has a fixed expiry
// at all (IOC/FOK expire "this event" rather than at a computable
// instant, so ok is false for them — the executor handles them inline).
func (t TIF) ExpiresAt(acceptedAt time.Time) (expiry time.Time, ok bool) {
	switch t.Kind {
	case DAY:
		y, m, d := acceptedAt.Date()
		return time.Date(y, m, d, 23, 59, 59, 0, acceptedAt.Location()), true
	case GTC:
		days := t.MaxDays
		if days <= 0 {
			days = DefaultGTCMaxDays
		}
		return acceptedAt.AddDate(0, 0, days), true
	case GTD:
		return t.Until, true
	default:
		return time.Time{}, false
	}
}

// IsImmediate reports whether the policy requires the order to resolve
// entirely within the event it was accepted on (IOC, FOK).
func (t TIF) IsImmediate() bool { return t.Kind == IOC || t.Kind == FOK }

func (k TIFKind) String() string {
	switch k {
	case DAY:
		return "DAY"
	case GTC:
		return "GTC"
	case GTD:
		return "GTD"
	case IOC:
		return "IOC"
	case FOK:
		return "FOK"
	default:
		return "UNKNOWN"
	}
}
