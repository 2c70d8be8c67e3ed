package billing

// Status is the local billing status cached from the gateway. Only the
// payments core writes it.
type Status string

const (
	StatusPending        Status = "pending"
	StatusRequiresAction Status = "requires_action"
	StatusIncomplete     Status = "incomplete"
	StatusActive         Status = "active"
	StatusPaused         Status = "paused"
	StatusCanceled       Status = "canceled"
	StatusFailed         Status = "failed"
)

// FromSubscription maps a gateway subscription status to the local enum.
// paused reports whether pause_collection is set on the subscription; it
// overrides an otherwise active mapping. Unknown statuses land on
// incomplete rather than failing.
func FromSubscription(external string, paused bool) Status {
	var s Status
	switch external {
	case "active", "trialing":
		s = StatusActive
	case "incomplete", "incomplete_expired", "past_due":
		s = StatusIncomplete
	case "canceled", "unpaid":
		s = StatusCanceled
	default:
		s = StatusIncomplete
	}
	if paused && s == StatusActive {
		return StatusPaused
	}
	return s
}

// FromIntent maps a gateway payment-intent status to the local enum.
func FromIntent(external string) Status {
	switch external {
	case "succeeded":
		return StatusActive
	case "requires_action", "requires_source_action":
		return StatusRequiresAction
	case "processing", "requires_confirmation":
		return StatusPending
	case "canceled", "requires_payment_method":
		return StatusFailed
	default:
		return StatusPending
	}
}
