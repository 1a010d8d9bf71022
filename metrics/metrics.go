package metrics

import "time"

// Event names counted by the agent.
const (
	EventRequest        = "request"
	EventClaimAccepted  = "claim_accepted"
	EventClaimRejected  = "claim_rejected"
	EventClaimMalformed = "claim_malformed"
	EventNotFound       = "not_found"

	OperationHandle = "handle"
)

type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}
