// Package gateway wraps the card-network gateway's signed webhook
// verification behind a small interface so the SDK surface stays in one
// adapter and tests can fake it.
package gateway

import "time"

// Notification is a verified gateway webhook notification.
type Notification struct {
	Timestamp time.Time
	Kind      string // webhook event kind
	Dispute   *Dispute
}

// Dispute is the dispute subject of a verified notification. Amounts are
// decimal currency units; conversion to minor units happens downstream.
type Dispute struct {
	ID                string
	Kind              string // dispute kind (chargeback, retrieval, ...)
	Status            string
	Reason            string
	ReasonCode        string
	ReasonDescription string
	CurrencyISOCode   string
	CaseNumber        string
	Amount            *float64
	AmountDisputed    *float64
	AmountWon         *float64
	CreatedAt         *time.Time
	ReplyBy           *time.Time
}

// Verifier parses and verifies a signed gateway payload. It fails closed:
// a signature mismatch is an error, never a pass-through.
type Verifier interface {
	Parse(signature, payload string) (*Notification, error)
}
