// Package normalize turns source-specific webhook payloads into canonical
// dispute records. One transform per source; the two upstream shapes
// diverge enough (decimal vs integer amounts, object vs epoch timestamps)
// that two explicit functions beat a generic mapper.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/imrishuroy/go-dispute-reconciler/internal/disputes"
	"github.com/imrishuroy/go-dispute-reconciler/internal/envelope"
	"github.com/imrishuroy/go-dispute-reconciler/internal/gateway"
)

// gatewayBody is the signed-payload pair the gateway posts in the body.
type gatewayBody struct {
	Signature string `json:"bt_signature"`
	Payload   string `json:"bt_payload"`
}

// Gateway verifies the signed payload in the envelope body and maps the
// resulting notification to a canonical record. A verification failure
// returns an error; the caller quarantines that object.
func Gateway(env *envelope.Envelope, v gateway.Verifier) (*disputes.Record, error) {
	var body gatewayBody
	if err := json.Unmarshal(env.Body, &body); err != nil {
		return nil, fmt.Errorf("decode gateway body: %w", err)
	}
	if body.Signature == "" || body.Payload == "" {
		return nil, errors.New("gateway body missing signature or payload")
	}

	n, err := v.Parse(body.Signature, body.Payload)
	if err != nil {
		return nil, err
	}
	if n.Dispute == nil {
		return nil, errors.New("gateway notification has no dispute")
	}
	d := n.Dispute

	createdAt, err := requireTime(d.CreatedAt, "created_at")
	if err != nil {
		return nil, err
	}
	respondBy, err := requireTime(d.ReplyBy, "reply_by")
	if err != nil {
		return nil, err
	}

	reasonCode := d.ReasonCode
	return &disputes.Record{
		Source:            disputes.SourceGateway,
		ExternalID:        d.ID,
		CreatedAt:         createdAt,
		DisputedAt:        n.Timestamp.Format(disputes.TimeLayout),
		HookEvent:         n.Kind,
		DisputeEvent:      d.Kind,
		Status:            d.Status,
		Reason:            d.Reason,
		ReasonCode:        &reasonCode,
		ReasonDescription: d.ReasonDescription,
		Currency:          d.CurrencyISOCode,
		Amount:            decimalToCents(d.Amount),
		AmountDisputed:    decimalToCents(d.AmountDisputed),
		AmountWon:         decimalToCents(d.AmountWon),
		RespondBy:         respondBy,
		CaseNumber:        d.CaseNumber,
		ExternalChargeID:  nil, // never supplied by this source
	}, nil
}

// decimalToCents converts decimal currency units to integer minor units.
// The integer conversion truncates rather than rounds (12.999 -> 1299);
// this matches the deployed behavior and is kept deliberately.
func decimalToCents(v *float64) *int64 {
	if v == nil {
		return nil
	}
	cents := int64(*v * 100)
	return &cents
}

func requireTime(t *time.Time, field string) (string, error) {
	if t == nil {
		return "", fmt.Errorf("gateway dispute missing %s", field)
	}
	return t.Format(disputes.TimeLayout), nil
}
