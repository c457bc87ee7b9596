package gateway

import (
	"errors"
	"fmt"
	"math"
	"time"

	braintree "github.com/braintree-go/braintree-go"
)

// BraintreeVerifier is the production Verifier, backed by the Braintree SDK.
type BraintreeVerifier struct {
	bt *braintree.Braintree
}

// NewBraintreeVerifier builds a Verifier from merchant credentials.
func NewBraintreeVerifier(merchantID, publicKey, privateKey string) *BraintreeVerifier {
	return &BraintreeVerifier{
		bt: braintree.New(braintree.Production, merchantID, publicKey, privateKey),
	}
}

// Parse verifies the signed payload and maps the SDK notification onto our
// own types. Verification errors propagate unchanged; the caller treats
// them as a classification failure for that object.
func (v *BraintreeVerifier) Parse(signature, payload string) (*Notification, error) {
	wn, err := v.bt.WebhookNotification().Parse(signature, payload)
	if err != nil {
		return nil, fmt.Errorf("verify webhook notification: %w", err)
	}
	if wn.Subject == nil || wn.Subject.Dispute == nil {
		return nil, errors.New("notification carries no dispute subject")
	}

	d := wn.Subject.Dispute
	out := &Dispute{
		ID:              d.ID,
		Kind:            string(d.Kind),
		Status:          string(d.Status),
		Reason:          string(d.Reason),
		CurrencyISOCode: d.CurrencyISOCode,
		CaseNumber:      d.CaseNumber,
		AmountDisputed:  decimalUnits(d.AmountDisputed),
		AmountWon:       decimalUnits(d.AmountWon),
		CreatedAt:       d.CreatedAt,
	}
	if d.ReplyByDate != "" {
		// The SDK leaves reply-by-date as a raw "2006-01-02" string.
		t, err := time.Parse("2006-01-02", d.ReplyByDate)
		if err != nil {
			return nil, fmt.Errorf("parse reply-by-date: %w", err)
		}
		out.ReplyBy = &t
	}
	if d.Transaction != nil {
		out.Amount = decimalUnits(d.Transaction.Amount)
	}

	return &Notification{
		Timestamp: wn.Timestamp,
		Kind:      string(wn.Kind),
		Dispute:   out,
	}, nil
}

// decimalUnits converts the SDK's scaled decimal into decimal currency
// units (e.g. 12.34), or nil when absent.
func decimalUnits(d *braintree.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := float64(d.Unscaled) / math.Pow10(d.Scale)
	return &f
}
