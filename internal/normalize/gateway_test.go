package normalize

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/imrishuroy/go-dispute-reconciler/internal/disputes"
	"github.com/imrishuroy/go-dispute-reconciler/internal/envelope"
	"github.com/imrishuroy/go-dispute-reconciler/internal/gateway"
)

// fakeVerifier returns a canned notification or error; verification itself
// is covered by the SDK, not here.
type fakeVerifier struct {
	n   *gateway.Notification
	err error

	gotSignature string
	gotPayload   string
}

func (f *fakeVerifier) Parse(signature, payload string) (*gateway.Notification, error) {
	f.gotSignature = signature
	f.gotPayload = payload
	if f.err != nil {
		return nil, f.err
	}
	return f.n, nil
}

func fptr(v float64) *float64 { return &v }

func gatewayEnvelope(t *testing.T) *envelope.Envelope {
	t.Helper()
	e, err := envelope.Decode([]byte(`{"method":"POST","headers":{},"body":{"bt_signature":"sig-1","bt_payload":"payload-1"}}`))
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return e
}

func TestGateway_MapsVerifiedNotification(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	replyBy := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	hooked := time.Date(2024, 3, 1, 9, 31, 2, 0, time.UTC)

	v := &fakeVerifier{n: &gateway.Notification{
		Timestamp: hooked,
		Kind:      "dispute_opened",
		Dispute: &gateway.Dispute{
			ID:                "dsp_1",
			Kind:              "chargeback",
			Status:            "open",
			Reason:            "fraud",
			ReasonCode:        "83",
			ReasonDescription: "fraudulent transaction",
			CurrencyISOCode:   "USD",
			CaseNumber:        "CB123456",
			Amount:            fptr(250.00),
			AmountDisputed:    fptr(10.554),
			AmountWon:         fptr(0),
			CreatedAt:         &created,
			ReplyBy:           &replyBy,
		},
	}}

	rec, err := Gateway(gatewayEnvelope(t), v)
	if err != nil {
		t.Fatalf("Gateway error: %v", err)
	}
	if v.gotSignature != "sig-1" || v.gotPayload != "payload-1" {
		t.Fatalf("verifier got %q/%q", v.gotSignature, v.gotPayload)
	}
	if rec.Source != disputes.SourceGateway {
		t.Fatalf("source mismatch: %s", rec.Source)
	}
	if rec.ExternalID != "dsp_1" || rec.CaseNumber != "CB123456" {
		t.Fatalf("id/case mismatch: %+v", rec)
	}
	if rec.CreatedAt != "2024-03-01 09:30:00" {
		t.Fatalf("created_at format: %s", rec.CreatedAt)
	}
	if rec.DisputedAt != "2024-03-01 09:31:02" {
		t.Fatalf("disputed_at format: %s", rec.DisputedAt)
	}
	if rec.RespondBy != "2024-03-15 00:00:00" {
		t.Fatalf("respond_by format: %s", rec.RespondBy)
	}
	if rec.Amount == nil || *rec.Amount != 25000 {
		t.Fatalf("amount mismatch: %+v", rec.Amount)
	}
	if rec.AmountDisputed == nil || *rec.AmountDisputed != 1055 {
		t.Fatalf("amount_disputed mismatch: %+v", rec.AmountDisputed)
	}
	if rec.ReasonCode == nil || *rec.ReasonCode != "83" {
		t.Fatalf("reason_code mismatch")
	}
	if rec.ExternalChargeID != nil {
		t.Fatalf("external_charge_id must be null for gateway source")
	}
}

func TestGateway_CentsConversionTruncates(t *testing.T) {
	// integer conversion truncates: 12.999 -> 1299, and 19.99 lands on 1998
	// because the float product sits just below 1999
	cases := []struct {
		in   float64
		want int64
	}{
		{12.999, 1299},
		{19.99, 1998},
		{0, 0},
	}
	for _, c := range cases {
		got := decimalToCents(&c.in)
		if got == nil || *got != c.want {
			t.Fatalf("decimalToCents(%v) = %v, want %d", c.in, got, c.want)
		}
	}
	if decimalToCents(nil) != nil {
		t.Fatalf("nil input must yield nil")
	}
}

func TestGateway_VerificationFailurePropagates(t *testing.T) {
	v := &fakeVerifier{err: errors.New("signature mismatch")}
	if _, err := Gateway(gatewayEnvelope(t), v); err == nil {
		t.Fatalf("expected verification error")
	}
}

func TestGateway_MissingSignaturePair(t *testing.T) {
	e, err := envelope.Decode([]byte(`{"method":"POST","headers":{},"body":{"bt_signature":"sig-1"}}`))
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	v := &fakeVerifier{}
	_, err = Gateway(e, v)
	if err == nil || !strings.Contains(err.Error(), "missing signature or payload") {
		t.Fatalf("expected missing-pair error, got %v", err)
	}
	if v.gotSignature != "" {
		t.Fatalf("verifier must not be called on incomplete body")
	}
}

func TestGateway_NoDisputeSubject(t *testing.T) {
	v := &fakeVerifier{n: &gateway.Notification{Kind: "check"}}
	if _, err := Gateway(gatewayEnvelope(t), v); err == nil {
		t.Fatalf("expected error for missing dispute subject")
	}
}
