package normalize

import (
	"encoding/json"
	"fmt"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-dispute-reconciler/internal/disputes"
	"github.com/imrishuroy/go-dispute-reconciler/internal/envelope"
	"github.com/imrishuroy/go-dispute-reconciler/internal/validation"
)

// platformEvent is the payments-platform webhook body. The capture path
// already verified the signature header; no re-verification happens here.
type platformEvent struct {
	ID      string `json:"id" validate:"required"`
	Type    string `json:"type" validate:"required"`
	Created int64  `json:"created" validate:"required"`
	Data    struct {
		Object platformDispute `json:"object"`
	} `json:"data"`
}

type platformDispute struct {
	ID              string `json:"id" validate:"required"`
	Created         int64  `json:"created" validate:"required"`
	Status          string `json:"status"`
	Reason          string `json:"reason"`
	Amount          int64  `json:"amount"`
	Charge          string `json:"charge"`
	EvidenceDetails struct {
		DueBy int64 `json:"due_by"`
	} `json:"evidence_details"`
	// The first entry is the authoritative line item; an empty list is a
	// malformed payload and fails validation.
	BalanceTransactions []balanceTransaction `json:"balance_transactions" validate:"min=1"`
}

type balanceTransaction struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Currency    string `json:"currency"`
	Amount      int64  `json:"amount"`
}

var platformValidate = validation.New()

// Platform decodes the platform webhook body into a canonical record.
// Epoch timestamps convert to the same fixed layout the gateway side uses.
func Platform(env *envelope.Envelope) (*disputes.Record, error) {
	return platform(env, platformValidate)
}

func platform(env *envelope.Envelope, v *validatorv10.Validate) (*disputes.Record, error) {
	var ev platformEvent
	if err := json.Unmarshal(env.Body, &ev); err != nil {
		return nil, fmt.Errorf("decode platform body: %w", err)
	}
	if err := v.Struct(ev); err != nil {
		return nil, fmt.Errorf("invalid platform payload: %v", validation.ErrorMap(err))
	}

	d := ev.Data.Object
	bt := d.BalanceTransactions[0]

	amount := d.Amount
	disputed := bt.Amount
	charge := d.Charge
	return &disputes.Record{
		Source:            disputes.SourcePlatform,
		ExternalID:        d.ID,
		CreatedAt:         epochToTimestamp(ev.Created),
		DisputedAt:        epochToTimestamp(d.Created),
		HookEvent:         ev.Type,
		DisputeEvent:      bt.Type,
		Status:            d.Status,
		Reason:            d.Reason,
		ReasonCode:        nil, // never supplied by this source
		ReasonDescription: bt.Description,
		Currency:          bt.Currency,
		Amount:            &amount,
		AmountDisputed:    &disputed,
		AmountWon:         nil, // never supplied by this source
		RespondBy:         epochToTimestamp(d.EvidenceDetails.DueBy),
		CaseNumber:        ev.ID,
		ExternalChargeID:  &charge,
	}, nil
}

func epochToTimestamp(epoch int64) string {
	return time.Unix(epoch, 0).Format(disputes.TimeLayout)
}
