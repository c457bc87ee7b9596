package disputes

// Source values stored in the disputes table.
const (
	SourceGateway  = "gateway"
	SourcePlatform = "platform"
)

// TimeLayout is the fixed timestamp format both normalizers emit, so the
// destination columns type identically regardless of source.
const TimeLayout = "2006-01-02 15:04:05"

// Record is the canonical dispute row. One staged envelope yields at most
// one Record; records are immutable and insert-only. Nullable fields are
// pointers — a field one source never supplies is still present (as NULL)
// so a single fixed-column insert serves both sources.
type Record struct {
	Source            string
	ExternalID        string
	CreatedAt         string
	DisputedAt        string
	HookEvent         string
	DisputeEvent      string
	Status            string
	Reason            string
	ReasonCode        *string
	ReasonDescription string
	Currency          string
	Amount            *int64 // integer minor units
	AmountDisputed    *int64
	AmountWon         *int64
	RespondBy         string
	CaseNumber        string
	ExternalChargeID  *string // platform source only
}

// Columns returns the destination column names in their fixed order.
// Values must stay in lockstep.
func (r *Record) Columns() []string {
	return []string{
		"source",
		"external_id",
		"created_at",
		"disputed_at",
		"hook_event",
		"dispute_event",
		"status",
		"reason",
		"reason_code",
		"reason_description",
		"currency",
		"amount",
		"amount_disputed",
		"amount_won",
		"respond_by",
		"case_number",
		"external_charge_id",
	}
}

// Values returns the insert arguments in the same order as Columns.
func (r *Record) Values() []any {
	return []any{
		r.Source,
		r.ExternalID,
		r.CreatedAt,
		r.DisputedAt,
		r.HookEvent,
		r.DisputeEvent,
		r.Status,
		r.Reason,
		r.ReasonCode,
		r.ReasonDescription,
		r.Currency,
		r.Amount,
		r.AmountDisputed,
		r.AmountWon,
		r.RespondBy,
		r.CaseNumber,
		r.ExternalChargeID,
	}
}
