package runlock

import "time"

// LockRecord is the shape persisted in the run-lock DynamoDB table.
type LockRecord struct {
	LockKey    string    `dynamodbav:"lock_key"` // PK
	RunID      string    `dynamodbav:"run_id"`
	AcquiredAt time.Time `dynamodbav:"acquired_at"`
	ExpiresAt  int64     `dynamodbav:"expires_at"` // TTL epoch seconds
}
