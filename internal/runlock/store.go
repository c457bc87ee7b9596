// Package runlock guards the reconciliation worker against overlapping
// scheduled invocations with a DynamoDB conditional-put lock. The TTL
// window lets a lock abandoned by a crashed run expire on its own.
package runlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/imrishuroy/go-dispute-reconciler/internal/aws"
)

// Store encapsulates run-lock operations against DynamoDB.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	ttlWindow time.Duration
	nowFunc   func() time.Time
}

// NewStore returns a configured Store.
// ttlWindow bounds how long a crashed run can hold the lock.
func NewStore(client aws.DynamoDBAPI, tableName string, ttlWindow time.Duration) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
	}
}

// Acquire attempts to take the named lock for runID.
// Returns (true, nil) when the lock was taken.
// Returns (false, nil) when another run already holds it.
func (s *Store) Acquire(ctx context.Context, key, runID string) (bool, error) {
	now := s.nowFunc()
	rec := LockRecord{
		LockKey:    key,
		RunID:      runID,
		AcquiredAt: now,
		ExpiresAt:  now.Add(s.ttlWindow).Unix(),
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return false, fmt.Errorf("marshal lock record: %w", err)
	}

	input := &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
		// Only create when attribute_not_exists(lock_key)
		ConditionExpression: awsString("attribute_not_exists(lock_key)"),
	}

	_, err = s.client.PutItem(ctx, input)
	if err != nil {
		var sc smithy.APIError
		if errors.As(err, &sc) && sc.ErrorCode() == "ConditionalCheckFailedException" {
			return false, nil
		}
		return false, fmt.Errorf("put lock item: %w", err)
	}

	return true, nil
}

// Get retrieves the current lock record, or (nil, nil) if none is held.
func (s *Store) Get(ctx context.Context, key string) (*LockRecord, error) {
	input := &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"lock_key": &types.AttributeValueMemberS{Value: key},
		},
	}
	out, err := s.client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("get lock item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec LockRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal lock record: %w", err)
	}
	return &rec, nil
}

// Release deletes the lock so the next scheduled run can start immediately.
func (s *Store) Release(ctx context.Context, key string) error {
	input := &dyn.DeleteItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"lock_key": &types.AttributeValueMemberS{Value: key},
		},
	}
	if _, err := s.client.DeleteItem(ctx, input); err != nil {
		return fmt.Errorf("delete lock item: %w", err)
	}
	return nil
}

// Helper
func awsString(s string) *string { return &s }
