package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"coursehub-backend/internal/domains/idempotency/model"
	repo "coursehub-backend/internal/domains/idempotency/repository"
	"coursehub-backend/pkg/database"
	"coursehub-backend/pkg/logger"
)

// Service makes any operation safe to retry: it records the request
// fingerprint and outcome per (key, user, operation), replays completed
// results, and rejects key reuse with a different request body.
type Service struct {
	repository repo.RepositoryInterface
	txRunner   database.TxRunner
	recordTTL  time.Duration
	now        func() time.Time
}

func NewService(r repo.RepositoryInterface, txRunner database.TxRunner, recordTTL time.Duration) *Service {
	return &Service{
		repository: r,
		txRunner:   txRunner,
		recordTTL:  recordTTL,
		now:        time.Now,
	}
}

// NewServiceWithClock builds a service with an injected clock for
// deterministic expiry tests
func NewServiceWithClock(r repo.RepositoryInterface, txRunner database.TxRunner, recordTTL time.Duration, now func() time.Time) *Service {
	return &Service{
		repository: r,
		txRunner:   txRunner,
		recordTTL:  recordTTL,
		now:        now,
	}
}

// Outcome wraps the operation result with a replay marker. Replayed data is
// byte-identical to the original execution; the flag exists for logging.
type Outcome[T any] struct {
	Data     T
	Replayed bool
}

// Operation is the wrapped business effect. It runs inside the same
// transaction that finalizes the idempotency record, so effect and record
// commit or roll back together.
type Operation[T any] func(ctx context.Context, tx pgx.Tx) (T, error)

// FingerprintPayload computes a stable hash of the request payload:
// canonical JSON (sorted object keys) fed through SHA-256
func FingerprintPayload(payload interface{}) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	// Round-trip through interface{} so map keys serialize sorted regardless
	// of the caller's struct field order
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("failed to canonicalize payload: %w", err)
	}

	canonical, err := json.Marshal(generic)
	if err != nil {
		return "", fmt.Errorf("failed to marshal canonical payload: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Execute runs op at most once for the given (key, user, operation) triple.
//
// A completed record with a matching fingerprint replays the stored response.
// A record still in_progress, or one that failed, blocks the key until it
// expires: retrying a failed attempt requires a fresh key.
func Execute[T any](ctx context.Context, s *Service, key string, userID uuid.UUID, operationType string, payload interface{}, op Operation[T]) (Outcome[T], error) {
	var zero Outcome[T]

	// Step 1: Idempotency is mandatory once this path is taken
	if key == "" {
		return zero, model.NewMissingKeyError()
	}

	// Step 2: Fingerprint the request
	hash, err := FingerprintPayload(payload)
	if err != nil {
		return zero, err
	}

	// Step 3: Claim the key. Two passes: if the insert loses a creation race,
	// re-read and treat the winner's record as the existing one.
	var record *model.IdempotencyRecord
	for attempt := 0; attempt < 2; attempt++ {
		existing, err := s.repository.GetByKey(ctx, key, userID, operationType)
		if err != nil {
			return zero, fmt.Errorf("failed to look up idempotency record: %w", err)
		}

		if existing != nil {
			outcome, done, err := resolveExisting[T](ctx, s, existing, hash)
			if done {
				return outcome, err
			}
			// Expired record was deleted; fall through and claim fresh
		}

		fresh := model.NewRecord(key, userID, operationType, hash, s.now(), s.recordTTL)
		err = s.repository.Create(ctx, fresh)
		if err == nil {
			record = fresh
			break
		}
		if err != model.ErrDuplicateRecord {
			return zero, fmt.Errorf("failed to create idempotency record: %w", err)
		}
		// Lost the race; loop once more to load the winner's record
	}

	if record == nil {
		// Both passes lost the race; treat as concurrent in-progress
		return zero, model.NewOperationInProgressError(key, model.StatusInProgress)
	}

	// Step 4: Run the operation and finalize the record in one transaction
	var data T
	txErr := s.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
		var opErr error
		data, opErr = op(ctx, tx)
		if opErr != nil {
			return opErr
		}

		responsePayload, marshalErr := json.Marshal(data)
		if marshalErr != nil {
			return fmt.Errorf("failed to serialize operation result: %w", marshalErr)
		}

		return s.repository.MarkCompletedTx(ctx, tx, record.ID, responsePayload)
	})

	if txErr != nil {
		// The business transaction rolled back; persist the failure outside it
		// so the key stays blocked until expiry
		if markErr := s.repository.MarkFailed(ctx, record.ID, txErr.Error()); markErr != nil {
			logger.ErrorWithFields("Failed to persist idempotency failure", markErr, map[string]interface{}{
				"key":       key,
				"operation": operationType,
			})
		}
		return zero, txErr
	}

	return Outcome[T]{Data: data, Replayed: false}, nil
}

// resolveExisting decides what an existing record means for this call.
// done=false means the record expired and was cleared: caller re-executes.
func resolveExisting[T any](ctx context.Context, s *Service, existing *model.IdempotencyRecord, hash string) (Outcome[T], bool, error) {
	var zero Outcome[T]

	// A key is bound to exactly one request body
	if existing.RequestHash != hash {
		return zero, true, model.NewKeyReusedError(existing.Key)
	}

	if existing.IsExpired(s.now()) {
		if err := s.repository.Delete(ctx, existing.ID); err != nil {
			return zero, true, fmt.Errorf("failed to clear expired record: %w", err)
		}
		return zero, false, nil
	}

	if existing.IsReplayable(s.now()) {
		var data T
		if err := json.Unmarshal(existing.ResponsePayload, &data); err != nil {
			return zero, true, fmt.Errorf("failed to deserialize stored response: %w", err)
		}
		logger.Info("Replayed idempotent operation", map[string]interface{}{
			"key":       existing.Key,
			"operation": existing.OperationType,
		})
		return Outcome[T]{Data: data, Replayed: true}, true, nil
	}

	// in_progress or failed and not expired
	return zero, true, model.NewOperationInProgressError(existing.Key, existing.Status)
}

// CleanupExpired sweeps expired records; wired to the worker's cron schedule
func (s *Service) CleanupExpired(ctx context.Context) (int, error) {
	deleted, err := s.repository.CleanupExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup idempotency records: %w", err)
	}

	if deleted > 0 {
		logger.Info("Cleaned up expired idempotency records", map[string]interface{}{
			"deleted": deleted,
		})
	}

	return deleted, nil
}
