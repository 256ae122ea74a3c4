package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"coursehub-backend/internal/domains/idempotency/model"
	"coursehub-backend/pkg/database"
)

// mockRepository implements repo.RepositoryInterface in memory, keyed by
// (key, user, operation)
type mockRepository struct {
	records map[string]*model.IdempotencyRecord

	GetErr    error
	CreateErr error

	MarkCompletedCalls int
	MarkFailedCalls    int
	LastErrorMessage   string
	DeletedIDs         []uuid.UUID
}

func newMockRepository() *mockRepository {
	return &mockRepository{records: make(map[string]*model.IdempotencyRecord)}
}

func recordKey(key string, userID uuid.UUID, operationType string) string {
	return key + "|" + userID.String() + "|" + operationType
}

func (m *mockRepository) GetByKey(_ context.Context, key string, userID uuid.UUID, operationType string) (*model.IdempotencyRecord, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.records[recordKey(key, userID, operationType)], nil
}

func (m *mockRepository) Create(_ context.Context, record *model.IdempotencyRecord) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	k := recordKey(record.Key, record.UserID, record.OperationType)
	if _, exists := m.records[k]; exists {
		return model.ErrDuplicateRecord
	}
	m.records[k] = record
	return nil
}

func (m *mockRepository) MarkCompletedTx(_ context.Context, _ pgx.Tx, recordID uuid.UUID, responsePayload []byte) error {
	m.MarkCompletedCalls++
	for _, r := range m.records {
		if r.ID == recordID {
			r.Status = model.StatusCompleted
			r.ResponsePayload = responsePayload
			return nil
		}
	}
	return model.ErrRecordNotFound
}

func (m *mockRepository) MarkFailed(_ context.Context, recordID uuid.UUID, errorMessage string) error {
	m.MarkFailedCalls++
	m.LastErrorMessage = errorMessage
	for _, r := range m.records {
		if r.ID == recordID {
			r.Status = model.StatusFailed
			r.ErrorMessage = &errorMessage
			return nil
		}
	}
	return model.ErrRecordNotFound
}

func (m *mockRepository) Delete(_ context.Context, recordID uuid.UUID) error {
	m.DeletedIDs = append(m.DeletedIDs, recordID)
	for k, r := range m.records {
		if r.ID == recordID {
			delete(m.records, k)
			return nil
		}
	}
	return nil
}

func (m *mockRepository) CleanupExpired(_ context.Context) (int, error) {
	return 0, nil
}

// fakeTxRunner runs the function directly with a nil transaction; the mocks
// never touch it
type fakeTxRunner struct {
	Err error
}

func (f *fakeTxRunner) RunInTx(_ context.Context, fn database.TxFunc) error {
	if f.Err != nil {
		return f.Err
	}
	return fn(nil)
}
