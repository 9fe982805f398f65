package revision

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/lumohq/lumo-api/internal/domain"
	"github.com/lumohq/lumo-api/internal/store"
)

// mockMasteryStore is a hand-written TopicMasteryStore fake with per-test
// behavior injected through function fields. WithTx returns the same
// instance so call capture survives transaction scoping.
type mockMasteryStore struct {
	recordAttemptFn func(
		ctx context.Context,
		userID uuid.UUID,
		attempt store.AttemptRecord,
		now time.Time,
	) (*domain.TopicMastery, error)
	getFn          func(ctx context.Context, userID uuid.UUID, topic string) (*domain.TopicMastery, error)
	listByUserFn   func(ctx context.Context, userID uuid.UUID) ([]*domain.TopicMastery, error)
	listWeakFn     func(ctx context.Context, userID uuid.UUID) ([]*domain.TopicMastery, error)
	recordedAttempt *store.AttemptRecord
}

var _ store.TopicMasteryStore = (*mockMasteryStore)(nil)

func (m *mockMasteryStore) RecordAttempt(
	ctx context.Context,
	userID uuid.UUID,
	attempt store.AttemptRecord,
	now time.Time,
) (*domain.TopicMastery, error) {
	m.recordedAttempt = &attempt
	return m.recordAttemptFn(ctx, userID, attempt, now)
}

func (m *mockMasteryStore) Get(
	ctx context.Context,
	userID uuid.UUID,
	topic string,
) (*domain.TopicMastery, error) {
	return m.getFn(ctx, userID, topic)
}

func (m *mockMasteryStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.TopicMastery, error) {
	return m.listByUserFn(ctx, userID)
}

func (m *mockMasteryStore) ListWeakByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.TopicMastery, error) {
	return m.listWeakFn(ctx, userID)
}

func (m *mockMasteryStore) WithTx(tx *sql.Tx) store.TopicMasteryStore {
	return m
}

// mockScheduleStore is a hand-written RevisionScheduleStore fake.
type mockScheduleStore struct {
	createFn           func(ctx context.Context, entry *domain.RevisionScheduleEntry) error
	findOpenFn         func(ctx context.Context, userID, topicMasteryID uuid.UUID) (*domain.RevisionScheduleEntry, error)
	getOpenForUpdateFn func(ctx context.Context, userID, entryID uuid.UUID) (*domain.RevisionScheduleEntry, error)
	updateFn           func(ctx context.Context, entry *domain.RevisionScheduleEntry) error
	completeFn         func(ctx context.Context, entryID uuid.UUID, completedAt time.Time) error
	listDueFn          func(ctx context.Context, userID uuid.UUID, asOf time.Time) ([]*domain.RevisionScheduleEntry, error)

	createdEntries []*domain.RevisionScheduleEntry
	updatedEntries []*domain.RevisionScheduleEntry
	completedIDs   []uuid.UUID
	listDueAsOf    *time.Time
}

var _ store.RevisionScheduleStore = (*mockScheduleStore)(nil)

func (m *mockScheduleStore) Create(ctx context.Context, entry *domain.RevisionScheduleEntry) error {
	m.createdEntries = append(m.createdEntries, entry)
	if m.createFn != nil {
		return m.createFn(ctx, entry)
	}
	return nil
}

func (m *mockScheduleStore) FindOpen(
	ctx context.Context,
	userID, topicMasteryID uuid.UUID,
) (*domain.RevisionScheduleEntry, error) {
	return m.findOpenFn(ctx, userID, topicMasteryID)
}

func (m *mockScheduleStore) GetOpenForUpdate(
	ctx context.Context,
	userID, entryID uuid.UUID,
) (*domain.RevisionScheduleEntry, error) {
	return m.getOpenForUpdateFn(ctx, userID, entryID)
}

func (m *mockScheduleStore) Update(ctx context.Context, entry *domain.RevisionScheduleEntry) error {
	m.updatedEntries = append(m.updatedEntries, entry)
	if m.updateFn != nil {
		return m.updateFn(ctx, entry)
	}
	return nil
}

func (m *mockScheduleStore) Complete(
	ctx context.Context,
	entryID uuid.UUID,
	completedAt time.Time,
) error {
	m.completedIDs = append(m.completedIDs, entryID)
	if m.completeFn != nil {
		return m.completeFn(ctx, entryID, completedAt)
	}
	return nil
}

func (m *mockScheduleStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	asOf time.Time,
) ([]*domain.RevisionScheduleEntry, error) {
	m.listDueAsOf = &asOf
	if m.listDueFn != nil {
		return m.listDueFn(ctx, userID, asOf)
	}
	return nil, nil
}

func (m *mockScheduleStore) WithTx(tx *sql.Tx) store.RevisionScheduleStore {
	return m
}
