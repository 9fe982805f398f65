package api

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/google/uuid"

	"github.com/lumohq/lumo-api/internal/api/shared"
	"github.com/lumohq/lumo-api/internal/domain"
	"github.com/lumohq/lumo-api/internal/service/revision"
	"github.com/lumohq/lumo-api/internal/store"
)

// authedRequest returns a copy of the request with the user ID injected into
// the context, as the auth middleware would do.
func authedRequest(r *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
	return r.WithContext(ctx)
}

// doRequest executes a handler against a recorder and returns it.
func doRequest(handler http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

// mockUserStore is a hand-written UserStore fake.
type mockUserStore struct {
	createFn     func(ctx context.Context, user *domain.User) error
	getByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByEmailFn func(ctx context.Context, email string) (*domain.User, error)
}

var _ store.UserStore = (*mockUserStore)(nil)

func (m *mockUserStore) Create(ctx context.Context, user *domain.User) error {
	return m.createFn(ctx, user)
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.getByEmailFn(ctx, email)
}

func (m *mockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}

// mockJWTService issues a fixed token and validates to a fixed user.
type mockJWTService struct {
	token       string
	generateErr error
	userID      uuid.UUID
	validateErr error
}

func (m *mockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.token, nil
}

func (m *mockJWTService) ValidateToken(
	ctx context.Context,
	tokenString string,
) (uuid.UUID, error) {
	if m.validateErr != nil {
		return uuid.Nil, m.validateErr
	}
	return m.userID, nil
}

// mockPasswordVerifier accepts or rejects every comparison.
type mockPasswordVerifier struct {
	err error
}

func (m *mockPasswordVerifier) Compare(hashedPassword, password string) error {
	return m.err
}

// mockRevisionService is a hand-written revision.Service fake.
type mockRevisionService struct {
	submitFn   func(ctx context.Context, userID uuid.UUID, result revision.AssessmentResult) (*revision.SubmitOutcome, error)
	listDueFn  func(ctx context.Context, userID uuid.UUID, asOf time.Time) ([]*domain.RevisionScheduleEntry, error)
	completeFn func(ctx context.Context, userID, entryID uuid.UUID, quality domain.ReviewQuality) (*domain.RevisionScheduleEntry, error)
	generateFn func(ctx context.Context, userID uuid.UUID) (int, error)
}

var _ revision.Service = (*mockRevisionService)(nil)

func (m *mockRevisionService) SubmitAssessment(
	ctx context.Context,
	userID uuid.UUID,
	result revision.AssessmentResult,
) (*revision.SubmitOutcome, error) {
	return m.submitFn(ctx, userID, result)
}

func (m *mockRevisionService) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	asOf time.Time,
) ([]*domain.RevisionScheduleEntry, error) {
	return m.listDueFn(ctx, userID, asOf)
}

func (m *mockRevisionService) CompleteRevision(
	ctx context.Context,
	userID, entryID uuid.UUID,
	quality domain.ReviewQuality,
) (*domain.RevisionScheduleEntry, error) {
	return m.completeFn(ctx, userID, entryID, quality)
}

func (m *mockRevisionService) GenerateSchedules(
	ctx context.Context,
	userID uuid.UUID,
) (int, error) {
	return m.generateFn(ctx, userID)
}

// mockMasteryStore is a hand-written TopicMasteryStore fake for the mastery
// handler tests.
type mockMasteryStore struct {
	listByUserFn func(ctx context.Context, userID uuid.UUID) ([]*domain.TopicMastery, error)
	listWeakFn   func(ctx context.Context, userID uuid.UUID) ([]*domain.TopicMastery, error)
}

var _ store.TopicMasteryStore = (*mockMasteryStore)(nil)

func (m *mockMasteryStore) RecordAttempt(
	ctx context.Context,
	userID uuid.UUID,
	attempt store.AttemptRecord,
	now time.Time,
) (*domain.TopicMastery, error) {
	panic("not used in handler tests")
}

func (m *mockMasteryStore) Get(
	ctx context.Context,
	userID uuid.UUID,
	topic string,
) (*domain.TopicMastery, error) {
	panic("not used in handler tests")
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
