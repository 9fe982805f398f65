package revision

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lumohq/lumo-api/internal/domain"
	"github.com/lumohq/lumo-api/internal/domain/srs"
	"github.com/lumohq/lumo-api/internal/platform/logger"
	"github.com/lumohq/lumo-api/internal/store"
)

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

// serviceImpl implements the Service interface.
type serviceImpl struct {
	db            *sql.DB
	masteryStore  store.TopicMasteryStore
	scheduleStore store.RevisionScheduleStore
	srsService    srs.Service
	now           func() time.Time
	logger        *slog.Logger
}

// NewService creates a new revision Service implementation.
//
// now supplies the current instant for all date arithmetic; pass nil for
// the wall clock. Injecting it keeps "today" deterministic in tests and is
// the seam for any future per-user timezone handling.
func NewService(
	db *sql.DB,
	masteryStore store.TopicMasteryStore,
	scheduleStore store.RevisionScheduleStore,
	srsService srs.Service,
	now func() time.Time,
	log *slog.Logger,
) Service {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if masteryStore == nil {
		panic("masteryStore cannot be nil")
	}
	if scheduleStore == nil {
		panic("scheduleStore cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}

	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if log == nil {
		log = slog.Default()
	}

	return &serviceImpl{
		db:            db,
		masteryStore:  masteryStore,
		scheduleStore: scheduleStore,
		srsService:    srsService,
		now:           now,
		logger:        log.With(slog.String("component", "revision_service")),
	}
}

// today returns the current date truncated to midnight UTC. All
// next_review_date arithmetic works on whole days.
func (s *serviceImpl) today() time.Time {
	return dateOf(s.now())
}

// dateOf truncates an instant to its UTC calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SubmitAssessment implements Service.SubmitAssessment.
func (s *serviceImpl) SubmitAssessment(
	ctx context.Context,
	userID uuid.UUID,
	result AssessmentResult,
) (*SubmitOutcome, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Reject malformed input before any state mutation.
	if err := domain.ValidateAttemptCounts(result.TotalQuestions, result.CorrectCount); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCounts, err)
	}
	if !result.BloomLevel.Valid() {
		return nil, ErrInvalidBloomLevel
	}

	log.Debug("processing assessment result",
		slog.String("user_id", userID.String()),
		slog.String("topic", result.Topic),
		slog.Int("total_questions", result.TotalQuestions),
		slog.Int("correct_count", result.CorrectCount))

	var outcome *SubmitOutcome
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		masteryStore := s.masteryStore.WithTx(tx)
		scheduleStore := s.scheduleStore.WithTx(tx)

		mastery, err := masteryStore.RecordAttempt(ctx, userID, store.AttemptRecord{
			Topic:          result.Topic,
			Subject:        result.Subject,
			BloomLevel:     result.BloomLevel,
			TotalQuestions: result.TotalQuestions,
			CorrectCount:   result.CorrectCount,
		}, s.now())
		if err != nil {
			return fmt.Errorf("failed to record attempt: %w", err)
		}

		outcome = &SubmitOutcome{Mastery: mastery}

		// A topic that is no longer weak keeps any open entry it already
		// has: an overdue spaced review is still worth doing even when the
		// raw average looks fixed.
		if !mastery.IsWeak {
			return nil
		}

		entry, created, err := s.scheduleIfUnscheduled(ctx, scheduleStore, mastery)
		if err != nil {
			return err
		}

		outcome.Scheduled = created
		if created {
			outcome.Entry = entry
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCounts) || errors.Is(err, ErrInvalidBloomLevel) {
			return nil, err
		}
		log.Error("failed to submit assessment",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("topic", result.Topic))
		return nil, &ServiceError{
			Operation: "submit_assessment",
			Message:   "could not record assessment result",
			Err:       err,
		}
	}

	log.Debug("assessment processed",
		slog.String("user_id", userID.String()),
		slog.String("topic", result.Topic),
		slog.Int("mastery_score", outcome.Mastery.MasteryScore),
		slog.Bool("is_weak", outcome.Mastery.IsWeak),
		slog.Bool("scheduled", outcome.Scheduled))

	return outcome, nil
}

// ListDue implements Service.ListDue.
func (s *serviceImpl) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	asOf time.Time,
) ([]*domain.RevisionScheduleEntry, error) {
	if asOf.IsZero() {
		asOf = s.today()
	} else {
		asOf = dateOf(asOf)
	}

	entries, err := s.scheduleStore.ListDue(ctx, userID, asOf)
	if err != nil {
		return nil, &ServiceError{
			Operation: "list_due",
			Message:   "could not list due revisions",
			Err:       err,
		}
	}

	return entries, nil
}

// CompleteRevision implements Service.CompleteRevision.
func (s *serviceImpl) CompleteRevision(
	ctx context.Context,
	userID, entryID uuid.UUID,
	quality domain.ReviewQuality,
) (*domain.RevisionScheduleEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !quality.Valid() {
		return nil, ErrInvalidQuality
	}

	var open *domain.RevisionScheduleEntry
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		scheduleStore := s.scheduleStore.WithTx(tx)

		entry, err := scheduleStore.GetOpenForUpdate(ctx, userID, entryID)
		if err != nil {
			if errors.Is(err, store.ErrScheduleEntryNotFound) {
				return ErrEntryNotFound
			}
			if errors.Is(err, store.ErrEntryCompleted) {
				return ErrEntryCompleted
			}
			return fmt.Errorf("failed to load schedule entry: %w", err)
		}

		next, err := s.srsService.NextSchedule(srs.Schedule{
			IntervalDays:    entry.IntervalDays,
			EaseFactor:      entry.EaseFactor,
			RepetitionCount: entry.RepetitionCount,
		}, quality)
		if err != nil {
			return fmt.Errorf("failed to compute next schedule: %w", err)
		}

		now := s.now()
		reviewDate := s.today().AddDate(0, 0, next.IntervalDays)

		if quality.Passing() {
			// Close the current entry and carry the grown schedule into a
			// fresh open successor.
			if err := scheduleStore.Complete(ctx, entry.ID, now); err != nil {
				return fmt.Errorf("failed to complete schedule entry: %w", err)
			}

			successor := &domain.RevisionScheduleEntry{
				ID:              uuid.New(),
				UserID:          entry.UserID,
				TopicMasteryID:  entry.TopicMasteryID,
				Topic:           entry.Topic,
				Subject:         entry.Subject,
				NextReviewDate:  reviewDate,
				IntervalDays:    next.IntervalDays,
				EaseFactor:      next.EaseFactor,
				RepetitionCount: next.RepetitionCount,
				IsCompleted:     false,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := scheduleStore.Create(ctx, successor); err != nil {
				return fmt.Errorf("failed to create successor entry: %w", err)
			}
			open = successor
			return nil
		}

		// Failed recall: the spacing curve restarts on the same entry.
		entry.IntervalDays = next.IntervalDays
		entry.EaseFactor = next.EaseFactor
		entry.RepetitionCount = next.RepetitionCount
		entry.NextReviewDate = reviewDate
		entry.UpdatedAt = now

		if err := scheduleStore.Update(ctx, entry); err != nil {
			return fmt.Errorf("failed to reset schedule entry: %w", err)
		}
		open = entry
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) || errors.Is(err, ErrEntryCompleted) {
			return nil, err
		}
		log.Error("failed to complete revision",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("entry_id", entryID.String()))
		return nil, &ServiceError{
			Operation: "complete_revision",
			Message:   "could not complete revision",
			Err:       err,
		}
	}

	log.Debug("revision completed",
		slog.String("user_id", userID.String()),
		slog.String("entry_id", entryID.String()),
		slog.Int("quality", int(quality)),
		slog.Bool("passed", quality.Passing()),
		slog.Int("interval_days", open.IntervalDays),
		slog.Float64("ease_factor", open.EaseFactor),
		slog.Time("next_review_date", open.NextReviewDate))

	return open, nil
}

// GenerateSchedules implements Service.GenerateSchedules.
func (s *serviceImpl) GenerateSchedules(ctx context.Context, userID uuid.UUID) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	created := 0
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		masteryStore := s.masteryStore.WithTx(tx)
		scheduleStore := s.scheduleStore.WithTx(tx)

		weak, err := masteryStore.ListWeakByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to list weak topics: %w", err)
		}

		for _, mastery := range weak {
			_, wasCreated, err := s.scheduleIfUnscheduled(ctx, scheduleStore, mastery)
			if err != nil {
				return err
			}
			if wasCreated {
				created++
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to generate schedules",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, &ServiceError{
			Operation: "generate_schedules",
			Message:   "could not generate revision schedules",
			Err:       err,
		}
	}

	log.Debug("generated schedules",
		slog.String("user_id", userID.String()),
		slog.Int("created", created))

	return created, nil
}

// scheduleIfUnscheduled creates an open entry for a weak topic unless one
// already exists. A concurrent creation losing the race on the partial
// unique index is treated the same as finding an existing entry.
func (s *serviceImpl) scheduleIfUnscheduled(
	ctx context.Context,
	scheduleStore store.RevisionScheduleStore,
	mastery *domain.TopicMastery,
) (*domain.RevisionScheduleEntry, bool, error) {
	_, err := scheduleStore.FindOpen(ctx, mastery.UserID, mastery.ID)
	if err == nil {
		return nil, false, nil
	}
	if !errors.Is(err, store.ErrScheduleEntryNotFound) {
		return nil, false, fmt.Errorf("failed to look up open entry: %w", err)
	}

	interval := s.srsService.InitialInterval(mastery.MasteryScore)
	now := s.now()

	entry, err := domain.NewRevisionScheduleEntry(
		mastery.UserID,
		mastery.ID,
		mastery.Topic,
		mastery.Subject,
		interval,
		s.today().AddDate(0, 0, interval),
		now,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build schedule entry: %w", err)
	}
	entry.EaseFactor = s.srsService.InitialEaseFactor()

	if err := scheduleStore.Create(ctx, entry); err != nil {
		if errors.Is(err, store.ErrOpenEntryExists) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to create schedule entry: %w", err)
	}

	return entry, true, nil
}
