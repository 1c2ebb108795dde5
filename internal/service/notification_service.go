package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/learnup-app/learnup-api/internal/models"
	"github.com/learnup-app/learnup-api/pkg/config"
	appErrors "github.com/learnup-app/learnup-api/pkg/errors"
)

type feedParentRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Parent, error)
}

type feedStudentRepository interface {
	FindByParent(ctx context.Context, parentID string) ([]models.Student, error)
}

type feedNoteRepository interface {
	List(ctx context.Context, filter models.NoteFilter) ([]models.NoteDetail, error)
}

type feedAbsenceRepository interface {
	List(ctx context.Context, filter models.AbsenceFilter) ([]models.AbsenceDetail, error)
}

type feedInvoiceRepository interface {
	List(ctx context.Context, filter models.InvoiceFilter) ([]models.Invoice, int, error)
}

// NotificationService assembles the per-parent notification feed from
// absences, notes and unpaid invoices. Results are cached in redis.
type NotificationService struct {
	parents  feedParentRepository
	students feedStudentRepository
	notes    feedNoteRepository
	absences feedAbsenceRepository
	invoices feedInvoiceRepository
	cache    *redis.Client
	metrics  *MetricsService
	cfg      config.NotificationsConfig
	logger   *zap.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(
	parents feedParentRepository,
	students feedStudentRepository,
	notes feedNoteRepository,
	absences feedAbsenceRepository,
	invoices feedInvoiceRepository,
	cache *redis.Client,
	metrics *MetricsService,
	cfg config.NotificationsConfig,
	logger *zap.Logger,
) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		parents:  parents,
		students: students,
		notes:    notes,
		absences: absences,
		invoices: invoices,
		cache:    cache,
		metrics:  metrics,
		cfg:      cfg,
		logger:   logger,
	}
}

// FeedForUser resolves the parent behind the account and returns their feed.
// The second return reports whether the feed came from cache.
func (s *NotificationService) FeedForUser(ctx context.Context, userID string) (*models.NotificationFeed, bool, error) {
	parent, err := s.parents.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "parent profile not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve parent")
	}
	return s.Feed(ctx, parent.ID)
}

// Feed returns the aggregated feed for a parent, cache first.
func (s *NotificationService) Feed(ctx context.Context, parentID string) (*models.NotificationFeed, bool, error) {
	cacheKey := fmt.Sprintf("feed:parent:%s", parentID)

	if s.cache != nil {
		raw, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var cached models.NotificationFeed
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				s.metrics.ObserveCacheLookup(true)
				return &cached, true, nil
			}
		}
		s.metrics.ObserveCacheLookup(false)
	}

	feed := s.build(ctx, parentID)
	s.metrics.ObserveFeedBuild(string(feed.Status))

	if s.cache != nil && feed.Status == models.FeedComplete {
		if raw, err := json.Marshal(feed); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, s.cfg.CacheTTL).Err(); err != nil {
				s.logger.Warn("failed to cache feed", zap.String("parent_id", parentID), zap.Error(err))
			}
		}
	}

	return feed, false, nil
}

// Invalidate drops the cached feed for a parent.
func (s *NotificationService) Invalidate(ctx context.Context, parentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, fmt.Sprintf("feed:parent:%s", parentID)).Err(); err != nil {
		s.logger.Warn("failed to invalidate feed cache", zap.String("parent_id", parentID), zap.Error(err))
	}
}

// build assembles the feed from the underlying sources. Failed sources are
// counted and surfaced; the feed never contains fabricated entries.
func (s *NotificationService) build(ctx context.Context, parentID string) *models.NotificationFeed {
	feed := &models.NotificationFeed{
		ParentID:    parentID,
		Status:      models.FeedComplete,
		GeneratedAt: time.Now().UTC(),
		Entries:     []models.Notification{},
	}

	children, err := s.students.FindByParent(ctx, parentID)
	if err != nil {
		s.logger.Warn("feed children lookup failed", zap.String("parent_id", parentID), zap.Error(err))
		feed.Status = models.FeedPartial
		feed.FailedSources++
		return feed
	}

	since := time.Now().UTC().Add(-s.cfg.AbsenceWindow)

	for _, child := range children {
		absences, err := s.absences.List(ctx, models.AbsenceFilter{StudentID: child.ID, Since: &since})
		if err != nil {
			s.logger.Warn("feed absence lookup failed", zap.String("student_id", child.ID), zap.Error(err))
			feed.FailedSources++
		} else {
			for _, absence := range absences {
				priority := models.PriorityHigh
				if absence.Justified {
					priority = models.PriorityMedium
				}
				feed.Entries = append(feed.Entries, models.Notification{
					Kind:        models.NotificationAbsence,
					Priority:    priority,
					StudentID:   child.ID,
					StudentName: child.FullName,
					CourseID:    absence.CourseID,
					Subject:     absence.CourseSubject,
					Message:     fmt.Sprintf("%s was absent from %s", child.FullName, absence.CourseSubject),
					OccurredAt:  absence.Date,
				})
			}
		}

		notes, err := s.notes.List(ctx, models.NoteFilter{StudentID: child.ID, Since: &since})
		if err != nil {
			s.logger.Warn("feed note lookup failed", zap.String("student_id", child.ID), zap.Error(err))
			feed.FailedSources++
			continue
		}
		for _, note := range notes {
			entry, ok := s.classifyNote(child, note)
			if ok {
				feed.Entries = append(feed.Entries, entry)
			}
		}
	}

	invoices, _, err := s.invoices.List(ctx, models.InvoiceFilter{ParentID: parentID, Status: models.InvoiceStatusPending})
	if err != nil {
		s.logger.Warn("feed invoice lookup failed", zap.String("parent_id", parentID), zap.Error(err))
		feed.FailedSources++
	} else {
		for _, invoice := range invoices {
			feed.Entries = append(feed.Entries, models.Notification{
				Kind:       models.NotificationUnpaidInvoice,
				Priority:   models.PriorityMedium,
				StudentID:  invoice.StudentID,
				Message:    fmt.Sprintf("Invoice %q is awaiting payment", invoice.Label),
				OccurredAt: invoice.DueDate,
			})
		}
	}

	if feed.FailedSources > 0 {
		feed.Status = models.FeedPartial
	}

	sortFeed(feed.Entries)
	return feed
}

// classifyNote maps a grade onto a feed entry. Mid-range values produce none.
func (s *NotificationService) classifyNote(child models.Student, note models.NoteDetail) (models.Notification, bool) {
	switch {
	case note.Value >= s.cfg.GoodNoteMin:
		return models.Notification{
			Kind:        models.NotificationGoodNote,
			Priority:    models.PriorityLow,
			StudentID:   child.ID,
			StudentName: child.FullName,
			CourseID:    note.CourseID,
			Subject:     note.CourseSubject,
			Message:     fmt.Sprintf("%s scored %.1f in %s", child.FullName, note.Value, note.CourseSubject),
			OccurredAt:  note.CreatedAt,
		}, true
	case note.Value < s.cfg.ConcernNoteMax:
		return models.Notification{
			Kind:        models.NotificationConcernNote,
			Priority:    models.PriorityHigh,
			StudentID:   child.ID,
			StudentName: child.FullName,
			CourseID:    note.CourseID,
			Subject:     note.CourseSubject,
			Message:     fmt.Sprintf("%s scored %.1f in %s, below the expected level", child.FullName, note.Value, note.CourseSubject),
			OccurredAt:  note.CreatedAt,
		}, true
	default:
		return models.Notification{}, false
	}
}

var priorityRank = map[models.NotificationPriority]int{
	models.PriorityHigh:   0,
	models.PriorityMedium: 1,
	models.PriorityLow:    2,
}

func sortFeed(entries []models.Notification) {
	sort.SliceStable(entries, func(i, j int) bool {
		if priorityRank[entries[i].Priority] != priorityRank[entries[j].Priority] {
			return priorityRank[entries[i].Priority] < priorityRank[entries[j].Priority]
		}
		return entries[i].OccurredAt.After(entries[j].OccurredAt)
	})
}
