// Package services orchestrates storage, the resolution engine, the report
// cache and AMQP change notifications behind one API the HTTP layer calls.
package services

import (
	"context"
	"fmt"
	"time"

	"budsjett/internal/amqp"
	"budsjett/internal/cache"
	"budsjett/internal/core"
	"budsjett/internal/engine"
	"budsjett/internal/log"
	"budsjett/internal/storage"
)

// BudgetService is the write path for everything that can change a month's
// numbers. Every mutation purges the report cache and publishes a
// month_changed message so workers can re-export.
type BudgetService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	reports    *cache.LRUCache[engine.Report]
	logger     *log.Logger
}

func NewBudgetService(
	repo *storage.SQLiteRepository,
	amqpClient *amqp.Client,
	reports *cache.LRUCache[engine.Report],
	logger *log.Logger,
) *BudgetService {
	return &BudgetService{
		storage:    repo,
		amqpClient: amqpClient,
		reports:    reports,
		logger:     logger.WithComponent(log.ComponentBudget),
	}
}

// Storage exposes the repository for read-only listings the HTTP layer
// serves directly.
func (s *BudgetService) Storage() *storage.SQLiteRepository { return s.storage }

// Report computes the resolved month report, serving from cache when the
// dataset has not changed since the last computation.
func (s *BudgetService) Report(ctx context.Context, month core.MonthKey) (engine.Report, error) {
	if !month.Valid() {
		return engine.Report{}, core.ErrInvalidMonthKey
	}

	if s.reports != nil {
		if rep, ok := s.reports.Get(string(month)); ok {
			return rep, nil
		}
	}

	in, err := s.storage.Snapshot(ctx, month)
	if err != nil {
		return engine.Report{}, fmt.Errorf("load snapshot for %s: %w", month, err)
	}
	rep := engine.Aggregate(in)

	if s.reports != nil {
		s.reports.Set(string(month), rep)
	}
	return rep, nil
}

// afterWrite invalidates derived state and notifies listeners. The whole
// cache is purged rather than one key: goal amortization and spending
// averages let a write in one month move the numbers of another.
func (s *BudgetService) afterWrite(ctx context.Context, month core.MonthKey, reason string) {
	if s.reports != nil {
		s.reports.Purge()
	}
	if !month.Valid() {
		// Structure and template changes are not tied to one month;
		// re-export the current one.
		month = core.MonthKeyOf(time.Now())
	}
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishMonthChanged(ctx, month, reason); err != nil {
		// Local state is already committed; listeners catch up on the
		// next message.
		s.logger.WarnContext(ctx, "failed to publish month change",
			log.FieldMonth, string(month),
			log.FieldReason, reason,
			"error", err)
	}
}

func (s *BudgetService) monthOf(date string) core.MonthKey {
	t, err := core.ParseDate(date)
	if err != nil {
		return ""
	}
	return core.MonthKeyOf(t)
}

// --- transactions ---

func (s *BudgetService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	created, err := s.storage.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}
	s.afterWrite(ctx, s.monthOf(created.Date), amqp.ReasonTransaction)
	return created, nil
}

func (s *BudgetService) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := s.storage.UpdateTransaction(ctx, t); err != nil {
		return err
	}
	s.afterWrite(ctx, s.monthOf(t.Date), amqp.ReasonTransaction)
	return nil
}

func (s *BudgetService) DeleteTransaction(ctx context.Context, id string) error {
	t, err := s.storage.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.afterWrite(ctx, s.monthOf(t.Date), amqp.ReasonTransaction)
	return nil
}

// --- budget amounts ---

func (s *BudgetService) SetSubCategoryBudget(ctx context.Context, month core.MonthKey, subID string, amount core.Money, mode storage.WriteMode) error {
	if err := s.storage.SetSubCategoryBudget(ctx, month, subID, amount, mode); err != nil {
		return err
	}
	s.afterWrite(ctx, month, amqp.ReasonBudget)
	return nil
}

func (s *BudgetService) SetBucketConfig(ctx context.Context, month core.MonthKey, bucketID string, cfg core.BucketConfig, mode storage.WriteMode) error {
	if err := s.storage.SetBucketConfig(ctx, month, bucketID, cfg, mode); err != nil {
		return err
	}
	s.afterWrite(ctx, month, amqp.ReasonBudget)
	return nil
}

func (s *BudgetService) SetGroupLimit(ctx context.Context, month core.MonthKey, groupID string, limit core.Money) error {
	if err := s.storage.SetGroupLimit(ctx, month, groupID, limit); err != nil {
		return err
	}
	s.afterWrite(ctx, month, amqp.ReasonBudget)
	return nil
}

func (s *BudgetService) ClearSubCategoryOverride(ctx context.Context, month core.MonthKey, subID string) error {
	if err := s.storage.ClearSubCategoryOverride(ctx, month, subID); err != nil {
		return err
	}
	s.afterWrite(ctx, month, amqp.ReasonBudget)
	return nil
}

func (s *BudgetService) ClearBucketOverride(ctx context.Context, month core.MonthKey, bucketID string) error {
	if err := s.storage.ClearBucketOverride(ctx, month, bucketID); err != nil {
		return err
	}
	s.afterWrite(ctx, month, amqp.ReasonBudget)
	return nil
}

func (s *BudgetService) ClearGroupLimit(ctx context.Context, month core.MonthKey, groupID string) error {
	if err := s.storage.ClearGroupLimit(ctx, month, groupID); err != nil {
		return err
	}
	s.afterWrite(ctx, month, amqp.ReasonBudget)
	return nil
}

func (s *BudgetService) SetGoalMonthAmount(ctx context.Context, month core.MonthKey, bucketID string, amount core.Money) error {
	if err := s.storage.SetGoalMonthAmount(ctx, month, bucketID, amount); err != nil {
		return err
	}
	s.afterWrite(ctx, month, amqp.ReasonBudget)
	return nil
}

func (s *BudgetService) ClearGoalMonthAmount(ctx context.Context, month core.MonthKey, bucketID string) error {
	if err := s.storage.ClearGoalMonthAmount(ctx, month, bucketID); err != nil {
		return err
	}
	s.afterWrite(ctx, month, amqp.ReasonBudget)
	return nil
}

func (s *BudgetService) SetMonthLock(ctx context.Context, month core.MonthKey, locked bool) error {
	if err := s.storage.SetMonthLock(ctx, month, locked); err != nil {
		return err
	}
	s.afterWrite(ctx, month, amqp.ReasonBudget)
	return nil
}

// --- templates ---

func (s *BudgetService) CreateTemplate(ctx context.Context, t core.BudgetTemplate) (core.BudgetTemplate, error) {
	created, err := s.storage.CreateTemplate(ctx, t)
	if err != nil {
		return core.BudgetTemplate{}, err
	}
	s.afterWrite(ctx, "", amqp.ReasonTemplate)
	return created, nil
}

func (s *BudgetService) SetDefaultTemplate(ctx context.Context, id string) error {
	if err := s.storage.SetDefaultTemplate(ctx, id); err != nil {
		return err
	}
	s.afterWrite(ctx, "", amqp.ReasonTemplate)
	return nil
}

func (s *BudgetService) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.storage.DeleteTemplate(ctx, id); err != nil {
		return err
	}
	s.afterWrite(ctx, "", amqp.ReasonTemplate)
	return nil
}

func (s *BudgetService) AssignTemplate(ctx context.Context, month core.MonthKey, templateID string) error {
	if err := s.storage.AssignTemplate(ctx, month, templateID); err != nil {
		return err
	}
	s.afterWrite(ctx, month, amqp.ReasonTemplate)
	return nil
}

// --- structure ---

func (s *BudgetService) CreateGroup(ctx context.Context, g core.BudgetGroup) (core.BudgetGroup, error) {
	created, err := s.storage.CreateGroup(ctx, g)
	if err != nil {
		return core.BudgetGroup{}, err
	}
	s.afterWrite(ctx, "", amqp.ReasonStructure)
	return created, nil
}

func (s *BudgetService) UpdateGroup(ctx context.Context, g core.BudgetGroup) error {
	if err := s.storage.UpdateGroup(ctx, g); err != nil {
		return err
	}
	s.afterWrite(ctx, "", amqp.ReasonStructure)
	return nil
}

func (s *BudgetService) DeleteGroup(ctx context.Context, id string) error {
	if err := s.storage.DeleteGroup(ctx, id); err != nil {
		return err
	}
	s.afterWrite(ctx, "", amqp.ReasonStructure)
	return nil
}

func (s *BudgetService) CreateSubCategory(ctx context.Context, sc core.SubCategory) (core.SubCategory, error) {
	created, err := s.storage.CreateSubCategory(ctx, sc)
	if err != nil {
		return core.SubCategory{}, err
	}
	s.afterWrite(ctx, "", amqp.ReasonStructure)
	return created, nil
}

func (s *BudgetService) UpdateSubCategory(ctx context.Context, sc core.SubCategory) error {
	if err := s.storage.UpdateSubCategory(ctx, sc); err != nil {
		return err
	}
	s.afterWrite(ctx, "", amqp.ReasonStructure)
	return nil
}

func (s *BudgetService) DeleteSubCategory(ctx context.Context, id string) error {
	if err := s.storage.DeleteSubCategory(ctx, id); err != nil {
		return err
	}
	s.afterWrite(ctx, "", amqp.ReasonStructure)
	return nil
}

func (s *BudgetService) CreateBucket(ctx context.Context, b core.Bucket) (core.Bucket, error) {
	created, err := s.storage.CreateBucket(ctx, b)
	if err != nil {
		return core.Bucket{}, err
	}
	s.afterWrite(ctx, "", amqp.ReasonStructure)
	return created, nil
}

func (s *BudgetService) UpdateBucket(ctx context.Context, b core.Bucket) error {
	if err := s.storage.UpdateBucket(ctx, b); err != nil {
		return err
	}
	s.afterWrite(ctx, "", amqp.ReasonStructure)
	return nil
}

func (s *BudgetService) DeleteBucket(ctx context.Context, id string, scope storage.DeleteScope, month core.MonthKey) error {
	if err := s.storage.DeleteBucket(ctx, id, scope, month); err != nil {
		return err
	}
	s.afterWrite(ctx, month, amqp.ReasonStructure)
	return nil
}

func (s *BudgetService) SetPayday(ctx context.Context, payday int) error {
	if err := s.storage.SetPayday(ctx, payday); err != nil {
		return err
	}
	s.afterWrite(ctx, "", amqp.ReasonStructure)
	return nil
}

// Close releases the storage and AMQP connections.
func (s *BudgetService) Close() error {
	var errs []error
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close budget service: %v", errs)
	}
	return nil
}
