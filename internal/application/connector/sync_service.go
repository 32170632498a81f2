package connector

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mugfulmuse/woo-connector/internal/domain/connector"
	"go.uber.org/zap"
)

// listPageSize is the page size used when enumerating platform products.
const listPageSize = 100

// RunLocker serializes sync runs against the catalog. Acquire returns
// ErrRunInProgress when another run holds the lock; the returned release
// function must be called when the run reaches a terminal state.
type RunLocker interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// GatewayProvider builds a commerce platform client from the connection
// settings stored at call time. Each run gets its own immutable credential
// snapshot; settings edited mid-run apply to the next run only.
type GatewayProvider func(ctx context.Context) (connector.CommercePlatform, error)

// SyncService orchestrates push and pull runs end to end: it loads the
// active mappings, enumerates items, drives the transformation engine and
// the platform gateway per item, and writes the audit trail. A single item's
// failure never aborts a run; only failures outside the item loop do.
type SyncService struct {
	mappings connector.FieldMappingReader
	history  connector.SyncHistoryRepository
	settings connector.SettingRepository
	producer connector.ItemProducer
	finder   connector.ItemFinder
	writer   connector.ItemWriter
	gateway  GatewayProvider
	locker   RunLocker
	logger   *zap.Logger
}

// NewSyncService creates a new SyncService
func NewSyncService(
	mappings connector.FieldMappingReader,
	history connector.SyncHistoryRepository,
	settings connector.SettingRepository,
	producer connector.ItemProducer,
	finder connector.ItemFinder,
	writer connector.ItemWriter,
	gateway GatewayProvider,
	locker RunLocker,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		mappings: mappings,
		history:  history,
		settings: settings,
		producer: producer,
		finder:   finder,
		writer:   writer,
		gateway:  gateway,
		locker:   locker,
		logger:   logger,
	}
}

// Push runs one catalog-to-platform sync. The returned run record is
// non-nil whenever the run was created, including runs that ended failed;
// a non-nil error means the run could not be started at all.
func (s *SyncService) Push(ctx context.Context, req StartSyncRequest) (*connector.SyncHistory, error) {
	return s.run(ctx, connector.SyncKindPush, req)
}

// Pull runs one platform-to-catalog sync.
func (s *SyncService) Pull(ctx context.Context, req StartSyncRequest) (*connector.SyncHistory, error) {
	return s.run(ctx, connector.SyncKindPull, req)
}

func (s *SyncService) run(ctx context.Context, kind connector.SyncKind, req StartSyncRequest) (*connector.SyncHistory, error) {
	release, err := s.locker.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	filter := connector.ItemFilter{
		UpdatedSinceDays: req.UpdatedSinceDays,
		Limit:            req.Limit,
	}
	history := connector.NewSyncHistory(kind, filter, req.InitiatedBy)
	if err := s.history.Create(ctx, history); err != nil {
		return nil, fmt.Errorf("create run record: %w", err)
	}

	s.logger.Info("sync run started",
		zap.String("run_id", history.ID.String()),
		zap.String("kind", kind.String()),
		zap.String("initiated_by", req.InitiatedBy))

	if err := s.execute(ctx, history); err != nil {
		s.failRun(ctx, history, err)
	}
	return history, nil
}

// execute drives a created run to a terminal state. A returned error marks
// the whole run failed; per-item failures are absorbed inside the loop.
func (s *SyncService) execute(ctx context.Context, history *connector.SyncHistory) error {
	_ = history.MarkRunning()
	if err := s.history.Update(ctx, history); err != nil {
		return fmt.Errorf("persist run state: %w", err)
	}

	active, err := s.mappings.FindActiveForKind(ctx, history.Kind)
	if err != nil {
		return fmt.Errorf("load mappings: %w", err)
	}
	if len(active) == 0 {
		return connector.ErrNoActiveMappings
	}
	resolved := connector.ResolveMappings(active)

	opts, err := s.transformOptions(ctx)
	if err != nil {
		return err
	}

	gateway, err := s.gateway(ctx)
	if err != nil {
		return fmt.Errorf("build platform client: %w", err)
	}

	switch history.Kind {
	case connector.SyncKindPush:
		err = s.pushItems(ctx, history, resolved, opts, gateway)
	case connector.SyncKindPull:
		err = s.pullItems(ctx, history, resolved, opts, gateway)
	default:
		err = fmt.Errorf("unknown run kind %q", history.Kind)
	}
	if err != nil {
		return err
	}

	_ = history.MarkCompleted()
	if err := s.history.Update(ctx, history); err != nil {
		return fmt.Errorf("persist run state: %w", err)
	}

	s.logger.Info("sync run completed",
		zap.String("run_id", history.ID.String()),
		zap.Int("total", history.TotalItems),
		zap.Int("success", history.SuccessCount),
		zap.Int("errors", history.ErrorCount),
		zap.Duration("duration", history.Duration()))
	return nil
}

// pushItems runs the per-item loop of a push.
func (s *SyncService) pushItems(
	ctx context.Context,
	history *connector.SyncHistory,
	mappings []connector.ResolvedMapping,
	opts connector.TransformOptions,
	gateway connector.CommercePlatform,
) error {
	items, err := s.producer.Items(ctx, history.Filters)
	if err != nil {
		return fmt.Errorf("enumerate catalog items: %w", err)
	}

	history.TotalItems = len(items)
	if err := s.history.Update(ctx, history); err != nil {
		return fmt.Errorf("persist run state: %w", err)
	}

	for i := range items {
		item := &items[i]
		detail := connector.NewSyncDetail(history.ID, item.Identifier)
		s.pushOne(ctx, item, mappings, opts, gateway, detail)
		s.recordDetail(ctx, history, detail)
	}
	return nil
}

// pushOne transforms and ships a single item, recording the outcome on the
// detail. It never returns an error: failure is a detail state.
func (s *SyncService) pushOne(
	ctx context.Context,
	item *connector.CatalogItem,
	mappings []connector.ResolvedMapping,
	opts connector.TransformOptions,
	gateway connector.CommercePlatform,
	detail *connector.SyncDetail,
) {
	product, issues := connector.ToTarget(item, mappings, opts)
	if len(issues) > 0 {
		detail.Fail(connector.JoinIssues(issues))
		return
	}

	existing, err := gateway.FindProductBySKU(ctx, item.Identifier)
	if err != nil {
		detail.Fail(err.Error())
		return
	}

	if existing != nil {
		if _, err := gateway.UpdateProduct(ctx, existing.ID, product); err != nil {
			detail.Fail(err.Error())
			return
		}
		detail.Succeed(connector.ActionUpdate)
		return
	}

	if _, err := gateway.CreateProduct(ctx, product); err != nil {
		detail.Fail(err.Error())
		return
	}
	detail.Succeed(connector.ActionCreate)
}

// pullItems runs the per-item loop of a pull.
func (s *SyncService) pullItems(
	ctx context.Context,
	history *connector.SyncHistory,
	mappings []connector.ResolvedMapping,
	opts connector.TransformOptions,
	gateway connector.CommercePlatform,
) error {
	products, err := s.listProducts(ctx, gateway, history.Filters)
	if err != nil {
		return fmt.Errorf("enumerate platform products: %w", err)
	}

	history.TotalItems = len(products)
	if err := s.history.Update(ctx, history); err != nil {
		return fmt.Errorf("persist run state: %w", err)
	}

	for i := range products {
		product := &products[i]
		// products without a natural key cannot be matched; they stay in
		// the total but get no detail
		if product.SKU == "" {
			continue
		}
		detail := connector.NewSyncDetail(history.ID, product.SKU)
		s.pullOne(ctx, product, mappings, opts, detail)
		s.recordDetail(ctx, history, detail)
	}
	return nil
}

// pullOne applies a single platform product back onto the catalog.
func (s *SyncService) pullOne(
	ctx context.Context,
	product *connector.TargetProduct,
	mappings []connector.ResolvedMapping,
	opts connector.TransformOptions,
	detail *connector.SyncDetail,
) {
	item, err := s.finder.FindByIdentifier(ctx, product.SKU)
	if err != nil {
		detail.Fail(err.Error())
		return
	}
	if item == nil {
		detail.SkipWithNote("no matching catalog item; creation during pull is not supported")
		return
	}

	values, issues := connector.ToCatalogValues(product, mappings, opts)
	if len(issues) > 0 {
		detail.Fail(connector.JoinIssues(issues))
		return
	}

	if err := s.writer.Apply(ctx, product.SKU, values); err != nil {
		detail.Fail(err.Error())
		return
	}
	detail.Succeed(connector.ActionUpdate)
}

// listProducts pages through the platform's product listing until a short
// page, honoring the filter's recency window and cap.
func (s *SyncService) listProducts(ctx context.Context, gateway connector.CommercePlatform, filter connector.ItemFilter) ([]connector.TargetProduct, error) {
	query := connector.ListProductsQuery{Page: 1, PerPage: listPageSize}
	if filter.UpdatedSinceDays > 0 {
		since := connector.UpdatedSince(filter.UpdatedSinceDays)
		query.UpdatedAfter = &since
	}

	var all []connector.TargetProduct
	for {
		page, err := gateway.ListProducts(ctx, query)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if filter.Limit > 0 && len(all) >= filter.Limit {
			return all[:filter.Limit], nil
		}
		if len(page) < query.PerPage {
			return all, nil
		}
		query.Page++
	}
}

// recordDetail persists one finished detail and the run's counters. A
// persistence hiccup on a detail is logged and absorbed so the run keeps
// its progress accounting.
func (s *SyncService) recordDetail(ctx context.Context, history *connector.SyncHistory, detail *connector.SyncDetail) {
	history.RecordDetail(detail)
	if err := s.history.AppendDetail(ctx, detail); err != nil {
		s.logger.Warn("failed to persist sync detail",
			zap.String("run_id", history.ID.String()),
			zap.String("identifier", detail.Identifier),
			zap.Error(err))
	}
	if err := s.history.Update(ctx, history); err != nil {
		s.logger.Warn("failed to persist run counters",
			zap.String("run_id", history.ID.String()),
			zap.Error(err))
	}
}

// failRun marks the run failed with the top-level error. Details already
// written are retained.
func (s *SyncService) failRun(ctx context.Context, history *connector.SyncHistory, cause error) {
	_ = history.MarkFailed(cause.Error())
	if err := s.history.Update(ctx, history); err != nil {
		s.logger.Error("failed to persist failed run",
			zap.String("run_id", history.ID.String()),
			zap.Error(err))
	}
	s.logger.Warn("sync run failed",
		zap.String("run_id", history.ID.String()),
		zap.String("kind", history.Kind.String()),
		zap.Error(cause))
}

// transformOptions builds the coercion options from stored settings.
func (s *SyncService) transformOptions(ctx context.Context) (connector.TransformOptions, error) {
	currency, err := s.settings.GetOrDefault(ctx, connector.SettingCurrency, connector.DefaultCurrency)
	if err != nil {
		return connector.TransformOptions{}, fmt.Errorf("load currency setting: %w", err)
	}
	return connector.TransformOptions{PreferredCurrency: currency}, nil
}

// ---------------------------------------------------------------------------
// Run Reporting
// ---------------------------------------------------------------------------

// GetRun returns one run with its details.
func (s *SyncService) GetRun(ctx context.Context, id uuid.UUID) (*SyncHistoryResponse, error) {
	history, err := s.history.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSyncHistoryResponse(history, true)
	return &resp, nil
}

// RecentRuns returns the most recent runs, newest first, without details.
func (s *SyncService) RecentRuns(ctx context.Context, limit int) ([]SyncHistoryResponse, error) {
	if limit < 1 {
		limit = 20
	}
	histories, err := s.history.FindRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toHistoryResponses(histories), nil
}

// RunsByKind returns the most recent runs of one kind, newest first.
func (s *SyncService) RunsByKind(ctx context.Context, kind connector.SyncKind, limit int) ([]SyncHistoryResponse, error) {
	if !kind.IsValid() {
		return nil, connector.ErrInvalidRunKind
	}
	if limit < 1 {
		limit = 20
	}
	histories, err := s.history.FindByKind(ctx, kind, limit)
	if err != nil {
		return nil, err
	}
	return toHistoryResponses(histories), nil
}

func toHistoryResponses(histories []connector.SyncHistory) []SyncHistoryResponse {
	responses := make([]SyncHistoryResponse, 0, len(histories))
	for i := range histories {
		responses = append(responses, ToSyncHistoryResponse(&histories[i], false))
	}
	return responses
}
