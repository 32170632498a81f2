package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appconnector "github.com/mugfulmuse/woo-connector/internal/application/connector"
	"github.com/mugfulmuse/woo-connector/internal/domain/connector"
	httpdto "github.com/mugfulmuse/woo-connector/internal/interfaces/http/dto"
)

// MockSyncHistoryRepository is a mock implementation of SyncHistoryRepository
type MockSyncHistoryRepository struct {
	mock.Mock
}

func (m *MockSyncHistoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*connector.SyncHistory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connector.SyncHistory), args.Error(1)
}

func (m *MockSyncHistoryRepository) FindRecent(ctx context.Context, limit int) ([]connector.SyncHistory, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]connector.SyncHistory), args.Error(1)
}

func (m *MockSyncHistoryRepository) FindByKind(ctx context.Context, kind connector.SyncKind, limit int) ([]connector.SyncHistory, error) {
	args := m.Called(ctx, kind, limit)
	return args.Get(0).([]connector.SyncHistory), args.Error(1)
}

func (m *MockSyncHistoryRepository) Create(ctx context.Context, history *connector.SyncHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockSyncHistoryRepository) Update(ctx context.Context, history *connector.SyncHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockSyncHistoryRepository) AppendDetail(ctx context.Context, detail *connector.SyncDetail) error {
	args := m.Called(ctx, detail)
	return args.Error(0)
}

// MockItemProducer is a mock implementation of ItemProducer
type MockItemProducer struct {
	mock.Mock
}

func (m *MockItemProducer) Items(ctx context.Context, filter connector.ItemFilter) ([]connector.CatalogItem, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]connector.CatalogItem), args.Error(1)
}

// MockItemFinder is a mock implementation of ItemFinder
type MockItemFinder struct {
	mock.Mock
}

func (m *MockItemFinder) FindByIdentifier(ctx context.Context, identifier string) (*connector.CatalogItem, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connector.CatalogItem), args.Error(1)
}

// MockItemWriter is a mock implementation of ItemWriter
type MockItemWriter struct {
	mock.Mock
}

func (m *MockItemWriter) Apply(ctx context.Context, identifier string, values map[string][]connector.AttributeValue) error {
	args := m.Called(ctx, identifier, values)
	return args.Error(0)
}

// noopLocker always grants the run lock
type noopLocker struct{}

func (noopLocker) Acquire(ctx context.Context) (func(), error) {
	return func() {}, nil
}

// busyLocker always reports a run in progress
type busyLocker struct{}

func (busyLocker) Acquire(ctx context.Context) (func(), error) {
	return nil, connector.ErrRunInProgress
}

type syncHandlerFixture struct {
	mappings *MockFieldMappingRepository
	history  *MockSyncHistoryRepository
	settings *MockSettingRepository
	producer *MockItemProducer
	finder   *MockItemFinder
	writer   *MockItemWriter
	platform *MockCommercePlatform
}

func setupSyncRouter(f *syncHandlerFixture, locker appconnector.RunLocker) *gin.Engine {
	gin.SetMode(gin.TestMode)

	gateway := func(ctx context.Context) (connector.CommercePlatform, error) {
		return f.platform, nil
	}
	service := appconnector.NewSyncService(
		f.mappings, f.history, f.settings,
		f.producer, f.finder, f.writer,
		gateway, locker, zap.NewNop(),
	)

	r := gin.New()
	NewSyncHandler(service).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func newSyncHandlerFixture() *syncHandlerFixture {
	return &syncHandlerFixture{
		mappings: new(MockFieldMappingRepository),
		history:  new(MockSyncHistoryRepository),
		settings: new(MockSettingRepository),
		producer: new(MockItemProducer),
		finder:   new(MockItemFinder),
		writer:   new(MockItemWriter),
		platform: new(MockCommercePlatform),
	}
}

func TestSyncHandler_Push_RunInProgress(t *testing.T) {
	f := newSyncHandlerFixture()
	router := setupSyncRouter(f, busyLocker{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/push", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp httpdto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, httpdto.ErrCodeRunInProgress, resp.Error.Code)

	f.history.AssertNotCalled(t, "Create")
}

func TestSyncHandler_Push_NoActiveMappings(t *testing.T) {
	f := newSyncHandlerFixture()
	router := setupSyncRouter(f, noopLocker{})

	f.history.On("Create", mock.Anything, mock.AnythingOfType("*connector.SyncHistory")).Return(nil)
	f.history.On("Update", mock.Anything, mock.AnythingOfType("*connector.SyncHistory")).Return(nil)
	f.mappings.On("FindActiveForKind", mock.Anything, connector.SyncKindPush).
		Return([]connector.FieldMapping{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/push", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// The run record is still created; the failure lands in the run itself.
	assert.Equal(t, http.StatusOK, w.Code)

	var resp httpdto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "failed", data["status"])
	assert.Contains(t, data["error_message"], "no active field mappings")
}

func TestSyncHandler_Push_BadBody(t *testing.T) {
	f := newSyncHandlerFixture()
	router := setupSyncRouter(f, noopLocker{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/push",
		bytes.NewReader([]byte(`{"updated_since_days":-1}`)))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.history.AssertNotCalled(t, "Create")
}

func TestSyncHandler_GetRun(t *testing.T) {
	f := newSyncHandlerFixture()
	router := setupSyncRouter(f, noopLocker{})

	run := connector.NewSyncHistory(connector.SyncKindPush, connector.ItemFilter{}, "tester")
	f.history.On("FindByID", mock.Anything, run.ID).Return(run, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/runs/"+run.ID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp httpdto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, run.ID.String(), data["id"])
	assert.Equal(t, "push", data["kind"])
	assert.Equal(t, "tester", data["initiated_by"])
}

func TestSyncHandler_GetRun_NotFound(t *testing.T) {
	f := newSyncHandlerFixture()
	router := setupSyncRouter(f, noopLocker{})

	id := uuid.New()
	f.history.On("FindByID", mock.Anything, id).Return(nil, connector.ErrHistoryNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/runs/"+id.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSyncHandler_ListRuns(t *testing.T) {
	f := newSyncHandlerFixture()
	router := setupSyncRouter(f, noopLocker{})

	runs := []connector.SyncHistory{
		*connector.NewSyncHistory(connector.SyncKindPull, connector.ItemFilter{}, ""),
	}
	f.history.On("FindRecent", mock.Anything, 20).Return(runs, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/runs", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp httpdto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.([]interface{}), 1)
}

func TestSyncHandler_ListRuns_FilterByKind(t *testing.T) {
	f := newSyncHandlerFixture()
	router := setupSyncRouter(f, noopLocker{})

	f.history.On("FindByKind", mock.Anything, connector.SyncKindPull, 10).
		Return([]connector.SyncHistory{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/runs?kind=pull&limit=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	f.history.AssertExpectations(t)
}

func TestSyncHandler_ListRuns_InvalidKind(t *testing.T) {
	f := newSyncHandlerFixture()
	router := setupSyncRouter(f, noopLocker{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/runs?kind=sideways", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.history.AssertNotCalled(t, "FindRecent")
	f.history.AssertNotCalled(t, "FindByKind")
}
