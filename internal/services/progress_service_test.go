package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/patientportal/backend/internal/metrics"
	"github.com/patientportal/backend/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockCatalogReader is a mock implementation of CatalogReader
type mockCatalogReader struct {
	mu      sync.Mutex
	program *models.Program
	err     error
	calls   int
	// loaded, when set, blocks every caller until all expected callers fetched the tree
	loaded *sync.WaitGroup
}

func (m *mockCatalogReader) GetProgramTree(ctx context.Context, programID string) (*models.Program, error) {
	m.mu.Lock()
	m.calls++
	program, err := m.program, m.err
	m.mu.Unlock()

	if m.loaded != nil {
		m.loaded.Done()
		m.loaded.Wait()
	}
	if err != nil {
		return nil, err
	}
	return program, nil
}

// mockProgressStore is a mock implementation of ProgressStore.
// Writes hold mu for the whole call, the way the real store holds the progress row lock.
type mockProgressStore struct {
	mu             sync.Mutex
	completion     models.ProgramCompletion
	record         *models.CompletionRecord
	progress       *models.UserProgramProgress
	list           []models.UserProgramProgress
	getProgressErr error
	listErr        error
	recordErr      error
	// saveErrs is consumed one error per write call; an exhausted list means success
	saveErrs        []error
	saveCalls       int
	savedCompletion *models.VideoCompletion
	saved           *models.ProgramProgress
}

func (m *mockProgressStore) GetCompletionRecord(ctx context.Context, userID string) (*models.CompletionRecord, error) {
	if m.recordErr != nil {
		return nil, m.recordErr
	}
	return m.record, nil
}

func (m *mockProgressStore) GetProgress(ctx context.Context, userID, programID string) (*models.UserProgramProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getProgressErr != nil {
		return nil, m.getProgressErr
	}
	return m.progress, nil
}

func (m *mockProgressStore) ListProgress(ctx context.Context, userID string) ([]models.UserProgramProgress, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.list, nil
}

func (m *mockProgressStore) SaveCompletion(ctx context.Context, completion models.VideoCompletion, compute models.ProgressFunc) (models.ProgressUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if err := m.nextSaveErr(); err != nil {
		return models.ProgressUpdate{}, err
	}

	if m.completion == nil {
		m.completion = models.ProgramCompletion{}
	}
	m.completion.Add(completion.ModuleID, completion.VideoID)
	m.savedCompletion = &completion

	return m.write(compute(m.completion.Clone())), nil
}

func (m *mockProgressStore) RecalculateProgress(ctx context.Context, userID, programID string, compute models.ProgressFunc) (models.ProgressUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if err := m.nextSaveErr(); err != nil {
		return models.ProgressUpdate{}, err
	}

	result := compute(m.completion.Clone())
	if m.progress == nil && len(m.completion) == 0 {
		return models.ProgressUpdate{Progress: result}, nil
	}

	return m.write(result), nil
}

func (m *mockProgressStore) write(result models.ProgramProgress) models.ProgressUpdate {
	update := models.ProgressUpdate{Progress: result, Written: true}
	if m.progress != nil {
		update.PreviousStatus = m.progress.ProgramStatus
	}
	m.progress = &models.UserProgramProgress{ProgramID: "cardio", ProgramProgress: result}
	m.saved = &result
	return update
}

func (m *mockProgressStore) nextSaveErr() error {
	if len(m.saveErrs) == 0 {
		return nil
	}
	err := m.saveErrs[0]
	m.saveErrs = m.saveErrs[1:]
	return err
}

// mockNotifier is a mock implementation of CompletionNotifier
type mockNotifier struct {
	mu     sync.Mutex
	events []models.ProgramCompletedEvent
	err    error
}

func (m *mockNotifier) NotifyProgramCompleted(ctx context.Context, event models.ProgramCompletedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

// testProgram returns a program with module A of 10 videos and module B of 2 videos
func testProgram() *models.Program {
	program := &models.Program{ID: "cardio", Name: "Cardio Rehab", Status: models.ProgramLifecycleActive}
	for _, m := range []struct {
		id    string
		count int
	}{{"A", 10}, {"B", 2}} {
		module := models.Module{ID: m.id, ProgramID: program.ID}
		for i := 1; i <= m.count; i++ {
			module.Videos = append(module.Videos, models.Video{ID: fmt.Sprintf("%s-v%d", m.id, i), Order: i})
		}
		program.Modules = append(program.Modules, module)
	}
	return program
}

func newTestProgressService(catalog CatalogReader, store ProgressStore, notifier CompletionNotifier) (*progressService, *metrics.Collector) {
	collector := metrics.NewCollector("test", prometheus.NewRegistry())
	svc := NewProgressService(catalog, store, notifier, collector, RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond}, zap.NewNop())
	return svc, collector
}

// draftProgram returns testProgram in draft status
func draftProgram() *models.Program {
	program := testProgram()
	program.Status = models.ProgramLifecycleDraft
	return program
}

func completionOf(videoID string) models.VideoCompletion {
	return models.VideoCompletion{UserID: "patient-1", ProgramID: "cardio", ModuleID: videoID[:1], VideoID: videoID}
}

func TestNewProgressService(t *testing.T) {
	logger := zap.NewNop()
	catalog := &mockCatalogReader{}
	store := &mockProgressStore{}
	notifier := &mockNotifier{}
	collector := metrics.NewCollector("test", prometheus.NewRegistry())

	svc := NewProgressService(catalog, store, notifier, collector, RetryPolicy{Attempts: 2}, logger)

	assert.NotNil(t, svc)
	assert.Equal(t, catalog, svc.catalog)
	assert.Equal(t, store, svc.store)
	assert.Equal(t, logger, svc.logger)
	assert.Equal(t, 2, svc.retry.policy.Attempts)
}

func TestProgressService_MarkVideoComplete(t *testing.T) {
	tests := []struct {
		name             string
		completion       models.VideoCompletion
		catalog          *mockCatalogReader
		store            *mockProgressStore
		expectedError    error
		wantErr          bool
		expectedModules  map[string]int
		expectedProgress int
		expectedStatus   models.ProgressStatus
		expectedSaves    int
		// expectedCatalogCalls is only checked when set
		expectedCatalogCalls int
	}{
		{
			name:       "video weighted rollup",
			completion: completionOf("A-v5"),
			catalog:    &mockCatalogReader{program: testProgram()},
			store: &mockProgressStore{
				completion: models.ProgramCompletion{"A": {"A-v1", "A-v2", "A-v3", "A-v4"}, "B": {"B-v1", "B-v2"}},
				progress:   &models.UserProgramProgress{ProgramID: "cardio"},
			},
			expectedModules:  map[string]int{"A": 50, "B": 100},
			expectedProgress: 58,
			expectedStatus:   models.ProgressStatusActive,
			expectedSaves:    1,
		},
		{
			name:             "first completion in program",
			completion:       completionOf("B-v1"),
			catalog:          &mockCatalogReader{program: testProgram()},
			store:            &mockProgressStore{},
			expectedModules:  map[string]int{"A": 0, "B": 50},
			expectedProgress: 8,
			expectedStatus:   models.ProgressStatusActive,
			expectedSaves:    1,
		},
		{
			name:       "already completed video is idempotent",
			completion: completionOf("B-v1"),
			catalog:    &mockCatalogReader{program: testProgram()},
			store: &mockProgressStore{
				completion: models.ProgramCompletion{"B": {"B-v1"}},
			},
			expectedModules:  map[string]int{"A": 0, "B": 50},
			expectedProgress: 8,
			expectedStatus:   models.ProgressStatusActive,
			expectedSaves:    1,
		},
		{
			name:          "program not found",
			completion:    completionOf("A-v1"),
			catalog:       &mockCatalogReader{err: models.ErrProgramNotFound},
			store:         &mockProgressStore{},
			expectedError: models.ErrProgramNotFound,
			wantErr:       true,
		},
		{
			name:          "module not found",
			completion:    models.VideoCompletion{UserID: "patient-1", ProgramID: "cardio", ModuleID: "Z", VideoID: "A-v1"},
			catalog:       &mockCatalogReader{program: testProgram()},
			store:         &mockProgressStore{},
			expectedError: models.ErrModuleNotFound,
			wantErr:       true,
		},
		{
			name:          "video belongs to another module",
			completion:    models.VideoCompletion{UserID: "patient-1", ProgramID: "cardio", ModuleID: "B", VideoID: "A-v1"},
			catalog:       &mockCatalogReader{program: testProgram()},
			store:         &mockProgressStore{},
			expectedError: models.ErrVideoNotFound,
			wantErr:       true,
		},
		{
			name:                 "catalog failure is retried and aborts before writing",
			completion:           completionOf("A-v1"),
			catalog:              &mockCatalogReader{err: errors.New("connection refused")},
			store:                &mockProgressStore{},
			wantErr:              true,
			expectedCatalogCalls: 3,
		},
		{
			name:          "draft program rejects completions",
			completion:    completionOf("A-v1"),
			catalog:       &mockCatalogReader{program: draftProgram()},
			store:         &mockProgressStore{},
			expectedError: models.ErrProgramNotFound,
			wantErr:       true,
		},
		{
			name:       "missing video id",
			completion: models.VideoCompletion{UserID: "patient-1", ProgramID: "cardio", ModuleID: "A"},
			catalog:    &mockCatalogReader{program: testProgram()},
			store:      &mockProgressStore{},
			wantErr:    true,
		},
		{
			name:          "save keeps failing",
			completion:    completionOf("A-v1"),
			catalog:       &mockCatalogReader{program: testProgram()},
			store:         &mockProgressStore{saveErrs: []error{errors.New("deadlock"), errors.New("deadlock"), errors.New("deadlock")}},
			wantErr:       true,
			expectedSaves: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestProgressService(tt.catalog, tt.store, &mockNotifier{})

			result, err := svc.MarkVideoComplete(context.Background(), tt.completion)

			assert.Equal(t, tt.expectedSaves, tt.store.saveCalls)
			if tt.expectedCatalogCalls > 0 {
				assert.Equal(t, tt.expectedCatalogCalls, tt.catalog.calls)
			}
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, result)
				if tt.expectedError != nil {
					assert.ErrorIs(t, err, tt.expectedError)
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.expectedModules, result.ModuleProgress)
			assert.Equal(t, tt.expectedProgress, result.ProgramProgress)
			assert.Equal(t, tt.expectedStatus, result.ProgramStatus)

			require.NotNil(t, tt.store.saved)
			assert.Equal(t, *result, *tt.store.saved)
			assert.Equal(t, tt.completion, *tt.store.savedCompletion)
		})
	}
}

func TestProgressService_MarkVideoComplete_RepeatedCallsConverge(t *testing.T) {
	program := testProgram()
	store := &mockProgressStore{}
	svc, _ := newTestProgressService(&mockCatalogReader{program: program}, store, &mockNotifier{})

	first, err := svc.MarkVideoComplete(context.Background(), completionOf("A-v3"))
	require.NoError(t, err)

	second, err := svc.MarkVideoComplete(context.Background(), completionOf("A-v3"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, models.ProgramCompletion{"A": {"A-v3"}}, store.completion)
}

func TestProgressService_MarkVideoComplete_ConcurrentCompletions(t *testing.T) {
	completed := models.ProgramCompletion{}
	for i := 1; i <= 10; i++ {
		completed.Add("A", fmt.Sprintf("A-v%d", i))
	}

	// both requests load the catalog before either one writes
	var loaded sync.WaitGroup
	loaded.Add(2)
	catalog := &mockCatalogReader{program: testProgram(), loaded: &loaded}
	store := &mockProgressStore{
		completion: completed,
		progress: &models.UserProgramProgress{ProgramID: "cardio", ProgramProgress: models.ProgramProgress{
			ModuleProgress:  map[string]int{"A": 100, "B": 0},
			ProgramProgress: 83,
			ProgramStatus:   models.ProgressStatusActive,
		}},
	}
	notifier := &mockNotifier{}
	svc, collector := newTestProgressService(catalog, store, notifier)

	var wg sync.WaitGroup
	results := make([]int, 2)
	for i, videoID := range []string{"B-v1", "B-v2"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.MarkVideoComplete(context.Background(), completionOf(videoID))
			if assert.NoError(t, err) {
				results[i] = result.ProgramProgress
			}
		}()
	}
	wg.Wait()

	require.NotNil(t, store.saved)
	assert.Equal(t, map[string]int{"A": 100, "B": 100}, store.saved.ModuleProgress)
	assert.Equal(t, 100, store.saved.ProgramProgress)
	assert.Equal(t, models.ProgressStatusCompleted, store.saved.ProgramStatus)
	assert.ElementsMatch(t, []int{92, 100}, results)
	assert.Len(t, notifier.events, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.ProgramsCompletedTotal))
}

func TestProgressService_MarkVideoComplete_RetriesTransientSaveErrors(t *testing.T) {
	store := &mockProgressStore{saveErrs: []error{errors.New("lock wait timeout"), errors.New("lock wait timeout")}}
	svc, collector := newTestProgressService(&mockCatalogReader{program: testProgram()}, store, &mockNotifier{})

	result, err := svc.MarkVideoComplete(context.Background(), completionOf("A-v1"))

	require.NoError(t, err)
	assert.Equal(t, 10, result.ModuleProgress["A"])
	assert.Equal(t, 3, store.saveCalls)
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.StoreRetriesTotal.WithLabelValues("save_completion")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.VideoCompletionsTotal))
}

func TestProgressService_MarkVideoComplete_NotFoundIsNotRetried(t *testing.T) {
	catalog := &mockCatalogReader{err: fmt.Errorf("lookup: %w", models.ErrProgramNotFound)}
	svc, collector := newTestProgressService(catalog, &mockProgressStore{}, &mockNotifier{})

	_, err := svc.MarkVideoComplete(context.Background(), completionOf("A-v1"))

	assert.ErrorIs(t, err, models.ErrProgramNotFound)
	assert.Equal(t, 1, catalog.calls)
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.StoreRetriesTotal.WithLabelValues("get_program_tree")))
}

func TestProgressService_MarkVideoComplete_Notification(t *testing.T) {
	almostDone := func() models.ProgramCompletion {
		completion := models.ProgramCompletion{"A": {}, "B": {"B-v1", "B-v2"}}
		for i := 1; i <= 9; i++ {
			completion["A"] = append(completion["A"], fmt.Sprintf("A-v%d", i))
		}
		return completion
	}

	tests := []struct {
		name                string
		previous            *models.UserProgramProgress
		notifierErr         error
		expectedEvents      int
		expectedFailedCount float64
	}{
		{
			name:           "transition to completed",
			previous:       &models.UserProgramProgress{ProgramProgress: models.ProgramProgress{ProgramProgress: 92, ProgramStatus: models.ProgressStatusActive}},
			expectedEvents: 1,
		},
		{
			name:           "already completed before",
			previous:       &models.UserProgramProgress{ProgramProgress: models.ProgramProgress{ProgramProgress: 100, ProgramStatus: models.ProgressStatusCompleted}},
			expectedEvents: 0,
		},
		{
			name:                "notification failure does not fail the request",
			previous:            nil,
			notifierErr:         errors.New("redis down"),
			expectedEvents:      1,
			expectedFailedCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockProgressStore{completion: almostDone(), progress: tt.previous}
			notifier := &mockNotifier{err: tt.notifierErr}
			svc, collector := newTestProgressService(&mockCatalogReader{program: testProgram()}, store, notifier)
			svc.now = func() time.Time { return time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC) }

			result, err := svc.MarkVideoComplete(context.Background(), completionOf("A-v10"))

			require.NoError(t, err)
			assert.Equal(t, 100, result.ProgramProgress)
			assert.Equal(t, models.ProgressStatusCompleted, result.ProgramStatus)
			require.Len(t, notifier.events, tt.expectedEvents)
			if tt.expectedEvents > 0 {
				assert.Equal(t, models.ProgramCompletedEvent{
					UserID:      "patient-1",
					ProgramID:   "cardio",
					CompletedAt: time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC),
				}, notifier.events[0])
			}
			assert.Equal(t, float64(tt.expectedEvents), testutil.ToFloat64(collector.ProgramsCompletedTotal))
			assert.Equal(t, tt.expectedFailedCount, testutil.ToFloat64(collector.NotificationFailedTotal))
		})
	}
}

func TestProgressService_GetProgramProgress(t *testing.T) {
	tests := []struct {
		name          string
		catalog       *mockCatalogReader
		store         *mockProgressStore
		expected      *models.ProgramProgress
		expectedError error
		wantErr       bool
	}{
		{
			name:    "not started reports zero for every module",
			catalog: &mockCatalogReader{program: testProgram()},
			store:   &mockProgressStore{},
			expected: &models.ProgramProgress{
				ModuleProgress:  map[string]int{"A": 0, "B": 0},
				ProgramProgress: 0,
				ProgramStatus:   models.ProgressStatusActive,
			},
		},
		{
			name:    "persisted progress",
			catalog: &mockCatalogReader{program: testProgram()},
			store: &mockProgressStore{progress: &models.UserProgramProgress{
				ProgramID: "cardio",
				ProgramProgress: models.ProgramProgress{
					ModuleProgress:  map[string]int{"A": 50, "B": 100},
					ProgramProgress: 58,
					ProgramStatus:   models.ProgressStatusActive,
				},
			}},
			expected: &models.ProgramProgress{
				ModuleProgress:  map[string]int{"A": 50, "B": 100},
				ProgramProgress: 58,
				ProgramStatus:   models.ProgressStatusActive,
			},
		},
		{
			name:          "program not found",
			catalog:       &mockCatalogReader{err: models.ErrProgramNotFound},
			store:         &mockProgressStore{},
			expectedError: models.ErrProgramNotFound,
			wantErr:       true,
		},
		{
			name:    "store error",
			catalog: &mockCatalogReader{program: testProgram()},
			store:   &mockProgressStore{getProgressErr: errors.New("connection refused")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestProgressService(tt.catalog, tt.store, &mockNotifier{})

			result, err := svc.GetProgramProgress(context.Background(), "patient-1", "cardio")

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, result)
				if tt.expectedError != nil {
					assert.ErrorIs(t, err, tt.expectedError)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestProgressService_ListUserProgress(t *testing.T) {
	list := []models.UserProgramProgress{{ProgramID: "cardio"}, {ProgramID: "diabetes"}}

	svc, _ := newTestProgressService(&mockCatalogReader{}, &mockProgressStore{list: list}, &mockNotifier{})
	result, err := svc.ListUserProgress(context.Background(), "patient-1")
	require.NoError(t, err)
	assert.Equal(t, list, result)

	svc, _ = newTestProgressService(&mockCatalogReader{}, &mockProgressStore{listErr: errors.New("database error")}, &mockNotifier{})
	_, err = svc.ListUserProgress(context.Background(), "patient-1")
	assert.Error(t, err)

	_, err = svc.ListUserProgress(context.Background(), "")
	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestProgressService_GetCompletionRecord(t *testing.T) {
	record := &models.CompletionRecord{UserID: "patient-1", Programs: map[string]models.ProgramCompletion{"cardio": {"A": {"A-v1"}}}}

	svc, _ := newTestProgressService(&mockCatalogReader{}, &mockProgressStore{record: record}, &mockNotifier{})
	result, err := svc.GetCompletionRecord(context.Background(), "patient-1")

	require.NoError(t, err)
	assert.Equal(t, record, result)
}

func TestProgressService_RecalculateProgramProgress(t *testing.T) {
	t.Run("video removed after completion", func(t *testing.T) {
		program := testProgram()
		program.Modules[1].Videos = program.Modules[1].Videos[:1]
		store := &mockProgressStore{
			completion: models.ProgramCompletion{"B": {"B-v1", "B-v2"}},
			progress: &models.UserProgramProgress{ProgramProgress: models.ProgramProgress{
				ModuleProgress:  map[string]int{"A": 0, "B": 100},
				ProgramProgress: 17,
				ProgramStatus:   models.ProgressStatusActive,
			}},
		}
		svc, collector := newTestProgressService(&mockCatalogReader{program: program}, store, &mockNotifier{})

		result, err := svc.RecalculateProgramProgress(context.Background(), "patient-1", "cardio")

		require.NoError(t, err)
		assert.Equal(t, map[string]int{"A": 0, "B": 100}, result.ModuleProgress)
		assert.Equal(t, 9, result.ProgramProgress)
		assert.Equal(t, 1, store.saveCalls)
		assert.Equal(t, *result, *store.saved)
		assert.Equal(t, 1.0, testutil.ToFloat64(collector.ProgressRecomputeTotal.WithLabelValues("recalculate")))
	})

	t.Run("not started writes nothing", func(t *testing.T) {
		store := &mockProgressStore{}
		svc, _ := newTestProgressService(&mockCatalogReader{program: testProgram()}, store, &mockNotifier{})

		result, err := svc.RecalculateProgramProgress(context.Background(), "patient-1", "cardio")

		require.NoError(t, err)
		assert.Equal(t, 0, result.ProgramProgress)
		assert.Equal(t, 1, store.saveCalls)
		assert.Nil(t, store.saved)
		assert.Nil(t, store.progress)
	})

	t.Run("transient store failure is retried", func(t *testing.T) {
		store := &mockProgressStore{
			completion: models.ProgramCompletion{"A": {"A-v1"}},
			progress:   &models.UserProgramProgress{ProgramProgress: models.ProgramProgress{ProgramStatus: models.ProgressStatusActive}},
			saveErrs:   []error{errors.New("deadlock found")},
		}
		svc, collector := newTestProgressService(&mockCatalogReader{program: testProgram()}, store, &mockNotifier{})

		result, err := svc.RecalculateProgramProgress(context.Background(), "patient-1", "cardio")

		require.NoError(t, err)
		assert.Equal(t, 8, result.ProgramProgress)
		assert.Equal(t, 2, store.saveCalls)
		assert.Equal(t, 1.0, testutil.ToFloat64(collector.StoreRetriesTotal.WithLabelValues("recalculate_progress")))
	})

	t.Run("program deleted", func(t *testing.T) {
		store := &mockProgressStore{}
		svc, _ := newTestProgressService(&mockCatalogReader{err: models.ErrProgramNotFound}, store, &mockNotifier{})

		_, err := svc.RecalculateProgramProgress(context.Background(), "patient-1", "cardio")

		assert.ErrorIs(t, err, models.ErrProgramNotFound)
		assert.Equal(t, 0, store.saveCalls)
	})
}
