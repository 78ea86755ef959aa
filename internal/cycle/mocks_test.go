package cycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/futurizm/futurizm/internal/llm"
	"github.com/futurizm/futurizm/internal/model"
	"github.com/futurizm/futurizm/internal/service"
)

// mockClient is a scripted llm.Client.
type mockClient struct {
	mu       sync.Mutex
	calls    int
	generate func(call int, req llm.GenerationRequest) (llm.GenerationResult, error)
}

func (m *mockClient) Generate(_ context.Context, req llm.GenerationRequest) (llm.GenerationResult, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.mu.Unlock()
	return m.generate(call, req)
}

func validDrafts() []llm.PredictionDraft {
	return []llm.PredictionDraft{
		{Title: "First event", Chance: 70, Content: "Short explanation one."},
		{Title: "Second event", Chance: 40, Content: "Short explanation two."},
		{Title: "Third event", Chance: 55, Content: "Short explanation three."},
	}
}

func validItems() []model.PredictionItem {
	items := make([]model.PredictionItem, 0, 3)
	for _, d := range validDrafts() {
		items = append(items, model.PredictionItem{
			Title:       d.Title,
			Chance:      d.Chance,
			ChanceColor: model.ColorForChance(d.Chance),
			Content:     d.Content,
		})
	}
	return items
}

// memoryStore is an in-memory service.Storage keyed like the real one,
// with injectable failures.
type memoryStore struct {
	mu          sync.Mutex
	records     map[string]*model.Prediction // key: date|model|category
	upsertErr   error
	readErr     error
	upsertCalls int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]*model.Prediction)}
}

func (s *memoryStore) UpsertPrediction(_ context.Context, p *model.Prediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertCalls++
	if s.upsertErr != nil {
		return s.upsertErr
	}
	if p.ID == "" {
		p.ID = fmt.Sprintf("id-%d", len(s.records)+1)
	}
	clone := *p
	s.records[p.Date+"|"+string(p.Model)+"|"+p.Category] = &clone
	return nil
}

func (s *memoryStore) GetPredictionsByDate(_ context.Context, date string) ([]model.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	var out []model.Prediction
	for _, p := range s.records {
		if p.Date == date {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *memoryStore) ListDates(_ context.Context) ([]string, error) { return nil, nil }

func (s *memoryStore) IncrementLikes(_ context.Context, _ string) error { return nil }

func (s *memoryStore) DecrementLikes(_ context.Context, _ string) error { return nil }

func (s *memoryStore) ModelMetrics(_ context.Context) ([]service.ModelMetrics, error) {
	return nil, nil
}

func (s *memoryStore) Migrate(_ context.Context) error { return nil }

func (s *memoryStore) Close() error { return nil }

// mockGenerator scripts per-model outcomes for orchestrator tests.
type mockGenerator struct {
	mu sync.Mutex
	// failures[key] is how many times the model fails before succeeding;
	// a negative count fails forever.
	failures map[model.ModelKey]int
	calls    map[model.ModelKey]int
	topics   map[model.ModelKey][][]string
	store    *memoryStore
	clock    *Clock
}

func newMockGenerator(store *memoryStore, clock *Clock) *mockGenerator {
	return &mockGenerator{
		failures: make(map[model.ModelKey]int),
		calls:    make(map[model.ModelKey]int),
		topics:   make(map[model.ModelKey][][]string),
		store:    store,
		clock:    clock,
	}
}

func (g *mockGenerator) GenerateForModel(ctx context.Context, key model.ModelKey, category string, topics []string) ([]model.PredictionItem, string, error) {
	g.mu.Lock()
	g.calls[key]++
	g.topics[key] = append(g.topics[key], topics)
	remaining := g.failures[key]
	if remaining != 0 {
		if remaining > 0 {
			g.failures[key] = remaining - 1
		}
		g.mu.Unlock()
		return nil, "", fmt.Errorf("scripted failure for %s", key)
	}
	g.mu.Unlock()

	items := validItems()
	record := &model.Prediction{
		Date:     g.clock.CycleDate(),
		Model:    key,
		Category: category,
		Items:    items,
	}
	if err := g.store.UpsertPrediction(ctx, record); err != nil {
		return nil, "", err
	}
	return items, category, nil
}

// mockTrends returns either scripted categories or an error.
type mockTrends struct {
	categories []model.TrendingCategory
	err        error
}

func (m *mockTrends) TrendingCategories(_ context.Context) ([]model.TrendingCategory, error) {
	return m.categories, m.err
}

func fixedClock(t time.Time) *Clock {
	clock, err := NewClockAt(func() time.Time { return t })
	if err != nil {
		panic(err)
	}
	return clock
}

// noSleep records backoff delays without waiting.
func noSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func fourCategories() []model.TrendingCategory {
	return []model.TrendingCategory{
		{Name: "Politics", Topics: []string{"Election Update", "Policy Vote", "Debate Night"}},
		{Name: "Sports", Topics: []string{"Game Preview", "Player Trade", "Season Opener"}},
		{Name: "Business", Topics: []string{"Market Open", "Tech Earnings", "Fed Decision"}},
		{Name: "Science", Topics: []string{"Space Launch", "AI Breakthrough", "Climate Report"}},
	}
}
