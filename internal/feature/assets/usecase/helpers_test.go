package usecase_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"market_backend/internal/feature/assets/domain/entity"
	"market_backend/internal/feature/assets/domain/symbol"
)

func ptr(v float64) *float64 { return &v }

func newSymbolKit() (*symbol.Classifier, *symbol.Formatter) {
	t := symbol.DefaultTables()
	return symbol.NewClassifier(t), symbol.NewFormatter(t)
}

// memAssetRepo は AssetRepository のインメモリ実装です。
// UpsertBatch は本物のアダプタと同じく id をキーにし、価格 0 で正の価格を上書きしません。
type memAssetRepo struct {
	mu    sync.Mutex
	rows  []entity.Asset
	calls int

	listErr   error
	upsertErr error
}

func (m *memAssetRepo) ListAll(ctx context.Context) ([]entity.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return slices.Clone(m.rows), nil
}

func (m *memAssetRepo) FindBySymbols(ctx context.Context, symbols []string) ([]entity.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Asset
	for _, a := range m.rows {
		if slices.Contains(symbols, a.Symbol) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAssetRepo) UpsertBatch(ctx context.Context, assets []entity.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for _, a := range assets {
		i := slices.IndexFunc(m.rows, func(r entity.Asset) bool { return r.ID == a.ID })
		if i < 0 {
			m.rows = append(m.rows, a)
			continue
		}
		if a.Price > 0 || m.rows[i].Price == 0 {
			rank := m.rows[i].MarketCapRank
			m.rows[i] = a
			m.rows[i].MarketCapRank = rank
		}
	}
	return nil
}

func (m *memAssetRepo) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.rows)
	m.rows = slices.DeleteFunc(m.rows, func(r entity.Asset) bool { return slices.Contains(ids, r.ID) })
	return int64(before - len(m.rows)), nil
}

func (m *memAssetRepo) DeleteBySymbol(ctx context.Context, sym string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.rows)
	m.rows = slices.DeleteFunc(m.rows, func(r entity.Asset) bool { return strings.EqualFold(r.Symbol, sym) })
	return int64(before - len(m.rows)), nil
}

func (m *memAssetRepo) snapshot() []entity.Asset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.rows)
}

// mockWatchlist は WatchlistReader のモックです。
type mockWatchlist struct {
	codes []string
	err   error
}

func (m *mockWatchlist) ListActiveCodes(ctx context.Context) ([]string, error) {
	return m.codes, m.err
}

// countingPacer は Wait の呼び出し回数を数えます。
type countingPacer struct {
	calls atomic.Int32
	err   error
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.calls.Add(1)
	return p.err
}

// stubProvider は symbol ごとに固定の応答を返す QuoteProvider です。
type stubProvider struct {
	quotes map[string]*entity.RawQuote
	fail   map[string]error
}

func (s *stubProvider) Quote(ctx context.Context, sym string) (*entity.RawQuote, error) {
	if err, ok := s.fail[sym]; ok {
		return nil, err
	}
	if q, ok := s.quotes[sym]; ok {
		return q, nil
	}
	return &entity.RawQuote{Symbol: sym, RegularMarketPrice: ptr(100), CurrentPrice: ptr(100)}, nil
}

var errUpstream = errors.New("upstream unavailable")
