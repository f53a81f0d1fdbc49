package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"market_backend/internal/feature/assets/domain/entity"
	"market_backend/internal/feature/assets/domain/symbol"
)

// AssetRepository は資産テーブルの永続化層を抽象化します。
// UpsertBatch は id をキーにした upsert で、価格 0 の行が保存済みの正の価格を上書きしないことを保証します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type AssetRepository interface {
	ListAll(ctx context.Context) ([]entity.Asset, error)
	FindBySymbols(ctx context.Context, symbols []string) ([]entity.Asset, error)
	UpsertBatch(ctx context.Context, assets []entity.Asset) error
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
	DeleteBySymbol(ctx context.Context, symbol string) (int64, error)
}

// Reconciler merges fetched quotes into the asset store.
type Reconciler struct {
	repo AssetRepository
	now  func() time.Time
}

// NewReconciler は新しい Reconciler を生成します。
func NewReconciler(repo AssetRepository) *Reconciler {
	return &Reconciler{repo: repo, now: time.Now}
}

// Reconcile upserts quotes in one bulk call.
//
// Ids are resolved against a fresh snapshot of the store: an exact symbol match
// keeps its row, a clean-symbol match (the same asset under an older symbol
// spelling) reuses that row's id, and anything else gets a newly minted id.
// A zero-priced quote never replaces a stored nonzero price.
func (r *Reconciler) Reconcile(ctx context.Context, quotes []entity.Quote) (entity.ReconcileSummary, error) {
	var summary entity.ReconcileSummary
	if len(quotes) == 0 {
		return summary, nil
	}

	rows, err := r.repo.ListAll(ctx)
	if err != nil {
		return summary, fmt.Errorf("load asset snapshot: %w", err)
	}
	idx := newAssetIndex(rows)
	now := r.now().UTC()

	out := make([]entity.Asset, 0, len(quotes))
	pos := make(map[string]int, len(quotes))
	for _, q := range quotes {
		id, prev, drift := idx.resolve(q)
		if q.Price <= 0 && prev != nil && prev.Price > 0 {
			summary.Skipped = append(summary.Skipped, q.Symbol)
			continue
		}

		a := entity.Asset{
			ID:          id,
			Symbol:      q.Symbol,
			Name:        q.Name,
			Category:    q.Category,
			MarketData:  q.MarketData,
			LastUpdated: now,
		}
		if prev != nil {
			a.MarketCapRank = prev.MarketCapRank
			if !drift && prev.Category.Valid() {
				a.Category = prev.Category
			}
		}

		// 同じ id に解決された quote は後勝ち
		if i, ok := pos[id]; ok {
			out[i] = a
			continue
		}
		pos[id] = len(out)
		out = append(out, a)
	}

	if len(out) == 0 {
		return summary, nil
	}
	if err := r.repo.UpsertBatch(ctx, out); err != nil {
		return summary, fmt.Errorf("upsert %d assets: %w", len(out), err)
	}

	for _, a := range out {
		if _, ok := idx.byID[a.ID]; ok {
			summary.Updated++
		} else {
			summary.Inserted++
		}
	}
	summary.Count = len(out)
	return summary, nil
}

// assetIndex is a lookup view over one store snapshot.
type assetIndex struct {
	bySymbol map[string]*entity.Asset
	byID     map[string]*entity.Asset
	byClean  map[string]*entity.Asset
}

func newAssetIndex(rows []entity.Asset) *assetIndex {
	idx := &assetIndex{
		bySymbol: make(map[string]*entity.Asset, len(rows)),
		byID:     make(map[string]*entity.Asset, len(rows)),
		byClean:  make(map[string]*entity.Asset, len(rows)),
	}
	for i := range rows {
		a := &rows[i]
		idx.bySymbol[strings.ToUpper(a.Symbol)] = a
		idx.byID[a.ID] = a

		// 同じクリーンシンボルが複数あれば、Deduplicate と同じく装飾付きの行を優先する
		key := symbol.Clean(a.Symbol)
		cur, ok := idx.byClean[key]
		if !ok || (!symbol.IsDecorated(cur.Symbol) && symbol.IsDecorated(a.Symbol)) {
			idx.byClean[key] = a
		}
	}
	return idx
}

// resolve returns the id to write q under, the row it will replace (if any),
// and whether the match crossed a symbol format change.
func (idx *assetIndex) resolve(q entity.Quote) (string, *entity.Asset, bool) {
	if a, ok := idx.bySymbol[strings.ToUpper(q.Symbol)]; ok {
		return a.ID, a, false
	}
	if a, ok := idx.byClean[symbol.Clean(q.Symbol)]; ok {
		return a.ID, a, true
	}
	id := symbol.AssetID(q.Symbol, q.Category)
	if a, ok := idx.byID[id]; ok {
		return id, a, true
	}
	return id, nil, false
}
