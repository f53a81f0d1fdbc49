package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"market_backend/internal/feature/assets/domain/entity"
	"market_backend/internal/feature/assets/domain/symbol"
)

// Deduplicate groups rows by clean symbol and picks one row to keep per group.
// The first row carrying a vendor decoration wins; if none does, the first row wins.
// It only plans; nothing is deleted here.
func Deduplicate(rows []entity.Asset) entity.DedupPlan {
	var order []string
	groups := make(map[string][]entity.Asset)
	for _, a := range rows {
		key := symbol.Clean(a.Symbol)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], a)
	}

	plan := entity.DedupPlan{Keep: make([]entity.Asset, 0, len(order))}
	for _, key := range order {
		g := groups[key]
		keep := 0
		for i, a := range g {
			if symbol.IsDecorated(a.Symbol) {
				keep = i
				break
			}
		}
		plan.Keep = append(plan.Keep, g[keep])
		for i, a := range g {
			if i != keep {
				plan.Delete = append(plan.Delete, a.ID)
			}
		}
	}
	return plan
}

// MaintenanceUsecase は資産テーブルの重複整理と管理者向け削除を提供します。
type MaintenanceUsecase struct {
	repo       AssetRepository
	classifier *symbol.Classifier
}

// NewMaintenanceUsecase は新しい MaintenanceUsecase を生成します。
func NewMaintenanceUsecase(repo AssetRepository, classifier *symbol.Classifier) *MaintenanceUsecase {
	return &MaintenanceUsecase{repo: repo, classifier: classifier}
}

// PlanCleanup は削除対象を計算するだけのドライランです。
func (u *MaintenanceUsecase) PlanCleanup(ctx context.Context) (entity.DedupPlan, error) {
	rows, err := u.repo.ListAll(ctx)
	if err != nil {
		return entity.DedupPlan{}, fmt.Errorf("list assets: %w", err)
	}
	plan := Deduplicate(rows)
	for _, a := range plan.Keep {
		if want := u.classifier.Classify(a.Symbol); want != a.Category {
			plan.Misclassified = append(plan.Misclassified, a)
		}
	}
	return plan, nil
}

// ApplyCleanup は計画を実行します。重複行を削除し、カテゴリのずれを修正した後、
// もう一度計画を立てて残りの重複数を返します。
func (u *MaintenanceUsecase) ApplyCleanup(ctx context.Context) (entity.CleanupResult, error) {
	plan, err := u.PlanCleanup(ctx)
	if err != nil {
		return entity.CleanupResult{}, err
	}
	res := entity.CleanupResult{Plan: plan}

	if len(plan.Delete) > 0 {
		n, err := u.repo.DeleteByIDs(ctx, plan.Delete)
		if err != nil {
			return res, fmt.Errorf("delete duplicates: %w", err)
		}
		res.Deleted = n
	}

	if len(plan.Misclassified) > 0 {
		fixed := make([]entity.Asset, 0, len(plan.Misclassified))
		for _, a := range plan.Misclassified {
			a.Category = u.classifier.Classify(a.Symbol)
			fixed = append(fixed, a)
		}
		if err := u.repo.UpsertBatch(ctx, fixed); err != nil {
			return res, fmt.Errorf("correct categories: %w", err)
		}
		res.Corrected = len(fixed)
	}

	after, err := u.PlanCleanup(ctx)
	if err != nil {
		return res, fmt.Errorf("verify cleanup: %w", err)
	}
	res.Remaining = len(after.Delete)
	if res.Remaining > 0 {
		slog.Warn("duplicates remain after cleanup", "remaining", res.Remaining)
	}
	slog.Info("asset cleanup applied", "deleted", res.Deleted, "corrected", res.Corrected)
	return res, nil
}

// DeleteBySymbol は管理者操作として指定シンボルの資産を削除します。
func (u *MaintenanceUsecase) DeleteBySymbol(ctx context.Context, sym string) error {
	sym = strings.ToUpper(strings.TrimSpace(sym))
	if sym == "" {
		return ErrSymbolRequired
	}
	n, err := u.repo.DeleteBySymbol(ctx, sym)
	if err != nil {
		return fmt.Errorf("delete %s: %w", sym, err)
	}
	if n == 0 {
		return ErrAssetNotFound
	}
	slog.Info("asset deleted", "symbol", sym)
	return nil
}
