package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	assetentity "market_backend/internal/feature/assets/domain/entity"
	"market_backend/internal/feature/alerts/domain/entity"
)

// AlertRepository abstracts the persistence layer for alerts.
// Every method is scoped to userID; rows of other users are invisible.
type AlertRepository interface {
	Create(ctx context.Context, a entity.Alert) error
	ListActive(ctx context.Context, userID string) ([]entity.Alert, error)
	SetActive(ctx context.Context, userID, id string, active bool) (int64, error)
	Delete(ctx context.Context, userID, id string) (int64, error)
	DeleteByAsset(ctx context.Context, userID, symbol string) (int64, error)
}

// AssetLookup reads the current state of stored assets.
type AssetLookup interface {
	FindBySymbols(ctx context.Context, symbols []string) ([]assetentity.Asset, error)
}

// SymbolResolver maps user input such as "btc" to the stored vendor symbol "BTC-USD".
type SymbolResolver interface {
	Resolve(sym string) string
}

// CreateAlertInput is the user-supplied part of a new alert.
type CreateAlertInput struct {
	AssetSymbol string
	AlertType   entity.AlertType
	Condition   entity.Condition
	Value       float64
}

// AlertUsecase provides business logic for alert operations.
type AlertUsecase struct {
	repo     AlertRepository
	assets   AssetLookup
	resolver SymbolResolver
	newID    func() string
	now    func() time.Time
}

// NewAlertUsecase creates a new AlertUsecase. Ids are random UUIDv4.
// resolver may be nil, in which case symbols are only upper-cased.
func NewAlertUsecase(repo AlertRepository, assets AssetLookup, resolver SymbolResolver) *AlertUsecase {
	return &AlertUsecase{repo: repo, assets: assets, resolver: resolver, newID: uuid.NewString, now: time.Now}
}

// Create は入力を検証し、対象資産が保存済みであることを確認してからアラートを登録します。
func (u *AlertUsecase) Create(ctx context.Context, userID string, in CreateAlertInput) (entity.AlertRecord, error) {
	sym := strings.ToUpper(strings.TrimSpace(in.AssetSymbol))
	switch {
	case sym == "":
		return entity.AlertRecord{}, fmt.Errorf("%w: assetSymbol is required", ErrInvalidAlert)
	case !in.AlertType.Valid():
		return entity.AlertRecord{}, fmt.Errorf("%w: alertType %q", ErrInvalidAlert, in.AlertType)
	case !in.Condition.Valid():
		return entity.AlertRecord{}, fmt.Errorf("%w: condition %q", ErrInvalidAlert, in.Condition)
	case in.Value <= 0 || math.IsNaN(in.Value) || math.IsInf(in.Value, 0):
		return entity.AlertRecord{}, fmt.Errorf("%w: value must be positive", ErrInvalidAlert)
	}

	asset, err := u.findAsset(ctx, sym)
	if err != nil {
		return entity.AlertRecord{}, err
	}

	a := entity.Alert{
		ID:          u.newID(),
		UserID:      userID,
		AssetSymbol: asset.Symbol,
		AlertType:   in.AlertType,
		Condition:   in.Condition,
		Value:       in.Value,
		IsActive:    true,
		CreatedAt:   u.now().UTC(),
	}
	if err := u.repo.Create(ctx, a); err != nil {
		return entity.AlertRecord{}, err
	}
	return entity.AlertRecord{Alert: a, Asset: snapshot(asset)}, nil
}

// findAsset は入力どおりの銘柄を優先し、無ければ quote 形式に変換した銘柄で探します。
func (u *AlertUsecase) findAsset(ctx context.Context, sym string) (assetentity.Asset, error) {
	candidates := u.candidates(sym)
	assets, err := u.assets.FindBySymbols(ctx, candidates)
	if err != nil {
		return assetentity.Asset{}, fmt.Errorf("lookup asset: %w", err)
	}
	for _, want := range candidates {
		for _, a := range assets {
			if strings.EqualFold(a.Symbol, want) {
				return a, nil
			}
		}
	}
	return assetentity.Asset{}, fmt.Errorf("%w: %s", ErrAssetNotFound, sym)
}

// candidates returns sym and, when it differs, its resolved quote symbol.
func (u *AlertUsecase) candidates(sym string) []string {
	if u.resolver == nil {
		return []string{sym}
	}
	if resolved := u.resolver.Resolve(sym); resolved != "" && resolved != sym {
		return []string{sym, resolved}
	}
	return []string{sym}
}

// List はユーザーの有効なアラートを資産の現在値と結合して返します。
func (u *AlertUsecase) List(ctx context.Context, userID string) ([]entity.AlertRecord, error) {
	alerts, err := u.repo.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(alerts) == 0 {
		return []entity.AlertRecord{}, nil
	}

	seen := map[string]struct{}{}
	symbols := make([]string, 0, len(alerts))
	for _, a := range alerts {
		if _, ok := seen[a.AssetSymbol]; !ok {
			seen[a.AssetSymbol] = struct{}{}
			symbols = append(symbols, a.AssetSymbol)
		}
	}
	assets, err := u.assets.FindBySymbols(ctx, symbols)
	if err != nil {
		return nil, fmt.Errorf("lookup assets: %w", err)
	}
	bySymbol := make(map[string]assetentity.Asset, len(assets))
	for _, a := range assets {
		bySymbol[a.Symbol] = a
	}

	out := make([]entity.AlertRecord, 0, len(alerts))
	for _, a := range alerts {
		rec := entity.AlertRecord{Alert: a}
		if asset, ok := bySymbol[a.AssetSymbol]; ok {
			rec.Asset = snapshot(asset)
		}
		out = append(out, rec)
	}
	return out, nil
}

// SetActive はアラートの有効/無効を切り替えます。
func (u *AlertUsecase) SetActive(ctx context.Context, userID, id string, active bool) error {
	n, err := u.repo.SetActive(ctx, userID, id, active)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// Delete はアラートを削除します。
func (u *AlertUsecase) Delete(ctx context.Context, userID, id string) error {
	n, err := u.repo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// DeleteByAsset は指定銘柄のアラートをすべて削除し、削除件数を返します。0 件はエラーではありません。
func (u *AlertUsecase) DeleteByAsset(ctx context.Context, userID, symbol string) (int64, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return 0, fmt.Errorf("%w: assetSymbol is required", ErrInvalidAlert)
	}
	var total int64
	for _, s := range u.candidates(sym) {
		n, err := u.repo.DeleteByAsset(ctx, userID, s)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func snapshot(a assetentity.Asset) *entity.AssetSnapshot {
	return &entity.AssetSnapshot{
		Symbol:        a.Symbol,
		Name:          a.Name,
		Price:         a.Price,
		ChangePercent: a.ChangePercent,
	}
}
