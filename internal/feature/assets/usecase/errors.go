package usecase

import "errors"

var (
	// ErrSchemaValidation はベンダーのレスポンス形式が想定と異なる場合のエラーです。リトライしません。
	ErrSchemaValidation = errors.New("quote schema validation failed")
	// ErrSymbolNotFound is returned when the vendor has no quote for the symbol.
	ErrSymbolNotFound = errors.New("symbol not found upstream")
	// ErrAssetNotFound is returned when no stored asset matches.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrNoQuotesFetched means a refresh run could not fetch a single quote.
	ErrNoQuotesFetched = errors.New("failed to fetch any asset data")
	// ErrSymbolConflict means the upsert hit the unique symbol index under another id.
	ErrSymbolConflict = errors.New("symbol already stored under another id")

	ErrInvalidCategory = errors.New("invalid category")
	ErrSymbolRequired  = errors.New("symbol is required")
)
