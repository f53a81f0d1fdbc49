package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/singleflight"

	"market_backend/internal/feature/assets/domain/entity"
	"market_backend/internal/feature/assets/usecase"
	"market_backend/internal/platform/externalapi/yahoo/dto"
)

// ErrUnauthorized は crumb が無効になったときに返されます。次の呼び出しで crumb を取り直します。
var ErrUnauthorized = errors.New("yahoo: unauthorized")

// crumbRetryBackoff は crumb 取得に失敗した後、再取得を控える時間です。
const crumbRetryBackoff = 30 * time.Second

// Client は Yahoo Finance の quote API を呼び出す QuoteProvider 実装です。
type Client struct {
	cfg    Config
	client *http.Client

	// crumb の取得は同時に1回だけ行い、HTTP 中はロックを持たない
	crumbGroup   singleflight.Group
	mu           sync.Mutex
	crumb        string
	crumbRetryAt time.Time
	now          func() time.Time
}

var _ usecase.QuoteProvider = (*Client)(nil)

// NewClient は指定された設定とHTTPクライアントで Client を生成します。
// client に Cookie Jar が無い場合は publicsuffix 付きの Jar を持つコピーを使います。
func NewClient(cfg Config, client *http.Client) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if client.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		c := *client
		c.Jar = jar
		client = &c
	}
	return &Client{cfg: cfg, client: client, now: time.Now}, nil
}

// Quote は1銘柄の相場を取得します。
// 結果が空なら usecase.ErrSymbolNotFound、レスポンスの形が想定外なら usecase.ErrSchemaValidation を返します。
func (c *Client) Quote(ctx context.Context, symbol string) (*entity.RawQuote, error) {
	crumb, err := c.ensureCrumb(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("symbols", symbol)
	if crumb != "" {
		q.Set("crumb", crumb)
	}
	u := fmt.Sprintf("%s/v7/finance/quote?%s", c.cfg.BaseURL, q.Encode())

	res, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer closeBody(res)

	if res.StatusCode == http.StatusUnauthorized {
		c.resetCrumb()
		return nil, ErrUnauthorized
	}
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("yahoo http %d", res.StatusCode)
	}

	var body dto.QuoteResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode quote: %v", usecase.ErrSchemaValidation, err)
	}
	if body.QuoteResponse == nil {
		return nil, fmt.Errorf("%w: missing quoteResponse", usecase.ErrSchemaValidation)
	}
	if e := body.QuoteResponse.Error; e != nil {
		return nil, fmt.Errorf("yahoo: %s: %s", e.Code, e.Description)
	}

	for _, r := range body.QuoteResponse.Result {
		if strings.EqualFold(r.Symbol, symbol) {
			return toRawQuote(r), nil
		}
	}
	if len(body.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", usecase.ErrSymbolNotFound, symbol)
	}
	// 一致する symbol が無い場合は先頭を使う（エイリアス解決された場合など）
	return toRawQuote(body.QuoteResponse.Result[0]), nil
}

// ensureCrumb は未取得なら crumb を取得して返します。取得できない場合は空文字で続行し、
// crumbRetryBackoff の間は再取得しません。
func (c *Client) ensureCrumb(ctx context.Context) (string, error) {
	if crumb, ok := c.cachedCrumb(); ok {
		return crumb, nil
	}

	v, err, _ := c.crumbGroup.Do("crumb", func() (any, error) {
		// 直前に別の呼び出しが取得を終えていればそれを使う
		if crumb, ok := c.cachedCrumb(); ok {
			return crumb, nil
		}
		return c.fetchCrumb(ctx)
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		// 先行した呼び出し側のキャンセルは crumb なしで続行する
		return "", nil
	}
	return v.(string), nil
}

// cachedCrumb は保存済みの crumb を返します。失敗後の待機中は空文字と true を返します。
func (c *Client) cachedCrumb() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.crumb != "" {
		return c.crumb, true
	}
	return "", c.now().Before(c.crumbRetryAt)
}

// fetchCrumb は Cookie を受け取ってから crumb を取得し、結果を記録します。
func (c *Client) fetchCrumb(ctx context.Context) (string, error) {
	if c.cfg.SessionURL != "" {
		// Cookie を受け取るだけなのでステータスは見ない
		if res, err := c.get(ctx, c.cfg.SessionURL); err == nil {
			closeBody(res)
		} else if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	res, err := c.get(ctx, c.cfg.BaseURL+"/v1/test/getcrumb")
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		slog.Warn("failed to fetch yahoo crumb", "error", err)
		return c.storeCrumb(""), nil
	}
	defer closeBody(res)

	if res.StatusCode != http.StatusOK {
		slog.Warn("failed to fetch yahoo crumb", "status", res.StatusCode)
		return c.storeCrumb(""), nil
	}
	b, err := io.ReadAll(io.LimitReader(res.Body, 1024))
	if err != nil {
		return c.storeCrumb(""), nil
	}
	return c.storeCrumb(strings.TrimSpace(string(b))), nil
}

// storeCrumb は取得結果を保存します。空なら再取得を crumbRetryBackoff だけ遅らせます。
func (c *Client) storeCrumb(crumb string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.crumb = crumb
	if crumb == "" {
		c.crumbRetryAt = c.now().Add(crumbRetryBackoff)
	} else {
		c.crumbRetryAt = time.Time{}
	}
	return crumb
}

func (c *Client) resetCrumb() {
	c.mu.Lock()
	c.crumb = ""
	c.crumbRetryAt = time.Time{}
	c.mu.Unlock()
}

func (c *Client) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")
	return c.client.Do(req)
}

func closeBody(res *http.Response) {
	if err := res.Body.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err)
	}
}

func toRawQuote(q dto.Quote) *entity.RawQuote {
	return &entity.RawQuote{
		Symbol:             q.Symbol,
		ShortName:          q.ShortName,
		LongName:           q.LongName,
		RegularMarketPrice: q.RegularMarketPrice,
		CurrentPrice:       q.CurrentPrice,
		Ask:                q.Ask,
		Bid:                q.Bid,
		Change:             q.RegularMarketChange,
		ChangePercent:      q.RegularMarketChangePercent,
		Volume:             q.RegularMarketVolume,
		MarketCap:          q.MarketCap,
		DayHigh:            q.RegularMarketDayHigh,
		DayLow:             q.RegularMarketDayLow,
		Open:               q.RegularMarketOpen,
		PreviousClose:      q.RegularMarketPreviousClose,
		FiftyTwoWeekHigh:   q.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:    q.FiftyTwoWeekLow,
		AverageVolume:      q.AverageDailyVolume3Month,
	}
}
