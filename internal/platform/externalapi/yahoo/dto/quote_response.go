package dto

// QuoteResponse は /v7/finance/quote のレスポンスです。
type QuoteResponse struct {
	QuoteResponse *QuoteResult `json:"quoteResponse"`
}

type QuoteResult struct {
	Result []Quote     `json:"result"`
	Error  *QuoteError `json:"error"`
}

type QuoteError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Quote は1銘柄分の値です。値が無いフィールドは nil のままです。
type Quote struct {
	Symbol                     string   `json:"symbol"`
	ShortName                  string   `json:"shortName"`
	LongName                   string   `json:"longName"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	CurrentPrice               *float64 `json:"currentPrice"`
	Ask                        *float64 `json:"ask"`
	Bid                        *float64 `json:"bid"`
	RegularMarketChange        *float64 `json:"regularMarketChange"`
	RegularMarketChangePercent *float64 `json:"regularMarketChangePercent"`
	RegularMarketVolume        *float64 `json:"regularMarketVolume"`
	MarketCap                  *float64 `json:"marketCap"`
	RegularMarketDayHigh       *float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow        *float64 `json:"regularMarketDayLow"`
	RegularMarketOpen          *float64 `json:"regularMarketOpen"`
	RegularMarketPreviousClose *float64 `json:"regularMarketPreviousClose"`
	FiftyTwoWeekHigh           *float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow            *float64 `json:"fiftyTwoWeekLow"`
	AverageDailyVolume3Month   *float64 `json:"averageDailyVolume3Month"`
}
