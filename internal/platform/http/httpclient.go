package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient は外部API呼び出し用に設定されたHTTPクライアントを作成します。
//
// 相場取得は同一ホストへの並列リクエストが中心なので、ホストあたりのアイドル接続を多めに保持します。
// ResponseHeaderTimeout はヘッダーが返らないまま詰まった接続を timeout より先に切ります。
//
// http.DefaultClient にはタイムアウトが無いため、外部呼び出しには必ずこのクライアントを使うこと。
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: responseHeaderTimeout(timeout),
	}
	return &http.Client{Timeout: timeout, Transport: t}
}

func responseHeaderTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return 0
	}
	return timeout * 4 / 5
}
