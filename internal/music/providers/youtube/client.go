package youtube

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"time"

	_ "github.com/bdandy/go-socks4"
	"golang.org/x/net/proxy"

	"musa/internal/logging"
)

// newHTTPClient builds the HTTP client used by the extractor, optionally
// routed through an http, socks4 or socks5 proxy.
func newHTTPClient(proxyStr string) *http.Client {
	client := &http.Client{Timeout: 15 * time.Second}
	if proxyStr == "" {
		return client
	}

	proxyURL, err := url.Parse(proxyStr)
	if err != nil {
		logging.Warn("youtube_proxy_invalid", "proxy", proxyStr, "error", err)
		return client
	}

	var transport *http.Transport

	switch proxyURL.Scheme {
	case "http", "https":
		transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	case "socks5":
		auth := &proxy.Auth{}
		if proxyURL.User != nil {
			auth.User = proxyURL.User.Username()
			if pass, ok := proxyURL.User.Password(); ok {
				auth.Password = pass
			}
		}
		dialer, err := proxy.SOCKS5("tcp", proxyURL.Host, auth, &net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 10 * time.Second,
		})
		if err != nil {
			logging.Warn("youtube_proxy_dialer_failed", "proxy", proxyStr, "error", err)
			break
		}
		transport = &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			},
		}
	case "socks4":
		dialer, err := proxy.FromURL(proxyURL, &net.Dialer{Timeout: 10 * time.Second})
		if err != nil {
			logging.Warn("youtube_proxy_dialer_failed", "proxy", proxyStr, "error", err)
			break
		}
		transport = &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			},
		}
	default:
		logging.Warn("youtube_proxy_unsupported_scheme", "scheme", proxyURL.Scheme)
	}

	if transport != nil {
		client.Transport = transport
		logging.Event("youtube_proxy_enabled", "scheme", proxyURL.Scheme)
	}
	return client
}
