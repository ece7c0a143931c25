package whttp

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

type WHTTPHeader struct {
	Name  string
	Value string
}

type WHTTPReq struct {
	URL     string
	Method  string
	Body    []byte
	Headers []WHTTPHeader
}

type WHTTPRes struct {
	StatusCode int
	BodyString string
}

var (
	defaultClient  = NewClient(4)
	proxyTransport *http.Transport
)

// NewClient builds a retrying client. Connectivity failures, HTTP 429 and
// 5xx are retried up to retryMax times with exponential backoff; every
// other response is handed back to the caller as-is.
func NewClient(retryMax int) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.Logger = log.New(io.Discard, "", 0)
	c.RetryMax = retryMax
	c.RetryWaitMin = 1 * time.Second
	c.RetryWaitMax = 30 * time.Second
	c.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, nil
		}
		if resp != nil {
			if resp.StatusCode == http.StatusTooManyRequests {
				return true, nil
			}
			if resp.StatusCode >= 500 && resp.StatusCode != http.StatusNotImplemented {
				return true, nil
			}
		}
		return false, nil
	}
	if proxyTransport != nil {
		c.HTTPClient.Transport = proxyTransport
	}
	return c
}

func GetDefaultClient() *retryablehttp.Client {
	return defaultClient
}

// SetupProxy routes the default client and every client built afterwards
// through an HTTP proxy.
func SetupProxy(proxy string) error {
	proxyURL, err := url.Parse(proxy)
	if err != nil {
		return err
	}
	proxyTransport = &http.Transport{
		Proxy: http.ProxyURL(proxyURL),
	}
	defaultClient.HTTPClient.Transport = proxyTransport
	return nil
}

func SendHTTPRequest(ctx context.Context, wReq *WHTTPReq, client *retryablehttp.Client) (wRes *WHTTPRes, err error) {
	if client == nil {
		client = defaultClient
	}

	req, err := retryablehttp.NewRequest(wReq.Method, wReq.URL, wReq.Body)
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)

	req.Header.Set("User-Agent", "droplog/1.0")

	for _, h := range wReq.Headers {
		req.Header.Set(h.Name, h.Value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &WHTTPRes{
		StatusCode: resp.StatusCode,
		BodyString: string(bodyBytes),
	}, nil
}
