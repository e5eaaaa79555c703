// Package apiclient is the HTTP layer shared by the Scryfall and 17Lands
// clients: GET requests against a fixed base URL, body decoding, and the
// pagination policy.
package apiclient

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/mtgmine/mtgmine/internal/errs"
)

const (
	DefaultTimeout = 30 * time.Second
	UserAgent      = "mtgmine/0.1.0"

	maxErrorBody = 64 << 10
)

var (
	defaultHeaders = map[string]string{
		"User-Agent":      UserAgent,
		"Accept":          "application/json, text/csv;q=0.9, */*;q=0.8",
		"Accept-Encoding": "gzip",
	}
)

type Config struct {
	BaseURL  string
	Headers  map[string]string
	Auth     *AuthConfig
	Timeout  time.Duration
	Insecure bool
}

type AuthConfig struct {
	Bearer string
	Basic  *BasicAuthConfig
}

type BasicAuthConfig struct {
	Username string
	Password string
	Encoded  string
}

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	headers    map[string]string
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base_url is required")
	}

	parsedURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base_url '%s': %w", cfg.BaseURL, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("base_url must use http or https scheme, got: %s", parsedURL.Scheme)
	}

	// Relative paths resolve under the base path, not the host root.
	if !strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path += "/"
	}

	headers := lo.Assign(defaultHeaders, lo.MapKeys(cfg.Headers, func(_ string, k string) string {
		return http.CanonicalHeaderKey(k)
	}))
	if cfg.Auth != nil {
		switch {
		case cfg.Auth.Bearer != "":
			headers["Authorization"] = "Bearer " + cfg.Auth.Bearer
		case cfg.Auth.Basic != nil && cfg.Auth.Basic.Encoded != "":
			headers["Authorization"] = "Basic " + cfg.Auth.Basic.Encoded
		case cfg.Auth.Basic != nil:
			headers["Authorization"] = "Basic " + base64.StdEncoding.EncodeToString([]byte(cfg.Auth.Basic.Username+":"+cfg.Auth.Basic.Password))
		}
	}

	client := &Client{
		baseURL: parsedURL,
		headers: headers,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.logger == nil {
		client.logger = zap.NewNop()
	}

	if client.httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}

		transport := cleanhttp.DefaultPooledTransport()
		if cfg.Insecure {
			if transport.TLSClientConfig == nil {
				transport.TLSClientConfig = &tls.Config{}
			}

			transport.TLSClientConfig.InsecureSkipVerify = true
		}

		client.httpClient = &http.Client{
			Transport: transport,
			Timeout:   timeout,
		}
	}

	return client, nil
}

func (c *Client) BaseURL() *url.URL {
	return c.baseURL
}

// Get requests path (relative to the base URL) with params and returns the
// decoded body.
func (c *Client) Get(ctx context.Context, path string, params *Params) (any, error) {
	reqURL, err := c.buildURL(path, params)
	if err != nil {
		return nil, err
	}

	body, contentType, err := c.fetch(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	return DecodeBody(body, contentType)
}

// GetURL requests rawURL as given, resolving it against the base URL when it
// is relative. Used to follow next-page pointers.
func (c *Client) GetURL(ctx context.Context, rawURL string) (any, error) {
	reqURL, err := c.buildURL(rawURL, nil)
	if err != nil {
		return nil, err
	}

	body, contentType, err := c.fetch(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	return DecodeBody(body, contentType)
}

// GetText requests path with params and returns the undecoded body.
func (c *Client) GetText(ctx context.Context, path string, params *Params) (string, error) {
	reqURL, err := c.buildURL(path, params)
	if err != nil {
		return "", err
	}

	body, _, err := c.fetch(ctx, reqURL)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

func (c *Client) buildURL(path string, params *Params) (*url.URL, error) {
	pathURL, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse path '%s': %w", path, err)
	}

	fullURL := c.baseURL.ResolveReference(pathURL)

	if encoded := params.Encode(); encoded != "" {
		if fullURL.RawQuery != "" {
			fullURL.RawQuery += "&" + encoded
		} else {
			fullURL.RawQuery = encoded
		}
	}

	return fullURL, nil
}

func (c *Client) fetch(ctx context.Context, reqURL *url.URL) ([]byte, string, error) {
	start := time.Now()
	target := reqURL.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("http request failed",
			zap.String("url", target),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, "", &errs.NetworkError{URL: target, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := readBody(resp)
	if err != nil {
		return nil, "", &errs.NetworkError{URL: target, Err: err}
	}

	c.logger.Debug("http request completed",
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, "", &errs.UpstreamError{URL: target, StatusCode: resp.StatusCode, Body: body}
	}

	return body, resp.Header.Get("Content-Type"), nil
}

func readBody(resp *http.Response) ([]byte, error) {
	var body io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gzipReader, err := newGzipReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer func() { _ = gzipReader.Close() }()
		body = gzipReader
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}
