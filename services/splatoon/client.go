package splatoon

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/net/http/httpproxy"

	"idacast/internal/locale"
	"idacast/models"
	"idacast/services/translation"
)

const (
	DefaultBaseURL     = "https://splatoon3.ink/data/"
	DefaultUserAgent   = "idacast/1.0 (+https://github.com/idacast/idacast)"
	defaultHTTPTimeout = 30 * time.Second
	maxPayloadSize     = 16 * 1024 * 1024
)

// ClientConfig configures the remote feed client.
type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	Proxy     string // overrides HTTP(S)_PROXY when set
	UserAgent string

	// HTTPClient replaces the built-in client entirely (tests).
	HTTPClient *http.Client
}

// Client fetches schedules and locale dictionaries from splatoon3.ink.
type Client struct {
	baseURL   *url.URL
	client    *http.Client
	userAgent string
}

// NewClient creates a feed client.
func NewClient(cfg ClientConfig) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		proxyCfg := httpproxy.FromEnvironment()
		if cfg.Proxy != "" {
			proxyCfg.HTTPProxy = cfg.Proxy
			proxyCfg.HTTPSProxy = cfg.Proxy
		}
		proxyFunc := proxyCfg.ProxyFunc()

		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = func(r *http.Request) (*url.URL, error) {
			return proxyFunc(r.URL)
		}
		httpClient = &http.Client{Timeout: timeout, Transport: transport}
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &Client{baseURL: u, client: httpClient, userAgent: ua}, nil
}

// FetchSchedules downloads, parses and normalizes the schedule feed.
func (c *Client) FetchSchedules(ctx context.Context) (models.Schedules, error) {
	body, err := c.get(ctx, "schedules.json")
	if err != nil {
		return models.Schedules{}, err
	}
	raw, err := ParseSchedules(body)
	if err != nil {
		return models.Schedules{}, err
	}
	return Normalize(raw), nil
}

// FetchTranslation downloads the dictionary for lang.
func (c *Client) FetchTranslation(ctx context.Context, lang string) (translation.Dictionary, error) {
	lang = locale.Normalize(lang)
	if lang == "" {
		return nil, fmt.Errorf("fetch translation: empty locale")
	}
	body, err := c.get(ctx, "locale/"+lang+".json")
	if err != nil {
		return nil, err
	}
	return ParseTranslation(body)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	target := c.baseURL.ResolveReference(&url.URL{Path: path})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s returned status %d", ErrNetwork, target.Path, resp.StatusCode)
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %v", ErrMalformedPayload, err)
		}
		defer gz.Close()
		reader = gz
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxPayloadSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}

	// Captive portals and CDN error pages answer 200 with HTML.
	if mt := mimetype.Detect(body); mt.Is("text/html") || mt.Is("text/xml") {
		return nil, malformed("GET %s returned %s instead of JSON", target.Path, mt.String())
	}

	log.Printf("[splatoon] fetched %s (%d bytes)", target.Path, len(body))
	return body, nil
}
