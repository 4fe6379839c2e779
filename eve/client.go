// Package eve implements a client for the EVE-NG Community Edition HTTP API.
//
// Two endpoint families need UI-compatible requests: network creation and
// interface wiring only succeed when the request mimics the legacy web UI
// (urlencoded content type carrying a raw JSON body plus an
// X-Requested-With header). Everything else is plain JSON.
package eve

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	defaultTimeout = 30 * time.Second

	hdrRequestedWith = "X-Requested-With"
	uiContentType    = "application/x-www-form-urlencoded; charset=UTF-8"
	uiAccept         = "application/json, text/javascript, */*; q=0.01"
)

// Config carries everything needed to talk to one EVE server. There is no
// package-level client; construct a Client explicitly and pass it around.
type Config struct {
	BaseURL     string
	Username    string
	Password    string
	Author      string
	Description string
	Timeout     time.Duration
}

// Client is an authenticated EVE-NG API client. EVE tracks the session in a
// cookie, so the underlying http.Client carries a cookie jar.
type Client struct {
	cfg           Config
	http          *http.Client
	defaultFolder string
}

// NewClient validates cfg and builds a client. Login must be called before
// any lab operation.
func NewClient(cfg Config) (*Client, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("eve: base URL is empty, example: http://10.0.0.10")
	}
	if strings.TrimSpace(cfg.Username) == "" {
		return nil, fmt.Errorf("eve: username is empty")
	}
	if strings.TrimSpace(cfg.Password) == "" {
		return nil, fmt.Errorf("eve: password is empty")
	}
	if cfg.Author == "" {
		cfg.Author = "evectl"
	}
	if cfg.Description == "" {
		cfg.Description = "Created by evectl"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
	}, nil
}

// Login authenticates and learns the user's default folder.
func (c *Client) Login(ctx context.Context) error {
	payload, _ := json.Marshal(map[string]string{
		"username": c.cfg.Username,
		"password": c.cfg.Password,
	})

	// raw JSON body without a forced content type; that is what CE accepts
	env, err := c.do(ctx, http.MethodPost, "/api/auth/login", bytes.NewReader(payload), nil)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if env.Status != "success" {
		return fmt.Errorf("login failed: %s", env.Message)
	}

	auth, err := c.do(ctx, http.MethodGet, "/api/auth", nil, nil)
	if err != nil {
		return fmt.Errorf("auth query failed: %w", err)
	}
	var info struct {
		Folder string `json:"folder"`
	}
	if len(auth.Data) > 0 {
		if err := json.Unmarshal(auth.Data, &info); err == nil && info.Folder != "" {
			c.defaultFolder = info.Folder
		}
	}
	log.Debugf("logged in to %s, default folder %q", c.cfg.BaseURL, c.DefaultFolder())
	return nil
}

// DefaultFolder is the folder used when a lab operation passes an empty one.
func (c *Client) DefaultFolder() string {
	if c.defaultFolder == "" {
		return "/"
	}
	return c.defaultFolder
}

// Host returns the host part of the configured base URL; console sockets live
// on the same machine as the API.
func (c *Client) Host() string {
	b := c.cfg.BaseURL
	if !strings.Contains(b, "://") {
		b = "http://" + b
	}
	u, err := url.Parse(b)
	if err != nil || u.Host == "" {
		return strings.TrimPrefix(strings.TrimPrefix(b, "http://"), "https://")
	}
	return u.Hostname()
}

// labPath builds the API path for a lab, escaping each folder segment.
func (c *Client) labPath(lab, folder string) string {
	if folder == "" {
		folder = c.DefaultFolder()
	}
	var parts []string
	for _, seg := range strings.Split(strings.Trim(folder, "/"), "/") {
		if seg != "" {
			parts = append(parts, url.PathEscape(seg))
		}
	}
	parts = append(parts, url.PathEscape(lab+".unl"))
	return "/api/labs/" + strings.Join(parts, "/")
}

// uiHeaders are the headers the legacy UI sends on write operations.
func uiHeaders(accept bool) map[string]string {
	h := map[string]string{
		hdrRequestedWith: "XMLHttpRequest",
		"Content-Type":   uiContentType,
	}
	if accept {
		h["Accept"] = uiAccept
	}
	return h
}

// do issues one request and decodes the standard EVE response envelope.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, headers map[string]string) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s: HTTP %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	env := &envelope{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, env); err != nil {
			return nil, fmt.Errorf("%s %s: decoding body: %w", method, path, err)
		}
	}
	return env, nil
}

// doJSON marshals payload as a JSON body with an application/json content type.
func (c *Client) doJSON(ctx context.Context, method, path string, payload interface{}) (*envelope, error) {
	jv, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, method, path, bytes.NewReader(jv),
		map[string]string{"Content-Type": "application/json"})
}

// doUI sends payload the way the legacy UI does: compact JSON text inside a
// urlencoded content type, plus the XMLHttpRequest marker.
func (c *Client) doUI(ctx context.Context, method, path string, payload interface{}, accept bool) (*envelope, error) {
	jv, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, method, path, bytes.NewReader(jv), uiHeaders(accept))
}
