package vk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vkarchive/pkg/config"
	"vkarchive/pkg/errors"
	"vkarchive/pkg/logger"
	"vkarchive/pkg/ratelimit"
)

// Options configures a Client
type Options struct {
	BaseURL    string
	Token      string
	Version    string
	UserAgent  string
	Timeout    time.Duration
	Limiter    ratelimit.Limiter
	HTTPClient *http.Client
}

// Client calls VK API methods on behalf of one access token
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	token      string
	version    string
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// NewClient creates a new API client
func NewClient(opts Options, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = BaseURL
	}
	version := opts.Version
	if version == "" {
		version = DefaultAPIVersion
	}

	headers := map[string]string{
		"Accept":          "application/json",
		"Accept-Language": "en-US,en;q=0.9",
	}
	if opts.UserAgent != "" {
		headers["User-Agent"] = opts.UserAgent
	}

	return &Client{
		httpClient: httpClient,
		headers:    headers,
		baseURL:    baseURL,
		token:      opts.Token,
		version:    version,
		limiter:    opts.Limiter,
		logger:     log.WithField("component", "vk"),
	}
}

// NewClientFromConfig builds a client for token using the vk section of cfg
func NewClientFromConfig(cfg *config.Config, token string, limiter ratelimit.Limiter, log logger.Logger) *Client {
	return NewClient(Options{
		BaseURL:   cfg.VK.BaseURL,
		Token:     token,
		Version:   cfg.VK.APIVersion,
		UserAgent: cfg.VK.UserAgent,
		Timeout:   cfg.VK.Timeout,
		Limiter:   limiter,
	}, log)
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request, method string) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"api_method": method,
			"error":      err.Error(),
			"duration":   duration,
		})
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error calling %s", method),
			Err:     err,
		}
	}

	logger.LogRequest(c.logger, method, resp.StatusCode, float64(duration.Microseconds())/1000)
	return resp, nil
}

// checkResponseStatus maps a non-2xx HTTP status to a typed error
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return &errors.Error{Type: errors.ErrorTypeAuth, Message: "authentication required", Code: resp.StatusCode}
	case resp.StatusCode == http.StatusForbidden:
		return &errors.Error{Type: errors.ErrorTypeAccessDenied, Message: "access denied", Code: resp.StatusCode}
	case resp.StatusCode == http.StatusNotFound:
		return &errors.Error{Type: errors.ErrorTypeNotFound, Message: "resource not found", Code: resp.StatusCode}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &errors.Error{Type: errors.ErrorTypeRateLimit, Message: "rate limit exceeded", Code: resp.StatusCode}
	case resp.StatusCode >= 500:
		return &errors.Error{Type: errors.ErrorTypeServerError, Message: "server error", Code: resp.StatusCode}
	default:
		return &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}
}

// apiError maps an API error object to a typed error.
// Codes follow https://dev.vk.com/reference/errors.
func apiError(method string, e *APIError) *errors.Error {
	errorType := errors.ErrorTypeUnknown
	switch e.Code {
	case 5, 27, 28:
		errorType = errors.ErrorTypeAuth
	case 6, 9, 29:
		errorType = errors.ErrorTypeRateLimit
	case 10:
		errorType = errors.ErrorTypeServerError
	case 15, 18, 19, 30, 200, 201, 203, 204:
		errorType = errors.ErrorTypeAccessDenied
	case 100, 113:
		errorType = errors.ErrorTypeInput
	case 104:
		errorType = errors.ErrorTypeNotFound
	}
	return &errors.Error{
		Type:    errorType,
		Message: fmt.Sprintf("%s: %s", method, e.Message),
		Code:    e.Code,
	}
}

// call invokes method and decodes the response field into target
func (c *Client) call(ctx context.Context, method string, params url.Values, target interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("v", c.version)
	if c.token != "" {
		params.Set("access_token", c.token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, BuildMethodURL(c.baseURL, method, params), nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeUnknown, "failed to create request")
	}

	resp, err := c.doRequest(req, method)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		c.logger.WarnWithFields("API request rejected", map[string]interface{}{
			"api_method": method,
			"status":     resp.StatusCode,
		})
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: "failed to read response body",
			Code:    resp.StatusCode,
			Err:     err,
		}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return c.parseError(method, body, err)
	}
	if env.Error != nil {
		return apiError(method, env.Error)
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(env.Response, target); err != nil {
		return c.parseError(method, body, err)
	}
	return nil
}

func (c *Client) parseError(method string, body []byte, err error) error {
	preview := string(body)
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
		"api_method":   method,
		"error":        err.Error(),
		"body_preview": preview,
	})
	return &errors.Error{
		Type:    errors.ErrorTypeParsing,
		Message: fmt.Sprintf("failed to parse %s response", method),
		Err:     err,
	}
}

// UsersGet fetches user profiles; with no ids it returns the token owner.
func (c *Client) UsersGet(ctx context.Context, ids ...string) ([]User, error) {
	params := url.Values{}
	if len(ids) > 0 {
		params.Set("user_ids", strings.Join(ids, ","))
	}
	var users []User
	if err := c.call(ctx, MethodUsersGet, params, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ResolveScreenName resolves a page handle to its numeric owner id.
// Users resolve to a positive id, communities to a negative one.
func (c *Client) ResolveScreenName(ctx context.Context, screenName string) (int64, error) {
	var raw json.RawMessage
	if err := c.call(ctx, MethodResolveScreenName, url.Values{"screen_name": {screenName}}, &raw); err != nil {
		return 0, err
	}

	// unknown names come back as an empty array
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return 0, errors.New(errors.ErrorTypeInput, 0, "page %q does not exist", screenName)
	}

	var resolved ResolvedName
	if err := json.Unmarshal(trimmed, &resolved); err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeParsing, "failed to parse resolved screen name")
	}

	switch resolved.Type {
	case "user":
		return resolved.ObjectID, nil
	case "group", "page", "event":
		return -resolved.ObjectID, nil
	default:
		return 0, errors.New(errors.ErrorTypeInput, 0, "%q is a %s, not a wall owner", screenName, resolved.Type)
	}
}

// WallGet fetches count posts starting at offset from the wall of domain
func (c *Client) WallGet(ctx context.Context, domain string, count, offset int) (*WallPage, error) {
	params := url.Values{
		"domain": {domain},
		"count":  {strconv.Itoa(count)},
		"offset": {strconv.Itoa(offset)},
	}

	c.logger.DebugWithFields("fetching wall page", map[string]interface{}{
		"domain": domain,
		"count":  count,
		"offset": offset,
	})

	var page WallPage
	if err := c.call(ctx, MethodWallGet, params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// VideoGet looks up videos by owner_video[_accessKey] composite keys
func (c *Client) VideoGet(ctx context.Context, videoKey string) ([]Video, error) {
	params := url.Values{
		"videos": {videoKey},
		"count":  {"1"},
	}
	if owner, _, ok := strings.Cut(videoKey, "_"); ok {
		if _, err := strconv.ParseInt(owner, 10, 64); err == nil {
			params.Set("owner_id", owner)
		}
	}
	var list videoList
	if err := c.call(ctx, MethodVideoGet, params, &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

// AudioGetByID looks up audio stream URLs by owner_audio composite keys
func (c *Client) AudioGetByID(ctx context.Context, audioKey string) ([]Audio, error) {
	var audios []Audio
	if err := c.call(ctx, MethodAudioGetByID, url.Values{"audios": {audioKey}}, &audios); err != nil {
		return nil, err
	}
	return audios, nil
}

// PagesGet fetches a wiki page with its rendered HTML
func (c *Client) PagesGet(ctx context.Context, ownerID, pageID int64) (*WikiPage, error) {
	params := url.Values{
		"owner_id":  {strconv.FormatInt(ownerID, 10)},
		"page_id":   {strconv.FormatInt(pageID, 10)},
		"need_html": {"1"},
	}
	var page WikiPage
	if err := c.call(ctx, MethodPagesGet, params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
