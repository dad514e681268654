package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	cblog "github.com/charmbracelet/log"
	appcontext "github.com/darksworm/kubeportal/pkg/context"
	apperrors "github.com/darksworm/kubeportal/pkg/errors"
	"github.com/darksworm/kubeportal/pkg/model"
	"github.com/tidwall/gjson"
)

// Fetcher is the network surface the portal services depend on.
type Fetcher interface {
	FetchJSON(ctx context.Context, path string) (gjson.Result, error)
	Mutate(ctx context.Context, method, path string) (gjson.Result, error)
}

// HTTPError is a non-success response. Body is the raw response text.
type HTTPError struct {
	Status     int
	StatusText string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.StatusText, e.Body)
}

// AsHTTPError finds an HTTPError in err's chain.
func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}

// Client talks JSON to the portal backend. It never retries: a failed call
// is reported once and the operator decides whether to try again.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var customHTTPClient *http.Client

// SetHTTPClient sets a custom HTTP client to be used by all new Client instances
func SetHTTPClient(client *http.Client) {
	customHTTPClient = client
}

// NewClient creates a new portal API client
func NewClient(server *model.Server) *Client {
	var httpClient *http.Client

	if customHTTPClient != nil {
		httpClient = &http.Client{
			Transport:     customHTTPClient.Transport,
			CheckRedirect: customHTTPClient.CheckRedirect,
			Jar:           customHTTPClient.Jar,
			Timeout:       customHTTPClient.Timeout,
		}
	} else {
		transport := &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 5 * time.Second,
			IdleConnTimeout:     30 * time.Second,
			MaxIdleConns:        20,
			// per-app fan-out hits one host many times
			MaxIdleConnsPerHost: 10,
		}
		if server.Insecure {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
		// No client timeout; requests are bounded by context deadlines.
		httpClient = &http.Client{Transport: transport}
	}

	return &Client{
		baseURL:    strings.TrimRight(server.BaseURL, "/"),
		token:      server.Token,
		httpClient: httpClient,
	}
}

// FetchJSON performs a GET and returns the parsed body.
func (c *Client) FetchJSON(ctx context.Context, path string) (gjson.Result, error) {
	ctx, cancel := appcontext.WithAPITimeout(ctx)
	defer cancel()
	return c.request(ctx, http.MethodGet, path, appcontext.OpAPI)
}

// Mutate performs a body-less write (DELETE) with the same failure contract
// as FetchJSON. Callers refresh dependent data themselves afterwards.
func (c *Client) Mutate(ctx context.Context, method, path string) (gjson.Result, error) {
	ctx, cancel := appcontext.WithMutationTimeout(ctx)
	defer cancel()
	return c.request(ctx, method, path, appcontext.OpMutation)
}

func (c *Client) request(ctx context.Context, method, path string, op appcontext.OperationType) (gjson.Result, error) {
	url := c.baseURL + path
	log := cblog.With("component", "api", "op", "http")

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return gjson.Result{}, apperrors.Wrap(err, apperrors.ErrorNetwork, "REQUEST_CREATE_FAILED",
			"Failed to create HTTP request").
			WithContext("method", method).
			WithContext("url", url).
			WithUserAction("Check the server URL and try again")
	}

	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if timeoutErr := appcontext.HandleTimeout(ctx, op); timeoutErr != nil {
			return gjson.Result{}, timeoutErr.
				WithCause(err).
				WithContext("method", method).
				WithContext("url", url)
		}

		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return gjson.Result{}, apperrors.TimeoutError("NETWORK_TIMEOUT",
				"Network connection timed out").
				WithCause(err).
				WithContext("method", method).
				WithContext("url", url)
		}

		return gjson.Result{}, apperrors.Wrap(err, apperrors.ErrorNetwork, "HTTP_REQUEST_FAILED",
			"HTTP request failed").
			WithDetails(err.Error()).
			WithContext("method", method).
			WithContext("url", url).
			AsRecoverable().
			WithUserAction("Check your network connection and the portal server status")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, apperrors.Wrap(err, apperrors.ErrorNetwork, "RESPONSE_READ_FAILED",
			"Failed to read response body").
			WithContext("method", method).
			WithContext("url", url)
	}

	log.Debug("request done", "method", method, "path", path, "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error("http error",
			"method", method,
			"url", url,
			"status", resp.StatusCode,
			"len", len(respBody),
		)
		body := string(respBody)
		const maxLen = 2048
		if len(body) > maxLen {
			body = body[:maxLen] + "…"
		}
		cblog.With("component", "api").Debug("response body", "body", body)

		return gjson.Result{}, createAPIError(resp, string(respBody), url).
			WithContext("method", method).
			WithContext("path", path)
	}

	if len(strings.TrimSpace(string(respBody))) == 0 {
		return gjson.Result{}, nil
	}
	if !gjson.ValidBytes(respBody) {
		return gjson.Result{}, apperrors.New(apperrors.ErrorAPI, "INVALID_JSON",
			"Server returned a response that is not JSON").
			WithContext("method", method).
			WithContext("path", path)
	}
	return gjson.ParseBytes(respBody), nil
}

// statusText returns the reason phrase the server sent, falling back to the
// standard text for the code.
func statusText(resp *http.Response) string {
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprint(resp.StatusCode))); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// createAPIError classifies a non-success response. The user-visible message
// is always "<status> <statusText>: <body>".
func createAPIError(resp *http.Response, responseBody, url string) *apperrors.PortalError {
	httpErr := &HTTPError{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Body:       responseBody,
	}

	var category apperrors.ErrorCategory
	var code string
	var userAction string
	var recoverable bool

	switch statusCode := resp.StatusCode; {
	case statusCode == 401:
		category = apperrors.ErrorAuth
		code = "UNAUTHORIZED"
		userAction = "Check the portal token and sign in again"
	case statusCode == 403:
		category = apperrors.ErrorPermission
		code = "FORBIDDEN"
		userAction = "Check your portal permissions"
	case statusCode == 404:
		category = apperrors.ErrorAPI
		code = "NOT_FOUND"
		userAction = "Verify the resource exists; it may have been removed"
	case statusCode == 409:
		category = apperrors.ErrorValidation
		code = "CONFLICT"
		userAction = "Reload and adjust your request"
		recoverable = true
	case statusCode == 429:
		category = apperrors.ErrorAPI
		code = "RATE_LIMITED"
		userAction = "Wait a moment and try again"
		recoverable = true
	case statusCode == 502 || statusCode == 503 || statusCode == 504:
		category = apperrors.ErrorUnavailable
		code = "SERVER_UNAVAILABLE"
		userAction = "The portal backend is unavailable; try again shortly"
		recoverable = true
	case statusCode >= 500:
		category = apperrors.ErrorAPI
		code = "SERVER_ERROR"
		userAction = "Check the portal server status and try again"
		recoverable = true
	default:
		category = apperrors.ErrorAPI
		code = "API_ERROR"
		userAction = "Check the request and try again"
		recoverable = true
	}

	err := apperrors.New(category, code, httpErr.Error()).
		WithCause(httpErr).
		WithContext("statusCode", resp.StatusCode).
		WithContext("url", url).
		WithUserAction(userAction)
	if recoverable {
		err.AsRecoverable()
	}
	return err
}
