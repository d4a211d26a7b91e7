// Package backend is the REST client for the remote commerce backend:
// catalog snapshot fetches, exact-code item lookups and sale
// submission.  The backend owns the source of truth for stock; this
// client only moves its answers in and out of engine types.
package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"resty.dev/v3"

	"github.com/iliyamo/pos-quick-sale/internal/model"
)

// Error is a failed backend call.  Retryable mirrors the explicit
// flag the backend puts on structured error responses; transport
// failures (connection refused, timeouts) are always retryable since
// the request may never have arrived.
type Error struct {
	Reason    string
	Status    int
	Retryable bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend error (status %d, retryable %t): %s", e.Status, e.Retryable, e.Reason)
}

// errorBody is the structured error envelope the backend returns on
// non-2xx sale submissions and lookups.
type errorBody struct {
	Message   string `json:"error"`
	Retryable bool   `json:"retryable"`
}

// confirmation is the success envelope of a sale submission.
type confirmation struct {
	ConfirmationID string `json:"confirmation_id"`
}

// Client wraps a resty client pointed at the backend base URL.  All
// calls are tenant-scoped and JSON in both directions.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// New constructs a Client for the given base URL.  The timeout bounds
// every call including sale submission; there is deliberately no
// client-side cancellation beyond it.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: c, logger: logger}
}

// Close releases the underlying transport resources.
func (c *Client) Close() error { return c.http.Close() }

// FetchCatalog retrieves the tenant's full catalog snapshot.  The
// same endpoint also serves the post-commit stock refresh.
func (c *Client) FetchCatalog(ctx context.Context, tenant string) ([]model.CatalogItem, error) {
	var items []model.CatalogItem
	var apiErr errorBody
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&items).
		SetError(&apiErr).
		Get("/tenants/" + tenant + "/catalog")
	if err != nil {
		return nil, &Error{Reason: err.Error(), Retryable: true}
	}
	if res.IsError() {
		return nil, c.asError(res.StatusCode(), apiErr)
	}
	return items, nil
}

// LookupByScanCode asks the backend for items whose scan code equals
// code exactly.  Part of the resolver's remote fallback path.
func (c *Client) LookupByScanCode(ctx context.Context, tenant, code string) ([]model.CatalogItem, error) {
	return c.lookup(ctx, tenant, "scan_code", code)
}

// LookupByCustomCode asks the backend for items whose custom code
// equals code exactly.
func (c *Client) LookupByCustomCode(ctx context.Context, tenant, code string) ([]model.CatalogItem, error) {
	return c.lookup(ctx, tenant, "custom_code", code)
}

func (c *Client) lookup(ctx context.Context, tenant, param, code string) ([]model.CatalogItem, error) {
	var items []model.CatalogItem
	var apiErr errorBody
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam(param, code).
		SetResult(&items).
		SetError(&apiErr).
		Get("/tenants/" + tenant + "/items")
	if err != nil {
		return nil, &Error{Reason: err.Error(), Retryable: true}
	}
	if res.IsError() {
		return nil, c.asError(res.StatusCode(), apiErr)
	}
	return items, nil
}

// SubmitSale posts the finalized sale snapshot and returns the
// backend confirmation id.  A structured non-2xx response becomes an
// *Error carrying the backend's retryable flag, so the gateway can
// tell a business rejection from a transient hiccup.
func (c *Client) SubmitSale(ctx context.Context, req model.SaleRequest) (string, error) {
	var ok confirmation
	var apiErr errorBody
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&ok).
		SetError(&apiErr).
		Post("/tenants/" + req.TenantID + "/sales")
	if err != nil {
		c.logger.Warn("sale submission transport failure",
			zap.String("reference_id", req.ReferenceID), zap.Error(err))
		return "", &Error{Reason: err.Error(), Retryable: true}
	}
	if res.IsError() {
		return "", c.asError(res.StatusCode(), apiErr)
	}
	if ok.ConfirmationID == "" {
		return "", &Error{Reason: "backend returned no confirmation id", Status: res.StatusCode(), Retryable: true}
	}
	return ok.ConfirmationID, nil
}

// asError converts a structured backend error into *Error.  A 5xx
// without an explicit flag is treated as retryable, a 4xx as not.
func (c *Client) asError(status int, body errorBody) *Error {
	reason := body.Message
	if reason == "" {
		reason = http.StatusText(status)
	}
	retryable := body.Retryable
	if body.Message == "" {
		retryable = status >= http.StatusInternalServerError
	}
	return &Error{Reason: reason, Status: status, Retryable: retryable}
}
