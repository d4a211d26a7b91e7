// Package handler defines the HTTP handlers of the register API.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/pos-quick-sale/internal/backend"
	"github.com/iliyamo/pos-quick-sale/internal/catalog"
	"github.com/iliyamo/pos-quick-sale/internal/gateway"
	"github.com/iliyamo/pos-quick-sale/internal/register"
	"github.com/iliyamo/pos-quick-sale/internal/tender"
	"github.com/iliyamo/pos-quick-sale/internal/ticket"
)

// POSHandler bundles the engine components behind the register API.
// All methods assume JWT authentication and role validation already
// ran in middleware and that the tenant/register/operator identity is
// available on the context.
type POSHandler struct {
	Catalog  *catalog.Store
	Lookup   catalog.RemoteLookup
	Registry *register.Registry
	Gateway  *gateway.Gateway
	Logger   *zap.Logger
}

// NewPOSHandler constructs a POSHandler and panics when a required
// dependency is missing.
func NewPOSHandler(store *catalog.Store, lookup catalog.RemoteLookup, registry *register.Registry, gw *gateway.Gateway, logger *zap.Logger) *POSHandler {
	if store == nil || registry == nil || gw == nil {
		panic("nil dependency passed to NewPOSHandler")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &POSHandler{Catalog: store, Lookup: lookup, Registry: registry, Gateway: gw, Logger: logger}
}

// identity pulls the tenant, register and operator claims stored by
// the JWT middleware out of the context.
func identity(c echo.Context) (tenantID, registerID, operator string, err error) {
	tenantID, _ = c.Get("tenant_id").(string)
	registerID, _ = c.Get("register_id").(string)
	operator, _ = c.Get("operator").(string)
	if tenantID == "" || registerID == "" {
		return "", "", "", errors.New("missing identity in context")
	}
	return tenantID, registerID, operator, nil
}

// session resolves the caller's register session from its identity.
func (h *POSHandler) session(c echo.Context) (*register.Session, error) {
	tenantID, registerID, _, err := identity(c)
	if err != nil {
		return nil, err
	}
	return h.Registry.Get(tenantID, registerID), nil
}

// engineError translates engine errors into HTTP responses.  Every
// error here is recoverable: the ticket stays usable and the operator
// is told what to correct.
func (h *POSHandler) engineError(c echo.Context, err error) error {
	var stockErr *ticket.StockError
	if errors.As(err, &stockErr) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     "insufficient_stock",
			"item_id":   stockErr.ItemID,
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		})
	}
	var tenderErr *tender.ValidationError
	if errors.As(err, &tenderErr) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": tenderErr.Reason})
	}
	switch {
	case errors.Is(err, ticket.ErrInvalidQuantity), errors.Is(err, gateway.ErrEmptyTicket):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, ticket.ErrLineNotFound), errors.Is(err, catalog.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, register.ErrSubmissionInFlight):
		return c.JSON(http.StatusConflict, echo.Map{"error": "submission in flight"})
	}
	var backendErr *backend.Error
	if errors.As(err, &backendErr) {
		return c.JSON(http.StatusBadGateway, echo.Map{
			"error":     backendErr.Reason,
			"retryable": backendErr.Retryable,
		})
	}
	h.Logger.Error("unhandled engine error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
