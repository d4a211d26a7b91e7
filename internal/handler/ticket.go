package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/pos-quick-sale/internal/catalog"
	"github.com/iliyamo/pos-quick-sale/internal/model"
	"github.com/iliyamo/pos-quick-sale/internal/tender"
	"github.com/iliyamo/pos-quick-sale/internal/ticket"
)

// GetTicket handles GET /v1/ticket.  It returns the observable state
// the storefront renders: lines, totals, buyer fields and the current
// submission state.
func (h *POSHandler) GetTicket(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	t, state := sess.View()
	return c.JSON(http.StatusOK, echo.Map{
		"ticket": t,
		"state":  state,
	})
}

// AddItem handles POST /v1/ticket/items.  The body carries either an
// explicit item_id (interactive pick from a match list) or a query to
// resolve.  A resolved query must be unique to add; an ambiguous one
// comes back with the candidates so the client can disambiguate.
func (h *POSHandler) AddItem(c echo.Context) error {
	tenantID, _, _, err := identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sess, err := h.session(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var body struct {
		ItemID   string `json:"item_id"`
		Query    string `json:"query"`
		Quantity int    `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Quantity == 0 {
		body.Quantity = 1
	}

	snap, err := h.Catalog.Current(c.Request().Context(), tenantID)
	if err != nil {
		return h.engineError(c, err)
	}

	var item model.CatalogItem
	switch {
	case body.ItemID != "":
		var ok bool
		item, ok = snap.Item(body.ItemID)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not in catalog snapshot"})
		}
	case body.Query != "":
		matches := catalog.Resolve(body.Query, snap)
		if len(matches) == 0 {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no catalog item matches the query"})
		}
		if !matches.Unique() {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":   "ambiguous_query",
				"matches": matches,
			})
		}
		item = matches[0]
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "item_id or query is required"})
	}

	if err := sess.Mutate(func(t *model.Ticket) error {
		return ticket.AddItem(t, item, body.Quantity)
	}); err != nil {
		return h.engineError(c, err)
	}

	t, state := sess.View()
	return c.JSON(http.StatusOK, echo.Map{"ticket": t, "state": state})
}

// Scan handles POST /v1/ticket/scan, the barcode fast path: the code
// is resolved with the remote fallback enabled and, when it resolves
// uniquely, one unit goes straight onto the ticket.  An ambiguous
// code is returned for disambiguation instead, and an unknown one is
// a 404.
func (h *POSHandler) Scan(c echo.Context) error {
	tenantID, _, _, err := identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sess, err := h.session(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var body struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&body); err != nil || body.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
	}

	snap, err := h.Catalog.Current(c.Request().Context(), tenantID)
	if err != nil {
		return h.engineError(c, err)
	}
	matches, err := catalog.ResolveRemote(c.Request().Context(), h.Lookup, tenantID, body.Code, snap)
	if err != nil {
		return h.engineError(c, err)
	}
	if !matches.Unique() {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":   "ambiguous_query",
			"matches": matches,
		})
	}

	if err := sess.Mutate(func(t *model.Ticket) error {
		return ticket.AddItem(t, matches[0], 1)
	}); err != nil {
		return h.engineError(c, err)
	}

	t, state := sess.View()
	return c.JSON(http.StatusOK, echo.Map{"ticket": t, "state": state})
}

// SetQuantity handles PUT /v1/ticket/items/:id.  A quantity of zero
// or less removes the line, which is a success, not an error.
func (h *POSHandler) SetQuantity(c echo.Context) error {
	tenantID, _, _, err := identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sess, err := h.session(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemID := c.Param("id")

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	if body.Quantity <= 0 {
		if err := sess.Mutate(func(t *model.Ticket) error {
			ticket.RemoveItem(t, itemID)
			return nil
		}); err != nil {
			return h.engineError(c, err)
		}
		t, state := sess.View()
		return c.JSON(http.StatusOK, echo.Map{"ticket": t, "state": state})
	}

	// Resolve the item before taking the session lock; the snapshot
	// fetch may hit the backend.
	snap, err := h.Catalog.Current(c.Request().Context(), tenantID)
	if err != nil {
		return h.engineError(c, err)
	}
	item, ok := snap.Item(itemID)
	if !ok {
		return h.engineError(c, ticket.ErrLineNotFound)
	}

	if err := sess.Mutate(func(t *model.Ticket) error {
		return ticket.SetQuantity(t, item, body.Quantity)
	}); err != nil {
		return h.engineError(c, err)
	}

	t, state := sess.View()
	return c.JSON(http.StatusOK, echo.Map{"ticket": t, "state": state})
}

// RemoveItem handles DELETE /v1/ticket/items/:id.  Removal is
// idempotent; deleting an absent line succeeds.
func (h *POSHandler) RemoveItem(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemID := c.Param("id")
	if err := sess.Mutate(func(t *model.Ticket) error {
		ticket.RemoveItem(t, itemID)
		return nil
	}); err != nil {
		return h.engineError(c, err)
	}
	t, state := sess.View()
	return c.JSON(http.StatusOK, echo.Map{"ticket": t, "state": state})
}

// ClearTicket handles DELETE /v1/ticket, the explicit "clear sale"
// action.
func (h *POSHandler) ClearTicket(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := sess.Mutate(func(t *model.Ticket) error {
		ticket.Clear(t)
		return nil
	}); err != nil {
		return h.engineError(c, err)
	}
	t, state := sess.View()
	return c.JSON(http.StatusOK, echo.Map{"ticket": t, "state": state})
}

// SetBuyer handles PUT /v1/ticket/buyer.  Buyer details are optional;
// a sale submitted without them goes out under the walk-in identity.
func (h *POSHandler) SetBuyer(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body model.Buyer
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := sess.SetBuyer(body); err != nil {
		return h.engineError(c, err)
	}
	t, state := sess.View()
	return c.JSON(http.StatusOK, echo.Map{"ticket": t, "state": state})
}

// tenderBody is shared by the preview and submit endpoints.
type tenderBody struct {
	Method         model.TenderMethod `json:"method"`
	AmountTendered *decimal.Decimal   `json:"amount_tendered"`
	Buyer          model.Buyer        `json:"buyer"`
}

// EvaluateTender handles POST /v1/ticket/tender: the pure per-
// keystroke preview of sufficiency and change.  Nothing is stored.
func (h *POSHandler) EvaluateTender(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body tenderBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	t, _ := sess.View()
	result, err := tender.Evaluate(t.Total, body.Method, body.AmountTendered)
	if err != nil {
		return h.engineError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Submit handles POST /v1/ticket/submit.  The response status mirrors
// the outcome tag: 200 for Committed, 422 for a business Rejected,
// 502 for a TransientFailure that is safe to retry unchanged.
func (h *POSHandler) Submit(c echo.Context) error {
	_, _, operator, err := identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sess, err := h.session(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body tenderBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	outcome, err := h.Gateway.Submit(c.Request().Context(), sess, operator, body.Method, body.AmountTendered, body.Buyer)
	if err != nil {
		return h.engineError(c, err)
	}

	switch outcome.Kind {
	case model.OutcomeCommitted:
		return c.JSON(http.StatusOK, outcome)
	case model.OutcomeRejected:
		return c.JSON(http.StatusUnprocessableEntity, outcome)
	default:
		return c.JSON(http.StatusBadGateway, outcome)
	}
}
