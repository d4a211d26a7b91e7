package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pos-quick-sale/internal/catalog"
)

// GetCatalog handles GET /v1/catalog.  It returns the tenant's
// current snapshot, fetching one when none is cached or the cached
// one has aged past the configured TTL.
func (h *POSHandler) GetCatalog(c echo.Context) error {
	tenantID, _, _, err := identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	snap, err := h.Catalog.Current(c.Request().Context(), tenantID)
	if err != nil {
		return h.engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":      snap.Items,
		"fetched_at": snap.FetchedAt,
	})
}

// RefreshCatalog handles POST /v1/catalog/refresh: an explicit
// wholesale re-fetch of the snapshot, regardless of age.
func (h *POSHandler) RefreshCatalog(c echo.Context) error {
	tenantID, _, _, err := identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	snap, err := h.Catalog.Refresh(c.Request().Context(), tenantID)
	if err != nil {
		return h.engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":      snap.Items,
		"fetched_at": snap.FetchedAt,
	})
}

// ResolveQuery handles GET /v1/catalog/resolve?q=...&fallback=true.
// It matches the query against the local snapshot (name, custom code
// and scan code substrings) and, with fallback enabled and zero local
// matches, performs the backend exact-code lookups.  The session's
// keyboard selection is reset to the new match list, since a changed
// query always clears the cursor.  An empty query returns an empty
// match set, not an error.
func (h *POSHandler) ResolveQuery(c echo.Context) error {
	tenantID, _, _, err := identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sess, err := h.session(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	query := c.QueryParam("q")
	snap, err := h.Catalog.Current(c.Request().Context(), tenantID)
	if err != nil {
		return h.engineError(c, err)
	}

	var matches catalog.MatchSet
	if c.QueryParam("fallback") == "true" && h.Lookup != nil {
		matches, err = catalog.ResolveRemote(c.Request().Context(), h.Lookup, tenantID, query, snap)
		if err != nil {
			sess.ResetSelection(nil)
			return h.engineError(c, err)
		}
	} else {
		matches = catalog.Resolve(query, snap)
	}

	sess.ResetSelection(matches)
	return c.JSON(http.StatusOK, echo.Map{
		"matches": matches,
		"unique":  matches.Unique(),
	})
}

// SelectionNext handles POST /v1/selection/next: it advances the
// keyboard cursor circularly over the last resolved match list.
func (h *POSHandler) SelectionNext(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	item, idx, ok := sess.SelectionNext()
	if !ok {
		return c.JSON(http.StatusOK, echo.Map{"index": idx})
	}
	return c.JSON(http.StatusOK, echo.Map{"index": idx, "item": item})
}

// SelectionPrev handles POST /v1/selection/prev, the circular
// backwards counterpart of SelectionNext.
func (h *POSHandler) SelectionPrev(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	item, idx, ok := sess.SelectionPrev()
	if !ok {
		return c.JSON(http.StatusOK, echo.Map{"index": idx})
	}
	return c.JSON(http.StatusOK, echo.Map{"index": idx, "item": item})
}

// DismissSelection handles DELETE /v1/selection: dismissing the match
// list resets the cursor to "none selected".
func (h *POSHandler) DismissSelection(c echo.Context) error {
	sess, err := h.session(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sess.ResetSelection(nil)
	return c.NoContent(http.StatusNoContent)
}
