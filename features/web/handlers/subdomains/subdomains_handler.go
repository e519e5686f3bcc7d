package subdomains

import (
	"context"
	"net/http"

	"crtsubs/features/enumerator"
	"crtsubs/features/store"
	"crtsubs/features/web/handlers/response"

	"github.com/labstack/echo/v4"
)

// Lookuper resolves the subdomains of a single domain.
type Lookuper interface {
	Lookup(ctx context.Context, domain string) *enumerator.Result
}

type SubdomainsHandler struct {
	lookup Lookuper
	repo   store.SubdomainRepository
}

func NewSubdomainsHandler(lookup Lookuper, repo store.SubdomainRepository) *SubdomainsHandler {
	return &SubdomainsHandler{lookup: lookup, repo: repo}
}

// Lookup queries crt.sh for the domain in the query string. A failed lookup
// answers 502 with the same payload plus the error.
func (h *SubdomainsHandler) Lookup(c echo.Context) error {
	req := &LookupInput{}
	if err := c.Bind(req); err != nil {
		return response.BadRequest(c, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	result := h.lookup.Lookup(c.Request().Context(), req.Domain)
	payload := NewLookupPayload(result)

	if result.Failed() {
		return c.JSON(http.StatusBadGateway, payload)
	}
	return c.JSON(http.StatusOK, payload)
}

// Stored lists what watch mode has recorded for the domain.
func (h *SubdomainsHandler) Stored(c echo.Context) error {
	req := &LookupInput{}
	if err := c.Bind(req); err != nil {
		return response.BadRequest(c, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	subs, err := h.repo.GetSubdomains(c.Request().Context(), req.Domain)
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, err.Error())
	}

	if len(subs) == 0 {
		return response.NotFound(c, "no stored subdomains", req.Domain)
	}

	return c.JSON(http.StatusOK, &StoredPayload{
		Domain:     req.Domain,
		Count:      len(subs),
		Subdomains: subs,
	})
}
