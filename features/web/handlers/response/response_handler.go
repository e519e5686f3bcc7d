package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Problem is the body of every non-2xx answer.
type Problem struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Domain  string `json:"domain,omitempty"`
}

// Error writes a problem body with the given status.
func Error(c echo.Context, code int, message string) error {
	return c.JSON(code, &Problem{Error: message})
}

// NotFound reports that nothing is known about the domain.
func NotFound(c echo.Context, message string, domain string) error {
	return c.JSON(http.StatusNotFound, &Problem{
		Error:   http.StatusText(http.StatusNotFound),
		Message: message,
		Domain:  domain,
	})
}

func BadRequest(c echo.Context, message string) error {
	return Error(c, http.StatusBadRequest, message)
}
