package problem

import (
	"errors"
	"fmt"
	"net/http"

	"crtsubs/features/web/handlers/response"

	"github.com/labstack/echo/v4"
)

// errorHandler answers every unhandled error with a JSON problem body.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := err.Error()

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		message = fmt.Sprint(httpErr.Message)
	}

	if code == http.StatusNotFound {
		message = http.StatusText(http.StatusNotFound)
	} else {
		c.Logger().Error(err)
	}

	if writeErr := response.Error(c, code, message); writeErr != nil {
		c.Logger().Error(writeErr)
	}
}

func MapRoutes(e *echo.Echo) {
	e.HTTPErrorHandler = errorHandler
}
