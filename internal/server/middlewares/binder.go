package middlewares

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bluewiki/internal/bwerror"
)

type binder struct {
	echo.DefaultBinder
	methodsWithBody map[string]bool
}

// NewBinder returns a wrapp of the default binder implementation with extra checks.
// Bound values implementing validation.Validatable are validated.
func NewBinder() echo.Binder {
	return &binder{
		methodsWithBody: map[string]bool{
			http.MethodPost:  true,
			http.MethodPatch: true,
			http.MethodPut:   true,
		},
	}
}

// Bind implements the echo.Bind interface.
func (b *binder) Bind(i interface{}, c echo.Context) (err error) {
	if c.Request().ContentLength == 0 && b.methodsWithBody[c.Request().Method] {
		return bwerror.NewWithTagCode(http.StatusBadRequest, "empty-body", "Request body can't be empty")
	}

	if err = b.DefaultBinder.Bind(i, c); err != nil {
		return err
	}

	if v, ok := i.(validation.Validatable); ok {
		if err = v.Validate(); err != nil {
			return bwerror.NewWithTagCode(http.StatusUnprocessableEntity, "invalid-params", err.Error())
		}
	}
	return nil
}
