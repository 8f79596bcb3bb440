package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bluewiki/internal/bwerror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// HTTPErrorHandler returns a middleware that formats rendered errors.
// Errors without an explicit status are logged and hidden behind an error id.
func HTTPErrorHandler(logger logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var herr *echo.HTTPError
		var bwerr *bwerror.BWError

		switch {
		case errors.As(err, &bwerr) && bwerr.HTTPCode != 0:
			if bwerr.HTTPCode >= 500 {
				logger.WithError(err).Warnf("Error [%s]: %s", bwerr.Tag(), bwerr.Error())
			}
			_ = c.JSON(bwerr.HTTPCode, bwerr)
		case errors.As(err, &herr):
			if herr.Code >= 500 {
				internal(logger, err, c)
				return
			}

			logger.WithError(herr.Internal).Debugf("Error [ECHO]: %v", herr.Message)
			_ = c.JSON(herr.Code, echo.Map{
				"error": echo.Map{
					"message": fmt.Sprint(herr.Message),
				},
			})
		default:
			internal(logger, err, c)
		}
	}
}

func internal(logger logrus.FieldLogger, err error, c echo.Context) {
	id := uuid.Must(uuid.NewV4()).String()
	logger.WithField("error_id", id).WithError(err).Error("unexpected error")

	_ = c.JSON(http.StatusInternalServerError, echo.Map{
		"error": echo.Map{
			"message": fmt.Sprintf("Unexpected error (id: %s)", id),
		},
	})
}
