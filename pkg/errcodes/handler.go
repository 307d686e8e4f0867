package errcodes

import (
	"fmt"
	"net/http"

	"github.com/iancoleman/strcase"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/errutils"
)

// Payload is the JSON body written for every failed request.
type Payload struct {
	Error PayloadError `json:"error"`
}

type PayloadError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Handle is an Echo error handler. Echo and errcodes errors keep their status
// codes; anything else is logged and reported as an internal server error.
func (h *Handler) Handle(err error, c echo.Context) {
	log := logger.FromEchoContext(c)

	if errutils.IsIgnorableErr(err) {
		log.Err(err).Warn("broken pipe")
		return
	}

	payload := h.generatePayload(err)
	if payload.Error.StatusCode == http.StatusInternalServerError {
		log.Err(err).Error("server error")
	}

	if c.Response().Committed {
		return
	}

	if err := c.JSON(payload.Error.StatusCode, payload); err != nil {
		log.Err(errors.WithStack(err)).Error("error handler json error")
	}
}

func (h *Handler) generatePayload(err error) Payload {
	pe := PayloadError{StatusCode: http.StatusInternalServerError}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		pe.StatusCode = he.Code
		pe.Message = fmt.Sprint(he.Message)
		pe.Code = strcase.ToSnake(pe.Message)
	}

	var e *Error
	if errors.As(err, &e) {
		pe.StatusCode = e.HTTPCode
		pe.Code = e.Code
		pe.Message = e.Message
	}

	if pe.StatusCode == http.StatusInternalServerError && pe.Message == "" {
		pe.Code = "internal_server_error"
		pe.Message = "Internal Server Error"
	}

	return Payload{Error: pe}
}
