// Package response implements the {code, message, data} envelope every
// endpoint answers with. Business failures travel as a code inside the body,
// not as an HTTP status.
package response

import (
	"errors"
	"net/http"

	"votebox/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Base struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func Success(data interface{}) Base {
	return Base{Code: http.StatusOK, Message: "OK", Data: data}
}

func Error(code int, message string) Base {
	return Base{Code: code, Message: message}
}

// OK writes a success envelope with HTTP 200.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Success(data))
}

// Created writes a success envelope with HTTP 201. Registration is the one
// endpoint that reports success through the HTTP status as well.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Success(data))
}

// Fail translates a typed error into the envelope. Authentication failures
// carry code 401, everything else code 500, mirroring the upstream API.
// Unexpected kinds are logged before they leave the process.
func Fail(c *gin.Context, err error) {
	if apperr.Unexpected(err) {
		logrus.WithError(err).WithFields(logrus.Fields{
			"path": c.Request.URL.Path,
			"kind": apperr.KindOf(err).String(),
		}).Error("request failed unexpectedly")
	}

	code := http.StatusInternalServerError
	if apperr.KindOf(err) == apperr.KindUnauthenticated {
		code = http.StatusUnauthorized
	}
	c.JSON(http.StatusOK, Error(code, message(err)))
}

func message(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error"
}
