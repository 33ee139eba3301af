package webserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/janawaaz/janawaaz/src/apperr"
)

var codeStatus = map[apperr.Code]int{
	apperr.CodeInvalidArgument:    http.StatusBadRequest,
	apperr.CodeQuotaExceeded:      http.StatusTooManyRequests,
	apperr.CodeUnauthenticated:    http.StatusUnauthorized,
	apperr.CodeNotApproved:        http.StatusForbidden,
	apperr.CodeRecipientBlocked:   http.StatusForbidden,
	apperr.CodeContentRejected:    http.StatusUnprocessableEntity,
	apperr.CodeNotFound:           http.StatusNotFound,
	apperr.CodeFailedPrecondition: http.StatusConflict,
	apperr.CodeUnavailable:        http.StatusServiceUnavailable,
}

// respondError renders a typed rejection with its human-readable reason.
// Untyped errors are infrastructure failures and stay opaque.
func respondError(c *gin.Context, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		log.Printf("http: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "internal error"})
		return
	}
	status, ok := codeStatus[ae.Code]
	if !ok {
		status = http.StatusInternalServerError
	}
	if ae.Code == apperr.CodeUnavailable && ae.Cause != nil {
		log.Printf("http: %s %s: %v", c.Request.Method, c.Request.URL.Path, ae.Cause)
	}
	c.JSON(status, gin.H{"err": ae.Message, "code": ae.Code})
}
