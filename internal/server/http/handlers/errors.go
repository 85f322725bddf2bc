package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/schoolpay/internal/domain/errors"
	pkgAuth "github.com/polkiloo/schoolpay/internal/pkg/auth"
	"github.com/polkiloo/schoolpay/internal/server/http/dto"
)

// respondError maps err onto a status code. Unclassified failures are
// reported with fallback so internals never reach the client.
func respondError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)

	status, message := http.StatusInternalServerError, fallback
	switch {
	case errors.Is(err, domainErrors.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, domainErrors.ErrInvalidSignature):
		status, message = http.StatusBadRequest, domainErrors.ErrInvalidSignature.Error()
	case errors.Is(err, domainErrors.ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	case errors.Is(err, domainErrors.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, domainErrors.ErrInvalidCredentials.Error()
	case errors.Is(err, pkgAuth.ErrInvalidToken):
		status, message = http.StatusUnauthorized, pkgAuth.ErrInvalidToken.Error()
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		status, message = http.StatusConflict, domainErrors.ErrAlreadyExists.Error()
	}
	respondMessage(c, status, message)
}

func respondMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Message: message})
}
