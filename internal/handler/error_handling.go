package handler

import (
	"errors"
	"net/http"

	"genstory-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse - стандартная структура ответа об ошибке.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Коды ошибок для клиента.
const (
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeInvalidStatus     = "INVALID_STATUS"
	ErrCodeFinalized         = "FINALIZED"
	ErrCodeInvalidCharacters = "INVALID_CHARACTER_IDS"
	ErrCodeCoverImageExists  = "COVER_IMAGE_EXISTS"
	ErrCodeGenerationFailed  = "GENERATION_FAILED"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeTokenInvalid      = "TOKEN_INVALID"
	ErrCodeTokenExpired      = "TOKEN_EXPIRED"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// handleServiceError мапит доменные ошибки на HTTP статусы.
// Единственное место маппинга: сервисы и репозитории возвращают сентинелы.
func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var errResp ErrorResponse

	switch {
	case errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		errResp = ErrorResponse{Code: ErrCodeNotFound, Message: "Resource not found"}
	case errors.Is(err, models.ErrInvalidStatus):
		statusCode = http.StatusBadRequest
		errResp = ErrorResponse{Code: ErrCodeInvalidStatus, Message: "Operation is not allowed in the current status"}
	case errors.Is(err, models.ErrFinalized):
		statusCode = http.StatusBadRequest
		errResp = ErrorResponse{Code: ErrCodeFinalized, Message: "Finalized entities cannot be modified"}
	case errors.Is(err, models.ErrInvalidCharacterIDs):
		statusCode = http.StatusBadRequest
		errResp = ErrorResponse{Code: ErrCodeInvalidCharacters, Message: err.Error()}
	case errors.Is(err, models.ErrCoverImageExists):
		statusCode = http.StatusConflict
		errResp = ErrorResponse{Code: ErrCodeCoverImageExists, Message: "Story already has a cover image"}
	case errors.Is(err, models.ErrGenerationFailed):
		statusCode = http.StatusInternalServerError
		errResp = ErrorResponse{Code: ErrCodeGenerationFailed, Message: "Generation failed, please try again"}
	case errors.Is(err, models.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		errResp = ErrorResponse{Code: ErrCodeBadRequest, Message: err.Error()}
	case errors.Is(err, models.ErrTokenExpired):
		statusCode = http.StatusUnauthorized
		errResp = ErrorResponse{Code: ErrCodeTokenExpired, Message: "Token has expired"}
	case errors.Is(err, models.ErrTokenInvalid), errors.Is(err, models.ErrTokenMalformed):
		statusCode = http.StatusUnauthorized
		errResp = ErrorResponse{Code: ErrCodeTokenInvalid, Message: "Token is invalid or malformed"}
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = ErrorResponse{Code: ErrCodeInternal, Message: "An unexpected internal error occurred"}
	}

	c.AbortWithStatusJSON(statusCode, errResp)
}
