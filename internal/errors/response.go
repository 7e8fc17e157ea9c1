package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DetailResponse is the body of 401/403/404/500 responses.
type DetailResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// RelationErrorResponse is the body of 400 responses for relation conflicts
// and removals of relations that do not exist.
type RelationErrorResponse struct {
	Errors string `json:"errors"`
}

// FieldErrors maps a request field to its messages. Values are []string for
// flat fields or []map[string][]string for per-item list fields.
type FieldErrors map[string]interface{}

// RespondWithDetail writes {"detail": message, "code": errorCode}.
func RespondWithDetail(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, DetailResponse{
		Detail: message,
		Code:   errorCode,
	})
}

// Frequently used shortcuts

func Unauthorized(c *gin.Context, errorCode string, message string) {
	if message == "" {
		message = "Учетные данные не были предоставлены."
	}
	if errorCode == "" {
		errorCode = AuthUnauthorized
	}
	RespondWithDetail(c, http.StatusUnauthorized, errorCode, message)
}

func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "У вас недостаточно прав для выполнения данного действия."
	}
	RespondWithDetail(c, http.StatusForbidden, AuthzForbidden, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	if message == "" {
		message = "Страница не найдена."
	}
	RespondWithDetail(c, http.StatusNotFound, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Ошибка сервера. Попробуйте позже."
	}
	RespondWithDetail(c, http.StatusInternalServerError, InternalServerError, message)
}

// RelationError answers 400 {"errors": message}. Used both for duplicate
// relations and for removing a relation that was never created.
func RelationError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, RelationErrorResponse{Errors: message})
}

// RespondWithValidationError answers 400 with the field map as the body.
func RespondWithValidationError(c *gin.Context, fields FieldErrors) {
	c.JSON(http.StatusBadRequest, fields)
}

// FieldError builds a single-field validation body.
func FieldError(field string, messages ...string) FieldErrors {
	return FieldErrors{field: messages}
}
