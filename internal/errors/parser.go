package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo describes an error in client terms.
type ErrorInfo struct {
	Code    string // see codes.go
	Message string // user-facing message
}

// IsDuplicateKey reports whether err is a unique-constraint violation.
// gorm translates it to ErrDuplicatedKey when TranslateError is enabled;
// raw driver messages are matched as a fallback.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "duplicate key") || strings.Contains(lower, "unique constraint")
}

// IsNotFound reports whether err is gorm's record-not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// ParseError converts a storage error into a code and a message that is
// safe to show to clients. context names the operation ("create recipe").
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Ошибка сервера. Попробуйте позже.",
		}
	}

	if IsNotFound(err) {
		return ErrorInfo{
			Code:    notFoundCode(context),
			Message: "Страница не найдена.",
		}
	}

	if IsDuplicateKey(err) {
		return parseDuplicateKeyError(err.Error())
	}

	errLower := strings.ToLower(err.Error())

	if strings.Contains(errLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "Связанный объект не существует.",
		}
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "Сервис временно недоступен. Попробуйте позже.",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "Ошибка сервера. Попробуйте позже.",
	}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "Пользователь с таким email уже существует.",
		}
	}
	if strings.Contains(errLower, "username") {
		return ErrorInfo{
			Code:    AuthUsernameExists,
			Message: "Пользователь с таким именем уже существует.",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "Такой объект уже существует.",
	}
}

func notFoundCode(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "recipe"):
		return RecipeNotFound
	case strings.Contains(contextLower, "ingredient"):
		return IngredientNotFound
	case strings.Contains(contextLower, "tag"):
		return TagNotFound
	case strings.Contains(contextLower, "user"), strings.Contains(contextLower, "author"):
		return UserNotFound
	case strings.Contains(contextLower, "link"):
		return ShortLinkNotFound
	}
	return ResourceNotFound
}

// ParseAndRespond parses err and writes it as a detail response.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, DetailResponse{
		Detail: errorInfo.Message,
		Code:   errorInfo.Code,
	})
}
