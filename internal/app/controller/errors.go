package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ikkim/foodgram-backend/internal/app/service"
	apperrors "github.com/ikkim/foodgram-backend/internal/errors"
	"github.com/ikkim/foodgram-backend/internal/middleware"
)

// Relation conflict messages, answered as 400 {"errors": msg}.
var relationMessages = map[error]string{
	service.ErrAlreadyFavorited:  "Рецепт уже в избранном",
	service.ErrNotFavorited:      "Рецепта не было в избранном",
	service.ErrAlreadyInCart:     "Рецепт уже в списке покупок",
	service.ErrNotInCart:         "Рецепта не было в списке покупок",
	service.ErrSelfSubscription:  "Нельзя подписаться на себя",
	service.ErrAlreadySubscribed: "Уже подписаны",
	service.ErrNotSubscribed:     "Не были подписаны",
}

var notFoundCodes = map[error]string{
	service.ErrRecipeNotFound:     apperrors.RecipeNotFound,
	service.ErrTagNotFound:        apperrors.TagNotFound,
	service.ErrIngredientNotFound: apperrors.IngredientNotFound,
	service.ErrUserNotFound:       apperrors.UserNotFound,
	service.ErrShortLinkNotFound:  apperrors.ShortLinkNotFound,
}

// respondError maps a service error onto the API error taxonomy.
func respondError(c *gin.Context, err error, operation string) {
	log := middleware.GetLoggerFromContext(c)

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		log.Warn("Request failed validation", map[string]interface{}{
			"operation": operation,
			"fields":    verr.Error(),
		})
		apperrors.RespondWithValidationError(c, apperrors.FieldErrors(verr.Fields))
		return
	}

	for target, msg := range relationMessages {
		if errors.Is(err, target) {
			log.Warn("Relation change rejected", map[string]interface{}{
				"operation": operation,
				"reason":    target.Error(),
			})
			apperrors.RelationError(c, msg)
			return
		}
	}

	for target, code := range notFoundCodes {
		if errors.Is(err, target) {
			apperrors.NotFound(c, code, "")
			return
		}
	}

	switch {
	case errors.Is(err, service.ErrNotRecipeAuthor):
		apperrors.Forbidden(c, "")
	case errors.Is(err, service.ErrInvalidCredentials):
		apperrors.RespondWithValidationError(c, apperrors.FieldError("non_field_errors", service.MsgInvalidCredentials))
	default:
		log.Error("Request failed", err, map[string]interface{}{
			"operation": operation,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, operation)
	}
}

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var registerValidatorsOnce sync.Once

// registerValidators makes validator report JSON field names and adds the
// username rule. Safe to call repeatedly.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
	})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return service.MsgRequired
	case "email":
		return "Введите правильный адрес электронной почты."
	case "username":
		return "Введите правильное имя пользователя. Оно может содержать только буквы, цифры и знаки @/./+/-/_."
	case "max":
		if n, err := strconv.Atoi(fe.Param()); err == nil {
			return service.MsgMaxLength(n)
		}
	}
	return "Некорректное значение."
}

// bindJSON binds the request body into req. On failure it writes the 400
// response and returns false.
func bindJSON(c *gin.Context, req interface{}) bool {
	registerValidators()

	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	log := middleware.GetLoggerFromContext(c)
	log.Warn("Invalid request body", map[string]interface{}{
		"error": err.Error(),
	})

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		apperrors.RespondWithDetail(c, http.StatusRequestEntityTooLarge, apperrors.UploadFileTooLarge, "Тело запроса слишком большое.")
		return false
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := apperrors.FieldErrors{}
		for _, fe := range verrs {
			msgs, _ := fields[fe.Field()].([]string)
			fields[fe.Field()] = append(msgs, validationMessage(fe))
		}
		apperrors.RespondWithValidationError(c, fields)
		return false
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		apperrors.RespondWithValidationError(c, apperrors.FieldError(typeErr.Field, "Некорректный тип."))
		return false
	}

	apperrors.RespondWithDetail(c, http.StatusBadRequest, apperrors.ValidationInvalidFormat, "Некорректный JSON в теле запроса.")
	return false
}

// idParam parses a positive integer path parameter. Anything else is a 404
// since the route would not match.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apperrors.NotFound(c, apperrors.ResourceNotFound, "")
		return 0, false
	}
	return uint(id), true
}

// currentUserID returns the authenticated user id or 0 for guests.
func currentUserID(c *gin.Context) uint {
	userID, _ := middleware.GetUserID(c)
	return userID
}
