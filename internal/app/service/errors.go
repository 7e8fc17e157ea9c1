package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrTagNotFound        = errors.New("tag not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrShortLinkNotFound  = errors.New("short link not found")

	ErrNotRecipeAuthor = errors.New("only the author may change this recipe")

	ErrAlreadyFavorited  = errors.New("recipe already in favorites")
	ErrNotFavorited      = errors.New("recipe not in favorites")
	ErrAlreadyInCart     = errors.New("recipe already in shopping cart")
	ErrNotInCart         = errors.New("recipe not in shopping cart")
	ErrSelfSubscription  = errors.New("cannot subscribe to yourself")
	ErrAlreadySubscribed = errors.New("already subscribed")
	ErrNotSubscribed     = errors.New("not subscribed")

	ErrInvalidCredentials = errors.New("invalid email or password")
)

// User-facing validation messages.
const (
	MsgRequired           = "Обязательное поле."
	MsgBlank              = "Это поле не может быть пустым."
	MsgTagsNotUnique      = "Теги должны быть уникальны."
	MsgIngredientsUnique  = "Ингредиенты должны быть уникальны."
	MsgMinValueOne        = "Убедитесь, что это значение больше либо равно 1."
	MsgUnknownObject      = "Выбран несуществующий объект."
	MsgInvalidImage       = "Загрузите правильное изображение. Файл, который вы загрузили, поврежден или не является изображением."
	MsgUnsupportedImage   = "Недопустимый формат изображения. Разрешены JPEG, PNG, GIF и WebP."
	MsgWrongPassword      = "Неверный пароль."
	MsgEmailTaken         = "Пользователь с таким email уже существует."
	MsgUsernameTaken      = "Пользователь с таким именем пользователя уже существует."
	MsgPasswordTooShort   = "Введённый пароль слишком короткий. Он должен содержать как минимум 8 символов."
	MsgPasswordNumeric    = "Введённый пароль состоит только из цифр."
	MsgPasswordTooCommon  = "Введённый пароль слишком широко распространён."
	MsgInvalidCredentials = "Невозможно войти с предоставленными учетными данными."
)

// MsgUnknownTag is reported for the first tag id that does not exist.
func MsgUnknownTag(id uint) string {
	return fmt.Sprintf("Недопустимый первичный ключ \"%d\" - объект не существует.", id)
}

// MsgMaxLength is reported for strings longer than max runes.
func MsgMaxLength(max int) string {
	return fmt.Sprintf("Убедитесь, что это поле содержит не более %d символов.", max)
}

// MsgImageTooLarge is reported for uploads above the configured limit.
func MsgImageTooLarge(maxBytes int64) string {
	return fmt.Sprintf("Размер файла не должен превышать %d байт.", maxBytes)
}

// ItemErrors holds per-field messages for one element of a list field.
type ItemErrors map[string][]string

// ValidationError collects field errors of a request so they are reported together.
// Values are []string for plain fields and []ItemErrors for per-item list fields.
type ValidationError struct {
	Fields map[string]interface{}
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]interface{})}
}

// FieldValidationError is a shortcut for a single failing field.
func FieldValidationError(field string, messages ...string) *ValidationError {
	v := NewValidationError()
	for _, msg := range messages {
		v.Add(field, msg)
	}
	return v
}

// Add appends msg to field. It is a no-op for fields already holding item errors.
func (v *ValidationError) Add(field, msg string) {
	switch existing := v.Fields[field].(type) {
	case nil:
		v.Fields[field] = []string{msg}
	case []string:
		v.Fields[field] = append(existing, msg)
	}
}

// SetItems records per-item errors for a list field.
func (v *ValidationError) SetItems(field string, items []ItemErrors) {
	v.Fields[field] = items
}

func (v *ValidationError) Has(field string) bool {
	_, ok := v.Fields[field]
	return ok
}

func (v *ValidationError) HasErrors() bool {
	return len(v.Fields) > 0
}

func (v *ValidationError) Error() string {
	fields := make([]string, 0, len(v.Fields))
	for field := range v.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// OrNil returns v when it holds errors, otherwise nil.
func (v *ValidationError) OrNil() error {
	if v.HasErrors() {
		return v
	}
	return nil
}
