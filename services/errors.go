package services

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Ошибки предусловий операций журнала. Контроллеры сопоставляют их
// с HTTP статусами через errors.Is.
var (
	ErrInsufficientFunds   = errors.New("insufficient balance")
	ErrInsufficientTrading = errors.New("insufficient trading capital")
	ErrNotFound            = errors.New("not found")
	ErrAlreadyFollowing    = errors.New("already mirroring this strategist")
	ErrAlreadyProcessed    = errors.New("transaction already processed")
	ErrLastAdmin           = errors.New("cannot delete the only remaining admin")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
)

// ValidationError содержит сообщения о невалидных полях запроса
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// newValidationError создает ValidationError с одним сообщением
func newValidationError(message string) *ValidationError {
	return &ValidationError{Messages: []string{message}}
}

// formatValidationErrors преобразует ошибки validator в ValidationError
func formatValidationErrors(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return newValidationError(err.Error())
	}

	var messages []string
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages = append(messages, "field "+e.Field()+" is required")
		case "gt":
			messages = append(messages, "field "+e.Field()+" must be greater than "+e.Param())
		case "gte":
			messages = append(messages, "field "+e.Field()+" must be greater than or equal to "+e.Param())
		case "min":
			messages = append(messages, "field "+e.Field()+" must be at least "+e.Param()+" characters")
		case "max":
			messages = append(messages, "field "+e.Field()+" must be at most "+e.Param()+" characters")
		case "oneof":
			messages = append(messages, "field "+e.Field()+" must be one of: "+e.Param())
		case "email":
			messages = append(messages, "field "+e.Field()+" must be a valid email")
		default:
			messages = append(messages, "field "+e.Field()+" is invalid")
		}
	}
	return &ValidationError{Messages: messages}
}
