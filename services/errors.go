package services

import (
	"fmt"
	"strings"
)

// ValidationCode представляет код ошибки валидации
type ValidationCode string

const (
	ValidationMissingRequiredField ValidationCode = "MISSING_REQUIRED_FIELD"
	ValidationInvalidEnumValue     ValidationCode = "INVALID_ENUM_VALUE"
	ValidationInvalidValue         ValidationCode = "INVALID_VALUE"
)

// FieldError описывает ошибку валидации одного поля
type FieldError struct {
	Code    ValidationCode `json:"code"`
	Field   string         `json:"field"`
	Message string         `json:"message"`
}

// ValidationError представляет структурированную ошибку валидации,
// возвращаемую веб-слою до сохранения записи
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		messages = append(messages, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return strings.Join(messages, "; ")
}

// Add добавляет ошибку поля
func (e *ValidationError) Add(code ValidationCode, field, message string) {
	e.Fields = append(e.Fields, FieldError{Code: code, Field: field, Message: message})
}

// HasErrors сообщает, накоплены ли ошибки
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// missingRequired создает ошибку об отсутствии обязательного поля
func missingRequired(field, message string) *ValidationError {
	err := &ValidationError{}
	err.Add(ValidationMissingRequiredField, field, message)
	return err
}

// invalidEnum создает ошибку о недопустимом значении перечисления
func invalidEnum(field, message string) *ValidationError {
	err := &ValidationError{}
	err.Add(ValidationInvalidEnumValue, field, message)
	return err
}

// invalidValue создает ошибку о недопустимом значении поля
func invalidValue(field, message string) *ValidationError {
	err := &ValidationError{}
	err.Add(ValidationInvalidValue, field, message)
	return err
}
