package server

import (
	"github.com/go-playground/validator/v10"

	"example.com/debt-tracker/internal/handlers"
)

type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator создает валидатор go-playground с тегами запросов API.
func NewValidator() *CustomValidator {
	v := validator.New()
	for tag, fn := range handlers.Validations {
		// Теги регистрируются при старте, ошибка означает опечатку в имени.
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return &CustomValidator{validator: v}
}

// Validate проверяет структуру по тегам.
func (cv *CustomValidator) Validate(i any) error {
	return cv.validator.Struct(i)
}
