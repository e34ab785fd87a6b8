package handlers

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"example.com/debt-tracker/internal/models"
)

var badgeCodePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Validations перечисляет пользовательские теги валидатора для запросов.
var Validations = map[string]validator.Func{
	"debt_type": func(fl validator.FieldLevel) bool {
		_, ok := models.ParseDebtType(fl.Field().String())
		return ok
	},
	"badge_code": func(fl validator.FieldLevel) bool {
		return badgeCodePattern.MatchString(fl.Field().String())
	},
}
