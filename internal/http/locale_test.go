package http

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/condo-portal/internal/application"
	"github.com/example/condo-portal/internal/booking"
)

func TestTranslate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Faça login para continuar.", translate(localePortuguese, msgAuthRequired))
	assert.Equal(t, "Sign in to continue.", translate(localeEnglish, msgAuthRequired))
	assert.Equal(t, "Your session is still loading. Please retry shortly.", translate(localeEnglish, msgSessionLoading))
}

func TestLocalizeFieldMessage(t *testing.T) {
	t.Parallel()

	hours := application.FieldError{
		Field:   booking.FieldStartTime,
		Code:    string(booking.CodeOutsideHours),
		Arg:     "06:00-22:00",
		Message: booking.DefaultMessage(booking.CodeOutsideHours, "06:00-22:00"),
	}
	assert.Equal(t, "Horário fora do funcionamento (06:00-22:00)", localizeFieldMessage(localePortuguese, hours))
	assert.Equal(t, "Time outside opening hours (06:00-22:00)", localizeFieldMessage(localeEnglish, hours))

	short := application.FieldError{Field: "password", Code: "too_short", Message: "Senha curta"}
	assert.Equal(t, "Must be at least 6 characters", localizeFieldMessage(localeEnglish, short))

	unknown := application.FieldError{Field: "apartment", Code: "apartment_taken", Message: "Apartamento ocupado"}
	assert.Equal(t, "Apartamento ocupado", localizeFieldMessage(localeEnglish, unknown))
}
