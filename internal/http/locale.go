package http

import (
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/example/condo-portal/internal/application"
	"github.com/example/condo-portal/internal/booking"
)

type locale int

const (
	localePortuguese locale = iota
	localeEnglish
)

// supportedTags is ordered to line up with the locale constants; the first
// entry is the fallback.
var supportedTags = []language.Tag{language.BrazilianPortuguese, language.English}

var languageMatcher = language.NewMatcher(supportedTags)

func (l locale) Tag() language.Tag {
	if int(l) < len(supportedTags) {
		return supportedTags[l]
	}
	return supportedTags[0]
}

func resolveLocale(r *http.Request) locale {
	if r == nil {
		return localePortuguese
	}
	accept := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if accept == "" {
		return localePortuguese
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return localePortuguese
	}
	_, index, confidence := languageMatcher.Match(tags...)
	if confidence == language.No {
		return localePortuguese
	}
	return locale(index)
}

// Localize selects the response language from Accept-Language.
func Localize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loc := resolveLocale(r)
		w.Header().Set("Content-Language", loc.Tag().String())
		next.ServeHTTP(w, r.WithContext(contextWithLocale(r.Context(), loc)))
	})
}

type messageKey string

const (
	msgBadRequest         messageKey = "error.bad_request"
	msgAuthRequired       messageKey = "error.auth_required"
	msgForbidden          messageKey = "error.forbidden"
	msgNotFound           messageKey = "error.not_found"
	msgConflict           messageKey = "error.conflict"
	msgValidation         messageKey = "error.validation"
	msgInternal           messageKey = "error.internal"
	msgInvalidCredentials messageKey = "auth.invalid_credentials"
	msgAccountDisabled    messageKey = "auth.account_disabled"
	msgAlreadyRegistered  messageKey = "auth.already_registered"
	msgSessionLoading     messageKey = "auth.session_loading"
	msgSessionExpired     messageKey = "auth.session_expired"
	msgInvalidTransition  messageKey = "reservation.invalid_transition"
	msgRegistered         messageKey = "auth.registered"
)

// fieldKeyPrefix namespaces validation codes in the catalog.
const fieldKeyPrefix = "field."

var responseMessages = map[language.Tag]map[string]string{
	language.BrazilianPortuguese: {
		string(msgBadRequest):         "Requisição inválida.",
		string(msgAuthRequired):       "Faça login para continuar.",
		string(msgForbidden):          "Você não tem permissão para acessar este recurso.",
		string(msgNotFound):           "Recurso não encontrado.",
		string(msgConflict):           "O recurso já existe.",
		string(msgValidation):         "Verifique os campos destacados.",
		string(msgInternal):           "Ocorreu um erro inesperado. Tente novamente.",
		string(msgInvalidCredentials): "E-mail ou senha incorretos.",
		string(msgAccountDisabled):    "Sua conta está desativada. Procure a administração.",
		string(msgAlreadyRegistered):  "Este e-mail já está cadastrado.",
		string(msgSessionLoading):     "Sua sessão ainda está sendo carregada. Tente novamente em instantes.",
		string(msgSessionExpired):     "Sua sessão expirou. Faça login novamente.",
		string(msgInvalidTransition):  "A reserva não pode mudar para este status.",
		string(msgRegistered):         "Cadastro realizado. Faça login para continuar.",
	},
	language.English: {
		string(msgBadRequest):         "Malformed request.",
		string(msgAuthRequired):       "Sign in to continue.",
		string(msgForbidden):          "You do not have permission to access this resource.",
		string(msgNotFound):           "Resource not found.",
		string(msgConflict):           "The resource already exists.",
		string(msgValidation):         "Please review the highlighted fields.",
		string(msgInternal):           "Something went wrong. Please try again.",
		string(msgInvalidCredentials): "Incorrect email or password.",
		string(msgAccountDisabled):    "Your account is disabled. Contact the building management.",
		string(msgAlreadyRegistered):  "This email is already registered.",
		string(msgSessionLoading):     "Your session is still loading. Please retry shortly.",
		string(msgSessionExpired):     "Your session has expired. Please sign in again.",
		string(msgInvalidTransition):  "The reservation cannot move to this status.",
		string(msgRegistered):         "Account created. Sign in to continue.",

		fieldKeyPrefix + string(booking.CodeAreaRequired):    "Select an area",
		fieldKeyPrefix + string(booking.CodeAreaUnknown):     "Area not found",
		fieldKeyPrefix + string(booking.CodeAreaUnavailable): "Area is not available for reservations",
		fieldKeyPrefix + string(booking.CodeDateRequired):    "Select a date",
		fieldKeyPrefix + string(booking.CodeDateInvalid):     "Invalid date",
		fieldKeyPrefix + string(booking.CodeDatePast):        "The date must be in the future",
		fieldKeyPrefix + string(booking.CodeStartRequired):   "Select a start time",
		fieldKeyPrefix + string(booking.CodeEndRequired):     "Select an end time",
		fieldKeyPrefix + string(booking.CodeTimeInvalid):     "Invalid time",
		fieldKeyPrefix + string(booking.CodeEndBeforeStart):  "End time must be after the start time",
		fieldKeyPrefix + string(booking.CodeOutsideHours):    "Time outside opening hours (%s)",
		fieldKeyPrefix + string(booking.CodeGuestsMin):       "At least 1 guest",
		fieldKeyPrefix + string(booking.CodeGuestsMax):       "At most %s guests",
		fieldKeyPrefix + string(booking.CodePurposeRequired): "Describe the purpose of the reservation",
		fieldKeyPrefix + string(booking.CodeTermsRequired):   "You must accept the terms of use",
		fieldKeyPrefix + string(booking.CodeExtraUnknown):    "Invalid extra item",
		fieldKeyPrefix + string(booking.CodePaymentInvalid):  "Invalid payment method",
		fieldKeyPrefix + string(booking.CodeSlotTaken):       "Time slot already reserved for this area",
		fieldKeyPrefix + "required":                          "This field is required",
		fieldKeyPrefix + "invalid":                           "Invalid value",
		fieldKeyPrefix + "not_allowed":                       "This role cannot be chosen at sign-up",
		fieldKeyPrefix + "before_open":                       "Closing time must be after opening time",
		fieldKeyPrefix + "too_short":                         "Must be at least %d characters",
	},
}

// fieldMessageArgs lists the validation codes whose wording interpolates a
// value. Every other code is printed without arguments.
var fieldMessageArgs = map[string]func(application.FieldError) []any{
	string(booking.CodeOutsideHours): func(f application.FieldError) []any { return []any{f.Arg} },
	string(booking.CodeGuestsMax):    func(f application.FieldError) []any { return []any{f.Arg} },
	"too_short":                      func(application.FieldError) []any { return []any{application.MinPasswordLength} },
}

var messageCatalog = mustBuildCatalog()

func mustBuildCatalog() *catalog.Builder {
	builder := catalog.NewBuilder(catalog.Fallback(supportedTags[0]))
	for tag, entries := range responseMessages {
		for key, text := range entries {
			if err := builder.SetString(tag, key, text); err != nil {
				panic(fmt.Sprintf("register message %s/%s: %v", tag, key, err))
			}
		}
	}
	return builder
}

func (l locale) printer() *message.Printer {
	return message.NewPrinter(l.Tag(), message.Catalog(messageCatalog))
}

func translate(loc locale, key messageKey) string {
	return loc.printer().Sprintf(string(key))
}

// localizeFieldMessage prints the wording of a validation code. The pt-BR
// text travels with the error itself, so only other locales consult the
// catalog, and codes it does not know keep that text.
func localizeFieldMessage(loc locale, field application.FieldError) string {
	if loc == localePortuguese {
		return field.Message
	}
	key := fieldKeyPrefix + field.Code
	var args []any
	if argsFor, ok := fieldMessageArgs[field.Code]; ok {
		args = argsFor(field)
	}
	text := loc.printer().Sprintf(key, args...)
	if text == key {
		return field.Message
	}
	return text
}
