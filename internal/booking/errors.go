package booking

import (
	"fmt"
	"strings"
)

// Field names used in FieldErrors. They match the JSON names of the request.
const (
	FieldAreaID        = "area_id"
	FieldDate          = "date"
	FieldStartTime     = "start_time"
	FieldEndTime       = "end_time"
	FieldGuestCount    = "guest_count"
	FieldPurpose       = "purpose"
	FieldAcceptsTerms  = "accepts_terms"
	FieldExtraItems    = "extra_items"
	FieldPaymentMethod = "payment_method"
)

// Code identifies a validation failure independent of its wording.
type Code string

const (
	CodeAreaRequired    Code = "area_required"
	CodeAreaUnknown     Code = "area_unknown"
	CodeAreaUnavailable Code = "area_unavailable"
	CodeDateRequired    Code = "date_required"
	CodeDateInvalid     Code = "date_invalid"
	CodeDatePast        Code = "date_past"
	CodeStartRequired   Code = "start_required"
	CodeEndRequired     Code = "end_required"
	CodeTimeInvalid     Code = "time_invalid"
	CodeEndBeforeStart  Code = "end_before_start"
	CodeOutsideHours    Code = "outside_hours"
	CodeGuestsMin       Code = "guests_min"
	CodeGuestsMax       Code = "guests_max"
	CodePurposeRequired Code = "purpose_required"
	CodeTermsRequired   Code = "terms_required"
	CodeExtraUnknown    Code = "extra_unknown"
	CodePaymentInvalid  Code = "payment_method_invalid"
	CodeSlotTaken       Code = "slot_taken"
)

// FieldError is a single validation failure. Arg carries the value
// interpolated into the message (capacity, opening hours).
type FieldError struct {
	Field   string
	Code    Code
	Arg     string
	Message string
}

// FieldErrors is an ordered set of field failures holding at most one
// message per field. The first failure recorded for a field wins.
type FieldErrors struct {
	items []FieldError
}

// Add records a failure unless field already has one.
func (e *FieldErrors) Add(field string, code Code, arg string) {
	if e.Has(field) {
		return
	}
	e.items = append(e.items, FieldError{Field: field, Code: code, Arg: arg, Message: DefaultMessage(code, arg)})
}

func (e FieldErrors) Has(field string) bool {
	for _, item := range e.items {
		if item.Field == field {
			return true
		}
	}
	return false
}

// Get returns the failure recorded for field.
func (e FieldErrors) Get(field string) (FieldError, bool) {
	for _, item := range e.items {
		if item.Field == field {
			return item, true
		}
	}
	return FieldError{}, false
}

func (e FieldErrors) Len() int { return len(e.items) }

// Items returns a copy of the failures in recording order.
func (e FieldErrors) Items() []FieldError {
	if len(e.items) == 0 {
		return nil
	}
	out := make([]FieldError, len(e.items))
	copy(out, e.items)
	return out
}

// Fields returns the failing field names in recording order.
func (e FieldErrors) Fields() []string {
	fields := make([]string, len(e.items))
	for i, item := range e.items {
		fields[i] = item.Field
	}
	return fields
}

// Map returns field name to default message.
func (e FieldErrors) Map() map[string]string {
	out := make(map[string]string, len(e.items))
	for _, item := range e.items {
		out[item.Field] = item.Message
	}
	return out
}

func (e FieldErrors) Error() string {
	parts := make([]string, len(e.items))
	for i, item := range e.items {
		parts[i] = fmt.Sprintf("%s: %s", item.Field, item.Message)
	}
	return "booking: invalid request: " + strings.Join(parts, "; ")
}

// DefaultMessage returns the pt-BR text shown to residents for code.
func DefaultMessage(code Code, arg string) string {
	switch code {
	case CodeAreaRequired:
		return "Selecione uma área"
	case CodeAreaUnknown:
		return "Área não encontrada"
	case CodeAreaUnavailable:
		return "Área indisponível para reservas"
	case CodeDateRequired:
		return "Selecione uma data"
	case CodeDateInvalid:
		return "Data inválida"
	case CodeTimeInvalid:
		return "Horário inválido"
	case CodeDatePast:
		return "A data deve ser futura"
	case CodeStartRequired:
		return "Selecione o horário de início"
	case CodeEndRequired:
		return "Selecione o horário de término"
	case CodeEndBeforeStart:
		return "O horário de término deve ser posterior ao início"
	case CodeOutsideHours:
		return fmt.Sprintf("Horário fora do funcionamento (%s)", arg)
	case CodeGuestsMin:
		return "Mínimo de 1 pessoa"
	case CodeGuestsMax:
		return fmt.Sprintf("Máximo de %s pessoas", arg)
	case CodePurposeRequired:
		return "Descreva o propósito da reserva"
	case CodeTermsRequired:
		return "Você deve aceitar os termos de uso"
	case CodeExtraUnknown:
		return "Item adicional inválido"
	case CodePaymentInvalid:
		return "Forma de pagamento inválida"
	case CodeSlotTaken:
		return "Horário já reservado para esta área"
	}
	return string(code)
}
