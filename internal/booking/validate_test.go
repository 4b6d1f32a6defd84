package booking_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/condo-portal/internal/booking"
)

var today = booking.NewDate(2024, time.January, 15)

func churrasqueira() booking.CommonArea {
	return booking.CommonArea{
		ID:             "2",
		Name:           "Churrasqueira",
		Capacity:       20,
		HourlyRate:     decimal.RequireFromString("40.00"),
		AvailableHours: booking.Hours{Start: booking.NewTimeOfDay(6, 0), End: booking.NewTimeOfDay(22, 0)},
		Status:         booking.AreaActive,
	}
}

func catalog() booking.Catalog {
	areas := []booking.CommonArea{churrasqueira()}
	closed := churrasqueira()
	closed.ID = "9"
	closed.Name = "Piscina"
	closed.Status = booking.AreaMaintenance
	areas = append(areas, closed)
	return booking.NewCatalog(areas, booking.DefaultExtras())
}

func validRequest() booking.Request {
	date := today.AddDays(3)
	return booking.Request{
		AreaID:       "2",
		Date:         &date,
		StartTime:    booking.At(booking.NewTimeOfDay(12, 0)),
		EndTime:      booking.At(booking.NewTimeOfDay(16, 0)),
		GuestCount:   10,
		Purpose:      "Aniversário",
		AcceptsTerms: true,
	}
}

func TestValidateComputesPrice(t *testing.T) {
	t.Parallel()

	validated, errs := booking.Validate(validRequest(), catalog(), today)
	require.Zero(t, errs.Len(), errs.Map())
	assert.Equal(t, 4, validated.Hours)
	assert.True(t, decimal.RequireFromString("160.00").Equal(validated.TotalAmount), validated.TotalAmount.String())
	assert.Equal(t, booking.PaymentPix, validated.Request.PaymentMethod)

	req := validRequest()
	req.ExtraItemIDs = []string{"1"}
	validated, errs = booking.Validate(req, catalog(), today)
	require.Zero(t, errs.Len(), errs.Map())
	assert.True(t, decimal.RequireFromString("185.00").Equal(validated.TotalAmount), validated.TotalAmount.String())
	assert.True(t, decimal.RequireFromString("25.00").Equal(validated.ExtrasAmount))
	require.Len(t, validated.Extras, 1)
	assert.Equal(t, "Mesa adicional", validated.Extras[0].Name)
}

func TestValidateDateFloor(t *testing.T) {
	t.Parallel()

	req := validRequest()
	yesterday := today.AddDays(-1)
	req.Date = &yesterday
	_, errs := booking.Validate(req, catalog(), today)
	fieldErr, ok := errs.Get(booking.FieldDate)
	require.True(t, ok)
	assert.Equal(t, "A data deve ser futura", fieldErr.Message)

	sameDay := today
	req.Date = &sameDay
	_, errs = booking.Validate(req, catalog(), today)
	assert.False(t, errs.Has(booking.FieldDate))

	req.Date = nil
	_, errs = booking.Validate(req, catalog(), today)
	fieldErr, ok = errs.Get(booking.FieldDate)
	require.True(t, ok)
	assert.Equal(t, booking.CodeDateRequired, fieldErr.Code)
}

func TestValidateCapacityBoundary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		guests int
		code   booking.Code
	}{
		{guests: 20},
		{guests: 1},
		{guests: 21, code: booking.CodeGuestsMax},
		{guests: 0, code: booking.CodeGuestsMin},
		{guests: -3, code: booking.CodeGuestsMin},
	}
	for _, tt := range tests {
		req := validRequest()
		req.GuestCount = tt.guests
		_, errs := booking.Validate(req, catalog(), today)
		fieldErr, ok := errs.Get(booking.FieldGuestCount)
		if tt.code == "" {
			assert.False(t, ok, "guests=%d", tt.guests)
			continue
		}
		require.True(t, ok, "guests=%d", tt.guests)
		assert.Equal(t, tt.code, fieldErr.Code)
	}

	req := validRequest()
	req.GuestCount = 21
	_, errs := booking.Validate(req, catalog(), today)
	fieldErr, _ := errs.Get(booking.FieldGuestCount)
	assert.Equal(t, "Máximo de 20 pessoas", fieldErr.Message)
}

func TestValidateReportsAllErrorsInOrder(t *testing.T) {
	t.Parallel()

	req := validRequest()
	req.GuestCount = 50
	req.Purpose = "   "
	req.AcceptsTerms = false
	_, errs := booking.Validate(req, catalog(), today)

	assert.Equal(t, []string{booking.FieldGuestCount, booking.FieldPurpose, booking.FieldAcceptsTerms}, errs.Fields())
	assert.Contains(t, errs.Map(), booking.FieldGuestCount)
	assert.Contains(t, errs.Map(), booking.FieldPurpose)

	_, errs = booking.Validate(booking.Request{}, catalog(), today)
	assert.Equal(t, []string{
		booking.FieldAreaID,
		booking.FieldDate,
		booking.FieldStartTime,
		booking.FieldEndTime,
		booking.FieldGuestCount,
		booking.FieldPurpose,
		booking.FieldAcceptsTerms,
	}, errs.Fields())
}

func TestValidateTimes(t *testing.T) {
	t.Parallel()

	t.Run("end must follow start", func(t *testing.T) {
		req := validRequest()
		req.EndTime = req.StartTime
		_, errs := booking.Validate(req, catalog(), today)
		fieldErr, ok := errs.Get(booking.FieldEndTime)
		require.True(t, ok)
		assert.Equal(t, booking.CodeEndBeforeStart, fieldErr.Code)
		assert.False(t, errs.Has(booking.FieldStartTime))
	})

	t.Run("operating hours are inclusive", func(t *testing.T) {
		req := validRequest()
		req.StartTime = booking.At(booking.NewTimeOfDay(6, 0))
		req.EndTime = booking.At(booking.NewTimeOfDay(22, 0))
		_, errs := booking.Validate(req, catalog(), today)
		assert.Zero(t, errs.Len(), errs.Map())
	})

	t.Run("outside operating hours", func(t *testing.T) {
		req := validRequest()
		req.StartTime = booking.At(booking.NewTimeOfDay(5, 0))
		req.EndTime = booking.At(booking.NewTimeOfDay(22, 30))
		_, errs := booking.Validate(req, catalog(), today)
		start, ok := errs.Get(booking.FieldStartTime)
		require.True(t, ok)
		assert.Equal(t, booking.CodeOutsideHours, start.Code)
		assert.Equal(t, "Horário fora do funcionamento (06:00-22:00)", start.Message)
		assert.True(t, errs.Has(booking.FieldEndTime))
	})

	t.Run("midnight is a selected time", func(t *testing.T) {
		req := validRequest()
		req.StartTime = booking.At(booking.NewTimeOfDay(0, 0))
		_, errs := booking.Validate(req, catalog(), today)
		start, ok := errs.Get(booking.FieldStartTime)
		require.True(t, ok)
		assert.Equal(t, booking.CodeOutsideHours, start.Code)
	})
}

func TestValidateMalformedFields(t *testing.T) {
	t.Parallel()

	req := validRequest()
	req.Date = nil
	req.EndTime = booking.Clock{}
	req.Malformed = []string{booking.FieldDate, booking.FieldEndTime}
	req.GuestCount = 0

	_, errs := booking.Validate(req, catalog(), today)
	assert.Equal(t, []string{booking.FieldDate, booking.FieldEndTime, booking.FieldGuestCount}, errs.Fields())

	date, _ := errs.Get(booking.FieldDate)
	assert.Equal(t, booking.CodeDateInvalid, date.Code)
	end, _ := errs.Get(booking.FieldEndTime)
	assert.Equal(t, booking.CodeTimeInvalid, end.Code)
	assert.Equal(t, "Horário inválido", end.Message)
}

func TestValidateAreaAndExtras(t *testing.T) {
	t.Parallel()

	req := validRequest()
	req.AreaID = "9"
	_, errs := booking.Validate(req, catalog(), today)
	fieldErr, ok := errs.Get(booking.FieldAreaID)
	require.True(t, ok)
	assert.Equal(t, booking.CodeAreaUnavailable, fieldErr.Code)

	req.AreaID = "404"
	req.GuestCount = 500
	_, errs = booking.Validate(req, catalog(), today)
	fieldErr, _ = errs.Get(booking.FieldAreaID)
	assert.Equal(t, booking.CodeAreaUnknown, fieldErr.Code)
	assert.False(t, errs.Has(booking.FieldGuestCount))

	req = validRequest()
	req.ExtraItemIDs = []string{"3", "3", "77"}
	req.PaymentMethod = "cash"
	_, errs = booking.Validate(req, catalog(), today)
	assert.Equal(t, []string{booking.FieldExtraItems, booking.FieldPaymentMethod}, errs.Fields())

	req.ExtraItemIDs = []string{"3", "3"}
	req.PaymentMethod = booking.PaymentBoleto
	validated, errs := booking.Validate(req, catalog(), today)
	require.Zero(t, errs.Len())
	assert.Equal(t, []string{"3"}, validated.Request.ExtraItemIDs)
	assert.True(t, decimal.RequireFromString("210.00").Equal(validated.TotalAmount))
}

func TestBillableHoursTruncatesMinutes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, booking.BillableHours(booking.NewTimeOfDay(12, 0), booking.NewTimeOfDay(13, 30)))
	assert.Equal(t, 1, booking.BillableHours(booking.NewTimeOfDay(12, 30), booking.NewTimeOfDay(13, 0)))
	assert.Equal(t, 0, booking.BillableHours(booking.NewTimeOfDay(14, 0), booking.NewTimeOfDay(13, 0)))
}

func TestQuote(t *testing.T) {
	t.Parallel()

	area := churrasqueira()
	assert.True(t, booking.Quote(area, booking.Clock{}, booking.At(booking.NewTimeOfDay(16, 0)), nil).IsZero())

	extras := booking.DefaultExtras()[:2]
	total := booking.Quote(area, booking.At(booking.NewTimeOfDay(12, 0)), booking.At(booking.NewTimeOfDay(14, 0)), extras)
	assert.True(t, decimal.RequireFromString("135.00").Equal(total), total.String())
}

func TestTimeOptions(t *testing.T) {
	t.Parallel()

	options := booking.TimeOptions(booking.Hours{Start: booking.NewTimeOfDay(20, 0), End: booking.NewTimeOfDay(23, 0)})
	names := make([]string, len(options))
	for i, option := range options {
		names[i] = option.String()
	}
	assert.Equal(t, []string{"20:00", "21:00", "22:00", "23:00"}, names)
	assert.Nil(t, booking.TimeOptions(booking.Hours{Start: booking.NewTimeOfDay(10, 0), End: booking.NewTimeOfDay(9, 0)}))
}

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()

	tod, err := booking.ParseTimeOfDay("08:30")
	require.NoError(t, err)
	assert.Equal(t, 8, tod.Hour())
	assert.Equal(t, 30, tod.Minute())

	for _, bad := range []string{"", "8:30", "24:00", "12:60", "ab:cd", "+1:00"} {
		_, err := booking.ParseTimeOfDay(bad)
		assert.Error(t, err, bad)
	}

	clock, err := booking.ParseClock("")
	require.NoError(t, err)
	assert.False(t, clock.Set)
}

func TestDate(t *testing.T) {
	t.Parallel()

	d, err := booking.ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", d.AddDays(1).String())
	assert.True(t, d.After(today))
	assert.Equal(t, time.Thursday, d.Weekday())

	_, err = booking.ParseDate("2024-02-30")
	assert.Error(t, err)

	saoPaulo := time.FixedZone("BRT", -3*60*60)
	now := time.Date(2024, time.January, 16, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, booking.NewDate(2024, time.January, 15), booking.Today(now, saoPaulo))
}
