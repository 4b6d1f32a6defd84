package booking

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Catalog resolves the reference data a request points at.
type Catalog interface {
	Area(id string) (CommonArea, bool)
	Extra(id string) (ExtraItem, bool)
}

type staticCatalog struct {
	areas  map[string]CommonArea
	extras map[string]ExtraItem
}

// NewCatalog builds a Catalog over fixed slices.
func NewCatalog(areas []CommonArea, extras []ExtraItem) Catalog {
	c := staticCatalog{
		areas:  make(map[string]CommonArea, len(areas)),
		extras: make(map[string]ExtraItem, len(extras)),
	}
	for _, area := range areas {
		c.areas[area.ID] = area
	}
	for _, extra := range extras {
		c.extras[extra.ID] = extra
	}
	return c
}

func (c staticCatalog) Area(id string) (CommonArea, bool) {
	area, ok := c.areas[id]
	return area, ok
}

func (c staticCatalog) Extra(id string) (ExtraItem, bool) {
	extra, ok := c.extras[id]
	return extra, ok
}

// Validate checks req against the catalog and prices it. Every check runs,
// so the returned FieldErrors lists all failing fields at once. On failure
// the Validated value is zero.
func Validate(req Request, catalog Catalog, today Date) (Validated, FieldErrors) {
	var errs FieldErrors

	var (
		area      CommonArea
		areaKnown bool
	)
	areaID := strings.TrimSpace(req.AreaID)
	switch {
	case areaID == "":
		errs.Add(FieldAreaID, CodeAreaRequired, "")
	case catalog == nil:
		errs.Add(FieldAreaID, CodeAreaUnknown, "")
	default:
		area, areaKnown = catalog.Area(areaID)
		if !areaKnown {
			errs.Add(FieldAreaID, CodeAreaUnknown, "")
		} else if area.Status != AreaActive {
			errs.Add(FieldAreaID, CodeAreaUnavailable, "")
		}
	}

	switch {
	case req.Date != nil:
		if req.Date.Before(today) {
			errs.Add(FieldDate, CodeDatePast, "")
		}
	case req.malformed(FieldDate):
		errs.Add(FieldDate, CodeDateInvalid, "")
	default:
		errs.Add(FieldDate, CodeDateRequired, "")
	}

	if req.malformed(FieldStartTime) {
		errs.Add(FieldStartTime, CodeTimeInvalid, "")
	}
	if !req.StartTime.Set {
		errs.Add(FieldStartTime, CodeStartRequired, "")
	}
	if req.malformed(FieldEndTime) {
		errs.Add(FieldEndTime, CodeTimeInvalid, "")
	}
	if !req.EndTime.Set {
		errs.Add(FieldEndTime, CodeEndRequired, "")
	}
	if req.StartTime.Set && req.EndTime.Set && req.StartTime.Time >= req.EndTime.Time {
		errs.Add(FieldEndTime, CodeEndBeforeStart, "")
	}

	if areaKnown {
		window := area.AvailableHours.String()
		if req.StartTime.Set && !area.AvailableHours.Contains(req.StartTime.Time) {
			errs.Add(FieldStartTime, CodeOutsideHours, window)
		}
		if req.EndTime.Set && !area.AvailableHours.Contains(req.EndTime.Time) {
			errs.Add(FieldEndTime, CodeOutsideHours, window)
		}
	}

	switch {
	case req.GuestCount < 1:
		errs.Add(FieldGuestCount, CodeGuestsMin, "")
	case areaKnown && req.GuestCount > area.Capacity:
		errs.Add(FieldGuestCount, CodeGuestsMax, strconv.Itoa(area.Capacity))
	}

	if strings.TrimSpace(req.Purpose) == "" {
		errs.Add(FieldPurpose, CodePurposeRequired, "")
	}

	if !req.AcceptsTerms {
		errs.Add(FieldAcceptsTerms, CodeTermsRequired, "")
	}

	extras := make([]ExtraItem, 0, len(req.ExtraItemIDs))
	seen := make(map[string]struct{}, len(req.ExtraItemIDs))
	for _, id := range req.ExtraItemIDs {
		id = strings.TrimSpace(id)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		var (
			extra ExtraItem
			ok    bool
		)
		if catalog != nil {
			extra, ok = catalog.Extra(id)
		}
		if !ok {
			errs.Add(FieldExtraItems, CodeExtraUnknown, id)
			continue
		}
		extras = append(extras, extra)
	}

	method := req.PaymentMethod
	if method == "" {
		method = PaymentPix
	} else if !method.Valid() {
		errs.Add(FieldPaymentMethod, CodePaymentInvalid, string(method))
	}

	if errs.Len() > 0 {
		return Validated{}, errs
	}

	normalized := req
	normalized.AreaID = areaID
	normalized.PaymentMethod = method
	normalized.ExtraItemIDs = make([]string, len(extras))
	for i, extra := range extras {
		normalized.ExtraItemIDs[i] = extra.ID
	}

	hours := BillableHours(req.StartTime.Time, req.EndTime.Time)
	areaAmount, extrasAmount := price(area, hours, extras)
	return Validated{
		Request:      normalized,
		Area:         area,
		Extras:       extras,
		Hours:        hours,
		AreaAmount:   areaAmount,
		ExtrasAmount: extrasAmount,
		TotalAmount:  areaAmount.Add(extrasAmount),
	}, FieldErrors{}
}

// BillableHours is the difference between the hour components of end and
// start. Minutes are ignored, so 12:00-13:30 bills one hour.
func BillableHours(start, end TimeOfDay) int {
	hours := end.Hour() - start.Hour()
	if hours < 0 {
		return 0
	}
	return hours
}

// Quote prices a partially filled request for display. It returns zero
// until both times are selected.
func Quote(area CommonArea, start, end Clock, extras []ExtraItem) decimal.Decimal {
	if !start.Set || !end.Set {
		return decimal.Zero
	}
	areaAmount, extrasAmount := price(area, BillableHours(start.Time, end.Time), extras)
	return areaAmount.Add(extrasAmount)
}

func price(area CommonArea, hours int, extras []ExtraItem) (decimal.Decimal, decimal.Decimal) {
	areaAmount := area.HourlyRate.Mul(decimal.NewFromInt(int64(hours))).Round(2)
	extrasAmount := decimal.Zero
	for _, extra := range extras {
		extrasAmount = extrasAmount.Add(extra.Price)
	}
	return areaAmount, extrasAmount.Round(2)
}

// TimeOptions lists the hourly times selectable within hours, both ends included.
func TimeOptions(hours Hours) []TimeOfDay {
	if hours.End < hours.Start {
		return nil
	}
	options := make([]TimeOfDay, 0, hours.End.Hour()-hours.Start.Hour()+1)
	for t := hours.Start; t <= hours.End; t += 60 {
		options = append(options, t)
	}
	return options
}
