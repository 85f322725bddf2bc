package usecase

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/schoolpay/internal/domain/errors"
	"github.com/polkiloo/schoolpay/internal/domain/model"
)

const (
	dateOnlyLayout    = "2006-01-02"
	minPasswordLength = 6
)

// ParseTransactionQuery validates raw listing parameters and applies defaults.
func ParseTransactionQuery(params model.TransactionQueryParams) (model.TransactionQuery, error) {
	page, err := ParsePagination(params.Page, params.Limit)
	if err != nil {
		return model.TransactionQuery{}, err
	}

	sort := model.TransactionSort{Field: model.DefaultSortField, Order: model.DefaultSortOrder}
	if raw := strings.TrimSpace(params.Sort); raw != "" {
		field := model.SortField(raw)
		if !field.Valid() {
			return model.TransactionQuery{}, validationError("sort", raw)
		}
		sort.Field = field
	}
	if raw := strings.TrimSpace(params.Order); raw != "" {
		switch order := model.SortOrder(strings.ToLower(raw)); order {
		case model.SortAsc, model.SortDesc:
			sort.Order = order
		default:
			return model.TransactionQuery{}, validationError("order", raw)
		}
	}

	filter := model.TransactionFilter{
		Statuses: parseStatuses(params.Status),
		SchoolID: strings.TrimSpace(params.SchoolID),
	}

	if raw := strings.TrimSpace(params.StartDate); raw != "" {
		from, _, err := parseDate(raw)
		if err != nil {
			return model.TransactionQuery{}, validationError("startDate", raw)
		}
		filter.From = &from
	}
	if raw := strings.TrimSpace(params.EndDate); raw != "" {
		to, dateOnly, err := parseDate(raw)
		if err != nil {
			return model.TransactionQuery{}, validationError("endDate", raw)
		}
		if dateOnly {
			to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		filter.To = &to
	}

	return model.TransactionQuery{Filter: filter, Sort: sort, Page: page}, nil
}

// ParsePagination validates page and limit, falling back to defaults for empty values.
// Limits above the maximum are capped.
func ParsePagination(rawPage, rawLimit string) (model.Pagination, error) {
	page := model.Pagination{Page: model.DefaultPage, Limit: model.DefaultPageLimit}

	if raw := strings.TrimSpace(rawPage); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return model.Pagination{}, validationError("page", raw)
		}
		page.Page = n
	}
	if raw := strings.TrimSpace(rawLimit); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return model.Pagination{}, validationError("limit", raw)
		}
		page.Limit = min(n, model.MaxPageLimit)
	}
	return page, nil
}

// ValidatePaymentRequest checks a payment request before anything is persisted.
func ValidatePaymentRequest(req model.PaymentRequest) error {
	if strings.TrimSpace(req.SchoolID) == "" {
		return fmt.Errorf("%w: school_id is required", domainErrors.ErrValidation)
	}
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", domainErrors.ErrValidation)
	}
	if model.ExceedsMaxAmount(req.Amount) {
		return fmt.Errorf("%w: amount exceeds the maximum of %s", domainErrors.ErrValidation, model.FromMinorUnits(model.MaxMinorAmount).StringFixed(2))
	}
	if model.ToMinorUnits(req.Amount) < 1 {
		return fmt.Errorf("%w: amount is below the smallest currency unit", domainErrors.ErrValidation)
	}
	if strings.TrimSpace(req.Student.Name) == "" || strings.TrimSpace(req.Student.ID) == "" {
		return fmt.Errorf("%w: student_info name and id are required", domainErrors.ErrValidation)
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(req.Student.Email)); err != nil {
		return fmt.Errorf("%w: student_info email is invalid", domainErrors.ErrValidation)
	}
	return nil
}

// ValidateCredentials checks registration input.
func ValidateCredentials(email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: email is invalid", domainErrors.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domainErrors.ErrValidation, minPasswordLength)
	}
	return nil
}

func parseStatuses(raw string) []model.PaymentStatus {
	var statuses []model.PaymentStatus
	for _, item := range strings.Split(raw, ",") {
		if status := model.NormalizePaymentStatus(item); status != "" {
			statuses = append(statuses, status)
		}
	}
	return statuses
}

// parseDate accepts RFC3339 timestamps and plain dates, reporting which one it got.
func parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(dateOnlyLayout, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func validationError(field, value string) error {
	return fmt.Errorf("%w: invalid %s %q", domainErrors.ErrValidation, field, value)
}
