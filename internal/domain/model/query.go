package model

import (
	"math"
	"time"
)

const (
	DefaultPage       = 1
	DefaultPageLimit  = 10
	MaxPageLimit      = 1000
	MaxExportRows     = 10000
	DefaultSortField  = SortByPaymentTime
	DefaultSortOrder  = SortDesc
	TopSchoolsInStats = 5
)

// SortField names a whitelisted column of the flattened transaction view.
type SortField string

const (
	SortByPaymentTime       SortField = "payment_time"
	SortByOrderAmount       SortField = "order_amount"
	SortByTransactionAmount SortField = "transaction_amount"
	SortByStatus            SortField = "status"
	SortBySchoolID          SortField = "school_id"
	SortByStudentName       SortField = "student_name"
	SortByCustomOrderID     SortField = "custom_order_id"
	SortByCreatedAt         SortField = "created_at"
)

// SortFields lists every field transactions can be ordered by.
var SortFields = []SortField{
	SortByPaymentTime,
	SortByOrderAmount,
	SortByTransactionAmount,
	SortByStatus,
	SortBySchoolID,
	SortByStudentName,
	SortByCustomOrderID,
	SortByCreatedAt,
}

// Valid reports whether the field is whitelisted.
func (f SortField) Valid() bool {
	for _, known := range SortFields {
		if f == known {
			return true
		}
	}
	return false
}

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// TransactionFilter narrows the transaction view. Zero values disable a predicate.
type TransactionFilter struct {
	Statuses []PaymentStatus
	SchoolID string
	// From and To bound payment_time inclusively.
	From *time.Time
	To   *time.Time
}

// TransactionSort orders the transaction view.
type TransactionSort struct {
	Field SortField
	Order SortOrder
}

// Pagination selects a window of the sorted view.
type Pagination struct {
	Page  int
	Limit int
}

// Offset returns the number of rows skipped before the page. Pages past
// the addressable range saturate at math.MaxInt and yield no rows.
func (p Pagination) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// TransactionQuery is a validated listing request.
type TransactionQuery struct {
	Filter TransactionFilter
	Sort   TransactionSort
	Page   Pagination
}

// TransactionQueryParams carries raw, unvalidated query string values.
type TransactionQueryParams struct {
	Page      string
	Limit     string
	Sort      string
	Order     string
	Status    string
	SchoolID  string
	StartDate string
	EndDate   string
}
