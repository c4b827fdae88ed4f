package members

import (
	"context"
	"strconv"
	"time"

	"github.com/uptrace/bun"
)

// Pagination defaults for admin listing screens.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// SearchParams is the loosely-typed parameter bag a listing screen submits.
// Unknown keys are ignored; values are parsed leniently.
type SearchParams map[string]string

func (p SearchParams) Get(key string) string {
	return p[key]
}

func (p SearchParams) Int(key string) int {
	n, err := strconv.Atoi(p[key])
	if err != nil {
		return 0
	}
	return n
}

func (p SearchParams) Date(key string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", p[key])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Page is one page of a filtered result set.
type Page[T any] struct {
	Items   []T `json:"items"`
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// TotalPages derives the page count from the total and page size.
func (p *Page[T]) TotalPages() int {
	if p.PerPage <= 0 {
		return 0
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

func paginatedScan[T any](ctx context.Context, q *bun.SelectQuery, params SearchParams, items *[]T) (*Page[T], error) {
	page := params.Int("page")
	if page < 1 {
		page = 1
	}

	perPage := params.Int("per_page")
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	total, err := q.
		Limit(perPage).
		Offset((page - 1) * perPage).
		ScanAndCount(ctx)
	if err != nil {
		return nil, err
	}

	return &Page[T]{
		Items:   *items,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}, nil
}

// SearchAccounts filters the account listing. Supported keys: email,
// first_name, last_name (joined member), member_id, status (OK / Not OK),
// role (some / none / a specific role), expiry (Active / Expired /
// Extended), verify (Verified / Unverified), page, per_page.
func SearchAccounts(ctx context.Context, db bun.IDB, params SearchParams) (*Page[*Account], error) {
	var accounts []*Account

	q := db.NewSelect().
		Model(&accounts).
		Relation("Member").
		Order("acc.email")

	// Relation("Member") joins the members table under the "member" alias.
	if v := params.Get("first_name"); v != "" {
		q = q.Where("member.first_name LIKE ?", "%"+v+"%")
	}
	if v := params.Get("last_name"); v != "" {
		q = q.Where("member.last_name LIKE ?", "%"+v+"%")
	}
	if v := params.Get("email"); v != "" {
		q = q.Where("acc.email LIKE ?", "%"+v+"%")
	}
	if v := params.Int("member_id"); v > 0 {
		q = q.Where("acc.member_id = ?", v)
	}

	switch params.Get("status") {
	case "OK":
		q = q.Where("acc.status = ?", StatusOK)
	case "Not OK":
		q = q.Where("acc.status != ?", StatusOK)
	}

	switch role := params.Get("role"); {
	case role == "some":
		q = q.Where("acc.roles IS NOT NULL")
	case role == "none":
		q = q.Where("acc.roles IS NULL")
	case ValidRole(role):
		q = q.Where("acc.roles LIKE ?", "%"+role+"%")
	}

	today := BeginningOfDay(time.Now())
	switch params.Get("expiry") {
	case "Active":
		q = q.Where("acc.expires_on >= ?", today)
	case "Expired":
		q = q.Where("acc.expires_on < ?", today)
	case "Extended":
		q = q.Where("acc.expires_on >= ?", endOfYear(today.AddDate(2, 0, 0)))
	}

	switch params.Get("verify") {
	case "Verified":
		q = q.Where("acc.verified_at IS NOT NULL")
	case "Unverified":
		q = q.Where("acc.verified_at IS NULL")
	}

	return paginatedScan(ctx, q, params, &accounts)
}

// SearchLogins filters the authentication journal. Supported keys: email,
// ip, result (success / failure / a specific failure reason), from, to
// (dates), page, per_page.
func SearchLogins(ctx context.Context, db bun.IDB, params SearchParams) (*Page[*Login], error) {
	var entries []*Login

	q := db.NewSelect().
		Model(&entries).
		Order("lgn.created_at DESC")

	if v := params.Get("email"); v != "" {
		q = q.Where("lgn.email LIKE ?", "%"+v+"%")
	}
	if v := params.Get("ip"); v != "" {
		q = q.Where("lgn.ip LIKE ?", "%"+v+"%")
	}

	switch result := params.Get("result"); result {
	case "":
	case "success":
		q = q.Where("lgn.reason IS NULL")
	case "failure":
		q = q.Where("lgn.reason IS NOT NULL")
	default:
		q = q.Where("lgn.reason = ?", result)
	}

	if from, ok := params.Date("from"); ok {
		q = q.Where("lgn.created_at >= ?", from)
	}
	if to, ok := params.Date("to"); ok {
		q = q.Where("lgn.created_at < ?", to.AddDate(0, 0, 1))
	}

	return paginatedScan(ctx, q, params, &entries)
}

func endOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, t.Location())
}
