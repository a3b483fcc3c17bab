package service

import (
	"context"
	"sort"
	"strings"

	"github.com/CivicGate/civigate/internal/model"
	"github.com/CivicGate/civigate/internal/pkg/apperrors"
	"github.com/CivicGate/civigate/internal/pkg/metrics"
)

// List plans and executes a report query. When the filter has no
// keyword and at most one status and one category value, the store's
// secondary orderings can serve it (status takes precedence); anything
// else falls back to a full scan with filtering in application logic.
// Date-range narrowing and sorting apply to both paths. An empty result
// is a valid outcome, not an error.
func (s *ReportService) List(ctx context.Context, filter model.ReportFilter, sortBy model.ReportSort) ([]model.Report, error) {
	asc := sortBy.Order == "asc"

	statusSingle := ""
	if len(filter.Status) == 1 {
		statusSingle = filter.Status[0]
	}
	categorySingle := ""
	if len(filter.Category) == 1 {
		categorySingle = filter.Category[0]
	}
	indexEligible := filter.Keyword == "" && len(filter.Status) <= 1 && len(filter.Category) <= 1

	var items []model.Report
	var err error
	path := "scan"

	switch {
	case indexEligible && statusSingle != "" && model.IsValidStatus(statusSingle):
		path = "index"
		items, err = s.finder.ListByStatus(ctx, statusSingle, asc)
	case indexEligible && categorySingle != "" && model.IsValidCategory(categorySingle):
		path = "index"
		items, err = s.finder.ListByCategory(ctx, categorySingle, asc)
	default:
		items, err = s.finder.ScanAll(ctx)
		if err == nil {
			items = applyResidualFilters(items, filter)
		}
	}
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	metrics.QueryPath.WithLabelValues(path).Inc()

	if filter.StartDate != "" || filter.EndDate != "" {
		narrowed := items[:0]
		for _, it := range items {
			if inDateRange(it.CreatedAt, filter.StartDate, filter.EndDate) {
				narrowed = append(narrowed, it)
			}
		}
		items = narrowed
	}

	sortReports(items, sortBy.Field, asc)
	return items, nil
}

// applyResidualFilters runs the scan path's in-application filtering:
// set membership for status and category, case-sensitive substring
// match for the keyword.
func applyResidualFilters(items []model.Report, filter model.ReportFilter) []model.Report {
	out := items[:0]
	for _, it := range items {
		if len(filter.Status) > 0 && !contains(filter.Status, it.Status) {
			continue
		}
		if len(filter.Category) > 0 && !contains(filter.Category, it.Category) {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(it.Description, filter.Keyword) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// inDateRange compares lexicographically; the fixed-width ISO layout
// makes string order equal time order.
func inDateRange(createdAt, start, end string) bool {
	if start != "" && createdAt < start {
		return false
	}
	if end != "" && createdAt > end {
		return false
	}
	return true
}

// sortReports orders by the requested field. Non-created_at fields sort
// lexicographically with ties left in place; created_at is re-sorted
// even for index-path results so scan results end up in the same order.
func sortReports(items []model.Report, field string, asc bool) {
	dir := -1
	if asc {
		dir = 1
	}

	if field == model.SortFieldStatus || field == model.SortFieldCategory {
		sort.SliceStable(items, func(i, j int) bool {
			a, b := sortKey(items[i], field), sortKey(items[j], field)
			if a == b {
				return false
			}
			if dir > 0 {
				return a < b
			}
			return a > b
		})
		return
	}

	sort.SliceStable(items, func(i, j int) bool {
		if dir > 0 {
			return items[i].CreatedAt < items[j].CreatedAt
		}
		return items[i].CreatedAt > items[j].CreatedAt
	})
}

func sortKey(r model.Report, field string) string {
	if field == model.SortFieldStatus {
		return r.Status
	}
	return r.Category
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// ParseFilter converts raw query parameters to a filter and sort,
// mirroring the HTTP surface: comma-separated multi-values, whitelist
// on sort fields, descending by default.
func ParseFilter(query map[string]string) (model.ReportFilter, model.ReportSort) {
	var filter model.ReportFilter
	var sortBy model.ReportSort

	filter.StartDate = query["start_date"]
	filter.EndDate = query["end_date"]
	filter.Keyword = query["keyword"]
	filter.Status = splitList(query["status"])
	filter.Category = splitList(query["category"])

	switch query["sort_field"] {
	case model.SortFieldCreatedAt, model.SortFieldStatus, model.SortFieldCategory:
		sortBy.Field = query["sort_field"]
	}
	switch query["sort_order"] {
	case "asc", "desc":
		sortBy.Order = query["sort_order"]
	}
	return filter, sortBy
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
