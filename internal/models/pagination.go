package models

// Pagination is returned next to list payloads.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes the page count for total rows.
func NewPagination(page, limit, total int) Pagination {
	p := Pagination{Page: page, Limit: limit, Total: total}
	if limit > 0 {
		p.TotalPages = (total + limit - 1) / limit
	}
	return p
}

// ListParams carries the query-string options shared by list endpoints.
type ListParams struct {
	Page  int
	Limit int
	Sort  string
	Desc  bool
	Query string
}

// Offset returns the row offset for the current page.
func (p ListParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// BulkStatusRequest is the PATCH body used for single and bulk moderation.
type BulkStatusRequest struct {
	IDs    []int64 `json:"ids" validate:"required,min=1,max=200,dive,gt=0"`
	Action string  `json:"action" validate:"required"`
	Reason string  `json:"reason" validate:"omitempty,max=500"`
}

// BulkResult reports per-id outcomes of a bulk action.
type BulkResult struct {
	Updated []int64          `json:"updated"`
	Failed  map[int64]string `json:"failed,omitempty"`
}
