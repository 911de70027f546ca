package services

import (
	"math"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps Page*Size within int.
	MaxPage = math.MaxInt / MaxPageSize
)

// Pageable is a zero-based page request. Sort entries look like
// "createdAt,desc" or "likeCount,title,asc"; a trailing direction applies to
// every property before it.
type Pageable struct {
	Page int
	Size int
	Sort []string
}

var defaultSort = []string{"createdAt,desc"}

func (p Pageable) normalized() Pageable {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	if len(p.Sort) == 0 {
		p.Sort = defaultSort
	}
	return p
}

func (p Pageable) Offset() int {
	return p.Page * p.Size
}

type sortOrder struct {
	column string
	desc   bool
}

// orders resolves sort properties against an entity's whitelist. An "id"
// tie-breaker is appended so rows with equal keys keep a stable order
// across pages.
func (p Pageable) orders(columns map[string]string) ([]sortOrder, error) {
	var orders []sortOrder
	for _, raw := range p.Sort {
		parts := strings.Split(raw, ",")
		desc := false
		if n := len(parts); n > 1 {
			switch strings.ToLower(strings.TrimSpace(parts[n-1])) {
			case "asc":
				parts = parts[:n-1]
			case "desc":
				desc = true
				parts = parts[:n-1]
			}
		}
		for _, prop := range parts {
			prop = strings.TrimSpace(prop)
			if prop == "" {
				continue
			}
			col, ok := columns[prop]
			if !ok {
				return nil, badRequest("unknown sort property: %s", prop)
			}
			orders = append(orders, sortOrder{column: col, desc: desc})
		}
	}
	if len(orders) == 0 {
		orders = append(orders, sortOrder{column: "created_at", desc: true})
	}
	for _, o := range orders {
		if o.column == "id" {
			return orders, nil
		}
	}
	return append(orders, sortOrder{column: "id", desc: orders[0].desc}), nil
}

// paginate applies ordering, limit and offset.
func paginate(p Pageable, orders []sortOrder) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, o := range orders {
			db = db.Order(clause.OrderByColumn{
				Column: clause.Column{Table: clause.CurrentTable, Name: o.column},
				Desc:   o.desc,
			})
		}
		return db.Limit(p.Size).Offset(p.Offset())
	}
}

type Page[T any] struct {
	Content          []T   `json:"content"`
	TotalElements    int64 `json:"total_elements"`
	TotalPages       int   `json:"total_pages"`
	Number           int   `json:"number"`
	Size             int   `json:"size"`
	NumberOfElements int   `json:"number_of_elements"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
	Empty            bool  `json:"empty"`
}

func newPage[T any](content []T, p Pageable, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := int(math.Ceil(float64(total) / float64(p.Size)))
	return Page[T]{
		Content:          content,
		TotalElements:    total,
		TotalPages:       totalPages,
		Number:           p.Page,
		Size:             p.Size,
		NumberOfElements: len(content),
		First:            p.Page == 0,
		Last:             p.Page+1 >= totalPages,
		Empty:            len(content) == 0,
	}
}

func mapSlice[S, T any](in []S, f func(*S) T) []T {
	out := make([]T, 0, len(in))
	for i := range in {
		out = append(out, f(&in[i]))
	}
	return out
}
