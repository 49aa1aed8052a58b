package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/hzeller/se2calc/internal/store"
)

type SortColumn struct {
	Label  string
	Href   string
	Active bool
	Desc   bool
}

type ListPage struct {
	pageHeader
	Path    string
	Term    string
	Sort    string
	Desc    bool
	Columns []SortColumn
	Count   int
	Items   interface{}
}

var columnLabels = map[string]string{
	"name":          "Name",
	"mass":          "Mass",
	"crafting_time": "Crafting time",
	"health":        "Health",
	"pcu":           "PCU",
	"created_at":    "Created",
	"updated_at":    "Updated",
}

// listQuery reads q, sort and order. Sorting is restricted to the
// columns the store allows for the kind.
func listQuery(r *http.Request, kind store.Kind) store.ListQuery {
	q := store.ListQuery{
		Term: strings.TrimSpace(r.FormValue("q")),
		Sort: r.FormValue("sort"),
		Desc: r.FormValue("order") == "desc",
	}
	allowed := store.SortColumns(kind)
	valid := false
	for _, c := range allowed {
		if c == q.Sort {
			valid = true
		}
	}
	if !valid && len(allowed) > 0 {
		q.Sort = allowed[0]
	}
	return q
}

func newListPage(header pageHeader, path string, kind store.Kind, q store.ListQuery, count int) *ListPage {
	page := &ListPage{
		pageHeader: header,
		Path:       path,
		Term:       q.Term,
		Sort:       q.Sort,
		Desc:       q.Desc,
		Count:      count,
	}
	for _, c := range store.SortColumns(kind) {
		v := url.Values{}
		if q.Term != "" {
			v.Set("q", q.Term)
		}
		v.Set("sort", c)
		active := c == q.Sort
		// Clicking the active column flips the order.
		if active && !q.Desc {
			v.Set("order", "desc")
		} else {
			v.Set("order", "asc")
		}
		label := columnLabels[c]
		if label == "" {
			label = c
		}
		page.Columns = append(page.Columns, SortColumn{
			Label:  label,
			Href:   path + "?" + v.Encode(),
			Active: active,
			Desc:   active && q.Desc,
		})
	}
	return page
}
