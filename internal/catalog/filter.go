package catalog

import (
	"strings"

	"maeva_back_end/internal/models"
)

// Filter applique catégorie, mise en avant, exclusions et limite, dans cet ordre.
// La recherche textuelle est faite en amont.
func Filter(products []models.Product, q models.ProductQuery) []models.Product {
	excluded := make(map[string]bool, len(q.Exclude))
	for _, id := range q.Exclude {
		excluded[id] = true
	}

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if q.Category != "" && !strings.EqualFold(p.Category, q.Category) {
			continue
		}
		if q.Featured != nil && p.Featured != *q.Featured {
			continue
		}
		if excluded[p.ID] {
			continue
		}
		out = append(out, p)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out
}

// MatchText est la recherche de secours quand Elasticsearch est indisponible.
func MatchText(p models.Product, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	fields := append([]string{p.Name, p.Description, p.Category}, p.Tags...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// ParseIDList découpe "a,b, c" en identifiants.
func ParseIDList(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
