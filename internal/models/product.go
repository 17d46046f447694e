package models

import "time"

type Product struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Price          float64   `json:"price"`
	CompareAtPrice float64   `json:"compareAtPrice,omitempty"`
	Category       string    `json:"category"`
	CollectionID   string    `json:"collectionId,omitempty"`
	Colors         []string  `json:"colors,omitempty"`
	Sizes          []string  `json:"sizes,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
	ImageURLs      []string  `json:"imageUrls"`
	Featured       bool      `json:"featured"`
	Stock          int       `json:"stock"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ProductQuery reprend les paramètres de GET /api/products.
type ProductQuery struct {
	ID       string
	Category string
	Search   string
	Featured *bool
	Limit    int
	Exclude  []string
}
