// Package cart contient le panier en mémoire et sa persistance par session.
package cart

import (
	"errors"
	"fmt"

	"maeva_back_end/internal/models"
	"maeva_back_end/internal/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInvalidQuantity = errors.New("quantité invalide")

// ValidateQuantity est appliquée à la frontière HTTP, avant toute mise à jour :
// le panier lui-même ne borne jamais les quantités.
func ValidateQuantity(quantity, max int) error {
	if quantity <= 0 || quantity > max {
		return fmt.Errorf("%w: %d (attendu entre 1 et %d)", ErrInvalidQuantity, quantity, max)
	}
	return nil
}

// Selector désigne une ou plusieurs lignes.
//
//   - LineID renseigné : exactement cette ligne.
//   - Color et Size renseignés : la ligne exacte.
//   - un seul axe renseigné : toutes les lignes du produit ayant cette valeur.
//   - aucun axe : la première ligne trouvée pour ProductID, jamais toutes les variantes.
type Selector struct {
	LineID    string
	ProductID string
	Color     *string
	Size      *string
}

type Cart struct {
	lines []models.CartLine
}

// New construit un panier à partir de lignes persistées.
func New(lines []models.CartLine) *Cart {
	c := &Cart{lines: make([]models.CartLine, 0, len(lines))}
	for _, l := range lines {
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		c.lines = append(c.lines, l)
	}
	return c
}

// Add fusionne la ligne avec une ligne existante de même clé, sinon l'ajoute à la fin.
func (c *Cart) Add(line models.CartLine) models.CartLine {
	for i := range c.lines {
		if sameKey(c.lines[i], line) {
			c.lines[i].Quantity += line.Quantity
			return c.lines[i]
		}
	}
	if line.ID == "" {
		line.ID = uuid.NewString()
	}
	c.lines = append(c.lines, line)
	return line
}

// Remove supprime les lignes désignées et retourne leur nombre.
func (c *Cart) Remove(sel Selector) int {
	targets := c.targets(sel)
	if len(targets) == 0 {
		return 0
	}
	drop := make(map[int]bool, len(targets))
	for _, i := range targets {
		drop[i] = true
	}
	kept := make([]models.CartLine, 0, len(c.lines)-len(targets))
	for i, l := range c.lines {
		if !drop[i] {
			kept = append(kept, l)
		}
	}
	c.lines = kept
	return len(targets)
}

// UpdateQuantity fixe la quantité des lignes désignées, sans la borner.
func (c *Cart) UpdateQuantity(sel Selector, quantity int) int {
	targets := c.targets(sel)
	for _, i := range targets {
		c.lines[i].Quantity = quantity
	}
	return len(targets)
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) Lines() []models.CartLine {
	out := make([]models.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) TotalItems() int {
	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}
	return total
}

func (c *Cart) TotalPrice() float64 {
	return money.Float(c.subtotal())
}

func (c *Cart) subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(money.LineTotal(l.Price, l.Quantity))
	}
	return total
}

// Snapshot retourne la vue client, totaux recalculés à chaque appel.
func (c *Cart) Snapshot() models.Cart {
	return models.Cart{
		Items:      c.Lines(),
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
	}
}

func (c *Cart) targets(sel Selector) []int {
	if sel.LineID != "" {
		for i, l := range c.lines {
			if l.ID == sel.LineID {
				return []int{i}
			}
		}
		return nil
	}

	var idx []int
	for i, l := range c.lines {
		if l.ProductID != sel.ProductID {
			continue
		}
		switch {
		case sel.Color != nil && sel.Size != nil:
			if l.Color == *sel.Color && l.Size == *sel.Size {
				return []int{i}
			}
		case sel.Color != nil:
			if l.Color == *sel.Color {
				idx = append(idx, i)
			}
		case sel.Size != nil:
			if l.Size == *sel.Size {
				idx = append(idx, i)
			}
		default:
			return []int{i}
		}
	}
	return idx
}

func sameKey(a, b models.CartLine) bool {
	return a.ProductID == b.ProductID && a.Color == b.Color && a.Size == b.Size
}
