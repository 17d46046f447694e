// Package shipping expose la liste fixe des modes de livraison.
package shipping

import (
	"errors"
	"fmt"
	"strings"

	"maeva_back_end/internal/models"
)

const (
	Free     = "free"
	Standard = "standard"
	Express  = "express"
)

var ErrUnknownOption = errors.New("mode de livraison inconnu")

// Prix forfaitaires en DZD, aucun calcul selon le poids ou le montant.
var defaultOptions = []models.ShippingOption{
	{
		ID:                Free,
		Name:              "Livraison gratuite",
		Price:             0,
		EstimatedDelivery: "7 à 10 jours ouvrables",
	},
	{
		ID:                Standard,
		Name:              "Livraison standard",
		Price:             500,
		EstimatedDelivery: "3 à 5 jours ouvrables",
	},
	{
		ID:                Express,
		Name:              "Livraison express",
		Price:             1000,
		EstimatedDelivery: "24 à 48 heures",
	},
}

type Catalog struct {
	options []models.ShippingOption
}

func NewCatalog() *Catalog {
	return &Catalog{options: defaultOptions}
}

// Options retourne une copie de la liste, dans l'ordre d'affichage.
func (c *Catalog) Options() []models.ShippingOption {
	out := make([]models.ShippingOption, len(c.options))
	copy(out, c.options)
	return out
}

func (c *Catalog) Lookup(id string) (models.ShippingOption, error) {
	for _, o := range c.options {
		if o.ID == id {
			return o, nil
		}
	}
	return models.ShippingOption{}, fmt.Errorf("%w: %q", ErrUnknownOption, id)
}

// Find accepte l'identifiant ou le nom affiché d'une option, sans tenir compte de la casse.
func (c *Catalog) Find(ref string) (models.ShippingOption, error) {
	ref = strings.TrimSpace(ref)
	for _, o := range c.options {
		if strings.EqualFold(o.ID, ref) || strings.EqualFold(o.Name, ref) {
			return o, nil
		}
	}
	return models.ShippingOption{}, fmt.Errorf("%w: %q", ErrUnknownOption, ref)
}

// Default est l'option présélectionnée au checkout.
func (c *Catalog) Default() models.ShippingOption {
	o, _ := c.Lookup(Standard)
	return o
}
