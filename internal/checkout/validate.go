package checkout

import (
	"regexp"
	"sort"
	"strings"

	"maeva_back_end/internal/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError porte un message par champ du formulaire.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "formulaire invalide: " + strings.Join(keys, ", ")
}

// NormalizeCustomer retire les espaces superflus de chaque champ.
func NormalizeCustomer(c models.Customer) models.Customer {
	return models.Customer{
		Name:       strings.TrimSpace(c.Name),
		Address:    strings.TrimSpace(c.Address),
		City:       strings.TrimSpace(c.City),
		Phone:      strings.TrimSpace(c.Phone),
		Email:      strings.TrimSpace(c.Email),
		PostalCode: strings.TrimSpace(c.PostalCode),
		Notes:      strings.TrimSpace(c.Notes),
	}
}

// ValidateCustomer vérifie les champs obligatoires et le format de l'e-mail.
// Elle retourne nil ou un *ValidationError.
func ValidateCustomer(c models.Customer) error {
	c = NormalizeCustomer(c)
	fields := make(map[string]string)

	if c.Name == "" {
		fields["name"] = "Le nom est requis"
	}
	if c.Address == "" {
		fields["address"] = "L'adresse est requise"
	}
	if c.City == "" {
		fields["city"] = "La ville est requise"
	}
	if c.Phone == "" {
		fields["phone"] = "Le numéro de téléphone est requis"
	}
	switch {
	case c.Email == "":
		fields["email"] = "L'adresse e-mail est requise"
	case !emailPattern.MatchString(c.Email):
		fields["email"] = "Adresse e-mail invalide"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
