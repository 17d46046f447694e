package orders

import (
	"strings"

	"maeva_back_end/internal/models"

	"github.com/google/uuid"
)

const trackingPrefix = "MAEVA-"

// NewTrackingCode retourne "MAEVA-" suivi de 8 caractères hexadécimaux majuscules.
func NewTrackingCode() string {
	id := uuid.New()
	return trackingPrefix + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

// NormalizeTrackingCode accepte les saisies en minuscules et avec espaces.
func NormalizeTrackingCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

var transitions = map[string][]string{
	models.OrderPending:   {models.OrderConfirmed, models.OrderCancelled},
	models.OrderConfirmed: {models.OrderShipped, models.OrderCancelled},
	models.OrderShipped:   {models.OrderDelivered},
}

// CanTransition indique si une commande peut passer de from à to.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

var flow = []string{
	models.OrderPending,
	models.OrderConfirmed,
	models.OrderShipped,
	models.OrderDelivered,
}

var statusLabels = map[string]string{
	models.OrderPending:   "Commande reçue",
	models.OrderConfirmed: "Commande confirmée",
	models.OrderShipped:   "Expédiée",
	models.OrderDelivered: "Livrée",
	models.OrderCancelled: "Annulée",
}

func StatusLabel(status string) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return status
}

// Timeline construit la frise de suivi à partir de l'historique.
// Une commande annulée s'arrête aux étapes atteintes puis affiche l'annulation.
func Timeline(o models.Order) []models.TrackingStep {
	reached := make(map[string]models.StatusEvent, len(o.History))
	for _, h := range o.History {
		reached[h.Status] = h
	}

	steps := make([]models.TrackingStep, 0, len(flow)+1)
	for _, status := range flow {
		h, ok := reached[status]
		if !ok && o.Status == models.OrderCancelled {
			continue
		}
		step := models.TrackingStep{Status: status, Label: StatusLabel(status), Reached: ok}
		if ok {
			at := h.At
			step.At = &at
		}
		steps = append(steps, step)
	}

	if h, ok := reached[models.OrderCancelled]; ok {
		at := h.At
		steps = append(steps, models.TrackingStep{
			Status:  models.OrderCancelled,
			Label:   StatusLabel(models.OrderCancelled),
			Reached: true,
			At:      &at,
		})
	}
	return steps
}
