package utils

import "maeva_back_end/internal/models"

func statusEmailSubject(shop, status string) string {
	switch status {
	case models.OrderConfirmed:
		return "✅ Commande confirmée - " + shop
	case models.OrderShipped:
		return "📦 Votre commande a été expédiée - " + shop
	case models.OrderDelivered:
		return "🎉 Votre commande a été livrée - " + shop
	case models.OrderCancelled:
		return "❌ Commande annulée - " + shop
	default:
		return "📋 Mise à jour de votre commande - " + shop
	}
}

func statusMessage(status string) string {
	switch status {
	case models.OrderConfirmed:
		return "Votre commande a été confirmée et est en cours de préparation."
	case models.OrderShipped:
		return "Votre commande a été expédiée et est en route vers vous."
	case models.OrderDelivered:
		return "Votre commande a été livrée. Merci pour votre confiance !"
	case models.OrderCancelled:
		return "Votre commande a été annulée. Contactez-nous pour toute question."
	default:
		return "Le statut de votre commande a été mis à jour."
	}
}

func statusColor(status string) string {
	switch status {
	case models.OrderConfirmed:
		return "#10b981"
	case models.OrderShipped:
		return "#3b82f6"
	case models.OrderDelivered:
		return "#8b5cf6"
	case models.OrderCancelled:
		return "#ef4444"
	default:
		return "#6b7280"
	}
}
