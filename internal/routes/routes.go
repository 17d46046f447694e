package routes

import (
	"maeva_back_end/internal/cache"
	"maeva_back_end/internal/handlers"
	"maeva_back_end/internal/handlers/admin"
	"maeva_back_end/internal/handlers/cart"
	"maeva_back_end/internal/handlers/checkout"
	"maeva_back_end/internal/handlers/order"
	"maeva_back_end/internal/handlers/payment"
	"maeva_back_end/internal/handlers/product"
	"maeva_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Handlers regroupe les handlers de chaque domaine ; Payment est nil sans Stripe.
type Handlers struct {
	Cart     *cart.Handler
	Checkout *checkout.Handler
	Order    *order.Handler
	Product  *product.Handler
	Admin    *admin.Handler
	Payment  *payment.Handler
}

type Options struct {
	Sessions  sessions.Store
	Counter   cache.Counter
	JWTSecret string
	Gatherer  prometheus.Gatherer
	Health    map[string]handlers.Pinger
	Logger    *logrus.Logger
}

func RegisterRoutes(r *gin.Engine, h Handlers, opts Options) {
	log := opts.Logger

	r.GET("/health", handlers.Health(opts.Health))
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")

	// Catalogue
	api.GET("/products", middleware.SearchRateLimit(opts.Counter, log), h.Product.GetProducts)
	api.GET("/collection", h.Product.GetCollections)
	api.GET("/blog", h.Product.GetBlog)
	api.GET("/reviews", h.Product.GetReviews)
	api.POST("/reviews", h.Product.CreateReview)

	// Livraison, codes promo, commandes
	api.GET("/shipping/options", h.Checkout.ShippingOptions)
	api.GET("/coupons/validate", h.Checkout.ValidateCoupon)
	api.POST("/orders", h.Order.CreateOrder)
	api.GET("/orders/track/:code", h.Order.TrackOrder)

	// Panier et checkout : session anonyme
	shop := api.Group("", middleware.Session(opts.Sessions, log))
	{
		carts := shop.Group("/cart")
		carts.GET("", h.Cart.GetCart)
		carts.GET("/ws", h.Cart.WebSocket)

		limited := carts.Group("", middleware.CartRateLimit(opts.Counter, log))
		limited.POST("/items", h.Cart.AddItem)
		limited.PATCH("/items", h.Cart.UpdateItem)
		limited.DELETE("/items", h.Cart.RemoveItem)
		limited.DELETE("", h.Cart.ClearCart)

		shop.POST("/checkout", h.Checkout.Checkout)
		shop.GET("/checkout/last-order", h.Checkout.LastOrder)
	}

	if h.Payment != nil {
		api.POST("/webhooks/stripe", h.Payment.StripeWebhook)
	}

	// Administration
	api.POST("/admin/login", middleware.LoginRateLimit(opts.Counter, log), h.Admin.Login)

	adminAPI := api.Group("/admin", middleware.AuthRequired(opts.JWTSecret, log), middleware.RequireAdmin)
	{
		adminAPI.POST("/products", h.Product.CreateProduct)
		adminAPI.PUT("/products/:id", h.Product.UpdateProduct)
		adminAPI.DELETE("/products/:id", h.Product.DeleteProduct)
		adminAPI.POST("/products/:id/images", h.Product.UploadProductImage)

		adminAPI.POST("/collections", h.Product.CreateCollection)
		adminAPI.PUT("/collections/:id", h.Product.UpdateCollection)
		adminAPI.DELETE("/collections/:id", h.Product.DeleteCollection)

		adminAPI.PATCH("/orders/:code/status", h.Order.UpdateStatus)
	}
}
