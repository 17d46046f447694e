package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maeva_back_end/internal/cache"
	cartsvc "maeva_back_end/internal/cart"
	"maeva_back_end/internal/catalog"
	checkoutsvc "maeva_back_end/internal/checkout"
	"maeva_back_end/internal/config"
	"maeva_back_end/internal/coupon"
	"maeva_back_end/internal/database"
	"maeva_back_end/internal/events"
	"maeva_back_end/internal/handlers"
	"maeva_back_end/internal/handlers/admin"
	"maeva_back_end/internal/handlers/cart"
	"maeva_back_end/internal/handlers/checkout"
	"maeva_back_end/internal/handlers/order"
	"maeva_back_end/internal/handlers/payment"
	"maeva_back_end/internal/handlers/product"
	"maeva_back_end/internal/middleware"
	"maeva_back_end/internal/orders"
	paysvc "maeva_back_end/internal/payment"
	"maeva_back_end/internal/routes"
	"maeva_back_end/internal/shipping"
	"maeva_back_end/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const catalogCacheTTL = 10 * time.Minute

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("❌ Configuration invalide")
	}
	setupLogger(logger, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	health := map[string]handlers.Pinger{}

	// --- ScyllaDB ---
	productRepo := catalog.Repository(catalog.NewMemoryRepository())
	orderRepo := orders.Repository(orders.NewMemoryRepository())
	if len(cfg.Scylla.Hosts) > 0 {
		scylla := database.NewScyllaManager(cfg.Scylla, logger)
		if err := scylla.Connect(); err != nil {
			logger.WithError(err).Fatal("❌ Connexion ScyllaDB impossible")
		}
		defer scylla.Close()

		productsSession, err := scylla.ProductsSession()
		if err != nil {
			logger.WithError(err).Fatal("❌ Session ScyllaDB produits indisponible")
		}
		ordersSession, err := scylla.OrdersSession()
		if err != nil {
			logger.WithError(err).Fatal("❌ Session ScyllaDB commandes indisponible")
		}
		productRepo = catalog.NewScyllaRepository(productsSession)
		orderRepo = orders.NewScyllaRepository(ordersSession)
		health["scylla"] = func(context.Context) error {
			_, err := scylla.OrdersSession()
			return err
		}
	} else {
		logger.Warn("⚠️  SCYLLA_HOSTS vide : catalogue et commandes en mémoire")
	}

	// --- Redis ---
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = database.ConnectRedis(ctx, cfg.Redis, logger)
		if err != nil {
			logger.WithError(err).Fatal("❌ Connexion Redis impossible")
		}
		defer redisClient.Close()
		health["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	} else {
		logger.Warn("⚠️  REDIS_HOST vide : paniers, cache et idempotence en mémoire")
	}

	var (
		store      cache.Store
		counter    cache.Counter
		persister  cartsvc.Persister
		idem       orders.IdempotencyStore
		subscriber cart.Subscriber
	)
	if redisClient != nil {
		rc := cache.NewRedis(redisClient)
		store, counter = rc, rc
		persister = cartsvc.NewRedisPersister(redisClient)
		idem = orders.NewRedisIdempotency(redisClient, cfg.IdempotencyTTL)
		subscriber = cart.NewRedisSubscriber(redisClient)
	} else {
		mem := cache.NewMemory()
		store, counter = mem, mem
		persister = cartsvc.NewMemoryPersister()
		idem = orders.NewMemoryIdempotency()
	}

	// --- Elasticsearch & MinIO ---
	catalogOpts := catalog.Options{}
	if cfg.Elastic.URL != "" {
		es, err := database.ConnectElastic(cfg.Elastic, logger)
		if err != nil {
			logger.WithError(err).Fatal("❌ Connexion Elasticsearch impossible")
		}
		catalogOpts.Search = catalog.NewElasticSearcher(es, cfg.Elastic.Index, logger)
		health["elasticsearch"] = func(ctx context.Context) error {
			res, err := es.Ping(es.Ping.WithContext(ctx))
			if err != nil {
				return err
			}
			defer res.Body.Close()
			if res.IsError() {
				return errors.New(res.Status())
			}
			return nil
		}
	}
	if cfg.MinIO.Endpoint != "" {
		mc, err := database.ConnectMinIO(ctx, cfg.MinIO, logger)
		if err != nil {
			logger.WithError(err).Fatal("❌ Connexion MinIO impossible")
		}
		catalogOpts.Images = catalog.NewMinIOImages(mc, cfg.MinIO.Bucket, cfg.MinIO.PresignTTL)
	}

	// --- Kafka ---
	var publisher events.Publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := events.NewKafkaProducer(cfg.KafkaBrokers, logger)
		if err != nil {
			logger.WithError(err).Fatal("❌ Connexion Kafka impossible")
		}
		publisher = kp
	}
	defer publisher.Close()

	// --- E-mails ---
	var notifier orders.Notifier
	if cfg.SMTP.Host != "" {
		invoices := utils.NewChromeInvoices(cfg.ShopName, cfg.FrontendURL, logger)
		mailer, err := utils.NewMailer(cfg.SMTP, cfg.ShopName, cfg.FrontendURL, invoices, logger)
		if err != nil {
			logger.WithError(err).Fatal("❌ Client SMTP invalide")
		}
		notifier = mailer
	} else {
		logger.Warn("⚠️  SMTP_HOST vide : aucun e-mail ne sera envoyé")
	}

	// --- Services ---
	ship := shipping.NewCatalog()
	coupons := coupon.NewStatic(cfg.Coupons)
	orderSvc := orders.NewService(orderRepo, idem, logger, orders.Options{
		Publisher: publisher,
		Notifier:  notifier,
		Shipping:  ship,
		Coupons:   coupons,
	})
	carts := cartsvc.NewService(persister, cartsvc.Options{
		TTL:         cfg.Cart.TTL,
		EmptyPolicy: cfg.Cart.EmptyPolicy,
	}, logger)
	catalogSvc := catalog.NewService(productRepo, cache.NewJSON(store, catalogCacheTTL, logger), logger, catalogOpts)

	deps := checkoutsvc.Deps{
		Carts:    carts,
		Store:    persister,
		Shipping: ship,
		Coupons:  coupons,
		Orders:   orderSvc,
		Logger:   logger,
	}
	if cfg.OrdersBaseURL != "" {
		deps.Orders = orders.NewClient(cfg.OrdersBaseURL, cfg.OrdersTimeout, logger)
		logger.WithField("url", cfg.OrdersBaseURL).Info("🔗 Commandes transmises au service distant")
	}

	h := routes.Handlers{
		Cart:    cart.NewHandler(carts, catalogSvc, cfg.Cart.MaxQuantity, subscriber, cfg.AllowedOrigins, logger),
		Order:   order.NewHandler(orderSvc, logger),
		Product: product.NewHandler(catalogSvc, logger),
		Admin:   admin.NewHandler(cfg.JWTSecret, cfg.AdminEmail, cfg.AdminPasswordHash, logger),
	}
	if cfg.StripeSecretKey != "" {
		payments := paysvc.NewService(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.Currency, logger)
		deps.Payments = payments
		h.Payment = payment.NewHandler(payments, orderSvc, logger)
		logger.Info("✅ Stripe initialisé")
	} else {
		logger.Warn("⚠️  STRIPE_SECRET_KEY vide : paiement à la livraison uniquement")
	}
	h.Checkout = checkout.NewHandler(checkoutsvc.NewService(deps), ship, coupons, logger)

	// --- HTTP ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(reg)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger), metrics.Handler())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", checkout.IdempotencyHeader},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, h, routes.Options{
		Sessions:  middleware.NewSessionStore(sessionSecret(cfg, logger), cfg.SessionSecure, int(cfg.Cart.TTL.Seconds())),
		Counter:   counter,
		JWTSecret: cfg.JWTSecret,
		Gatherer:  reg,
		Health:    health,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("🚀 Serveur MAEVA lancé")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("❌ Le serveur HTTP s'est arrêté")
		}
	}()

	<-ctx.Done()
	logger.Info("🛑 Arrêt demandé, fermeture des connexions")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("❌ Arrêt du serveur incomplet")
	}
}

func setupLogger(logger *logrus.Logger, cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithField("level", cfg.LogLevel).Warn("⚠️  LOG_LEVEL inconnu, niveau info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetOutput(os.Stdout)
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// sessionSecret refuse un secret vide en production ; ailleurs un secret
// aléatoire est tiré à chaque démarrage.
func sessionSecret(cfg *config.Config, logger *logrus.Logger) string {
	if cfg.SessionSecret != "" {
		return cfg.SessionSecret
	}
	if cfg.IsProduction() {
		logger.Fatal("❌ SESSION_SECRET manquant")
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		logger.WithError(err).Fatal("❌ Génération du secret de session impossible")
	}
	logger.Warn("⚠️  SESSION_SECRET vide : secret temporaire, les paniers seront perdus au redémarrage")
	return hex.EncodeToString(buf)
}
