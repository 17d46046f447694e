package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"maeva_back_end/internal/config"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// =============================================
// SCYLLA DB (une session par keyspace)
// =============================================

type ScyllaManager struct {
	cfg      config.ScyllaConfig
	sessions map[string]*gocql.Session // keyspace → session
	mu       sync.Mutex
	logger   *logrus.Logger
}

func NewScyllaManager(cfg config.ScyllaConfig, logger *logrus.Logger) *ScyllaManager {
	return &ScyllaManager{
		cfg:      cfg,
		sessions: make(map[string]*gocql.Session),
		logger:   logger,
	}
}

// Connect ouvre les sessions des keyspaces produits et commandes.
// Les tables sont créées par scripts/scylladb_init.cql.
func (sm *ScyllaManager) Connect() error {
	for _, ks := range []string{sm.cfg.ProductsKeyspace, sm.cfg.OrdersKeyspace} {
		if _, err := sm.Session(ks); err != nil {
			return fmt.Errorf("échec initialisation keyspace %s: %w", ks, err)
		}
	}
	return nil
}

func (sm *ScyllaManager) cluster(keyspace string) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(sm.cfg.Hosts...)
	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = sm.cfg.Timeout
	cluster.NumConns = sm.cfg.NumConns
	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = 1 * time.Second

	if sm.cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: sm.cfg.Username,
			Password: sm.cfg.Password,
		}
	}
	if sm.cfg.SSLEnabled {
		cluster.SslOpts = &gocql.SslOptions{
			CaPath:                 sm.cfg.CACertPath,
			EnableHostVerification: sm.cfg.CACertPath != "",
		}
	}

	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	return cluster
}

// Session retourne la session d'un keyspace, recréée si elle ne répond plus.
func (sm *ScyllaManager) Session(keyspace string) (*gocql.Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if session, ok := sm.sessions[keyspace]; ok {
		if err := session.Query("SELECT now() FROM system.local").Exec(); err == nil {
			return session, nil
		}
		session.Close()
		delete(sm.sessions, keyspace)
	}

	session, err := sm.cluster(keyspace).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("erreur création session pour %s: %w", keyspace, err)
	}

	sm.sessions[keyspace] = session
	sm.logger.WithFields(logrus.Fields{
		"keyspace": keyspace,
		"user":     sm.cfg.Username,
	}).Info("✅ Nouvelle session ScyllaDB")
	return session, nil
}

func (sm *ScyllaManager) ProductsSession() (*gocql.Session, error) {
	return sm.Session(sm.cfg.ProductsKeyspace)
}

func (sm *ScyllaManager) OrdersSession() (*gocql.Session, error) {
	return sm.Session(sm.cfg.OrdersKeyspace)
}

func (sm *ScyllaManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for keyspace, session := range sm.sessions {
		session.Close()
		sm.logger.WithField("keyspace", keyspace).Info("🔌 Session ScyllaDB fermée")
	}
	sm.sessions = make(map[string]*gocql.Session)
}

// =============================================
// REDIS
// =============================================

func ConnectRedis(ctx context.Context, cfg config.RedisConfig, logger *logrus.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("impossible de se connecter à Redis: %w", err)
	}
	logger.WithField("addr", cfg.Addr).Info("✅ Connecté à Redis")
	return client, nil
}

// =============================================
// ELASTICSEARCH
// =============================================

func ConnectElastic(cfg config.ElasticConfig, logger *logrus.Logger) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("erreur création client Elasticsearch: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("erreur connexion Elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch a répondu %s", res.Status())
	}

	logger.WithField("url", cfg.URL).Info("✅ Connecté à Elasticsearch")
	return client, nil
}

// =============================================
// MINIO
// =============================================

// ConnectMinIO se connecte et crée le bucket des images s'il n'existe pas.
func ConnectMinIO(ctx context.Context, cfg config.MinIOConfig, logger *logrus.Logger) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("erreur connexion MinIO: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("erreur vérification bucket MinIO: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("erreur création bucket MinIO: %w", err)
		}
		logger.WithField("bucket", cfg.Bucket).Info("🪣 Bucket créé")
	}

	logger.WithField("endpoint", cfg.Endpoint).Info("✅ Connecté à MinIO")
	return client, nil
}
