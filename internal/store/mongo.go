package store

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	gerr "github.com/jekabolt/grbpwr-analytics/internal/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Config defines configurations to connect database
type Config struct {
	URI                  string        `mapstructure:"uri"`
	Database             string        `mapstructure:"database"`
	OrdersCollection     string        `mapstructure:"orders_collection"`
	ProductsCollection   string        `mapstructure:"products_collection"`
	CategoriesCollection string        `mapstructure:"categories_collection"`
	ConnectTimeout       time.Duration `mapstructure:"connect_timeout"`
	MaxPoolSize          uint64        `mapstructure:"max_pool_size"`
	TLSCAPath            string        `mapstructure:"tls_ca_path"`
}

func (c *Config) withDefaults() Config {
	cfg := *c
	if cfg.OrdersCollection == "" {
		cfg.OrdersCollection = "orders"
	}
	if cfg.ProductsCollection == "" {
		cfg.ProductsCollection = "products"
	}
	if cfg.CategoriesCollection == "" {
		cfg.CategoriesCollection = "categories"
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	return cfg
}

// MongoStore implements the repository contracts on top of a MongoDB database.
type MongoStore struct {
	client     *mongo.Client
	orders     *mongo.Collection
	products   *mongo.Collection
	categories *mongo.Collection
}

var _ dependency.Repository = (*MongoStore)(nil)

// resolveCertPath resolves @certs paths to the config/certs directory
func resolveCertPath(path string) string {
	if !strings.HasPrefix(path, "@certs/") {
		return path
	}
	configPaths := []string{
		"./config/certs",
		"$HOME/config/grbpwr-analytics/certs",
		"/etc/grbpwr-analytics/certs",
	}
	certFile := strings.TrimPrefix(path, "@certs/")
	for _, basePath := range configPaths {
		fullPath := filepath.Join(os.ExpandEnv(basePath), certFile)
		if _, err := os.Stat(fullPath); err == nil {
			return fullPath
		}
	}
	return filepath.Join("./config/certs", certFile)
}

// tlsConfig returns nil when no CA is configured.
// The mongo.CA_CERT environment variable takes priority over TLSCAPath.
func tlsConfig(cfg Config) (*tls.Config, error) {
	var caCert []byte
	if env := os.Getenv("mongo.CA_CERT"); env != "" {
		caCert = []byte(env)
		slog.Default().Info("using CA certificate from mongo.CA_CERT environment variable")
	} else if cfg.TLSCAPath != "" {
		certPath := resolveCertPath(cfg.TLSCAPath)
		b, err := os.ReadFile(certPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate from %s: %w", certPath, err)
		}
		caCert = b
		slog.Default().Info("using CA certificate from file", "path", certPath)
	} else {
		return nil, nil
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse CA certificate")
	}
	return &tls.Config{RootCAs: pool}, nil
}

// New connects to the database and returns a new MongoStore object.
func New(ctx context.Context, c Config) (*MongoStore, error) {
	cfg := c.withDefaults()
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo uri is empty")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongo database is empty")
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	tc, err := tlsConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS config: %w", err)
	}
	if tc != nil {
		opts.SetTLSConfig(tc)
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("couldn't connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(cfg.Database)
	slog.Default().InfoContext(ctx, "connected to mongo",
		slog.String("database", cfg.Database),
	)
	return &MongoStore{
		client:     client,
		orders:     db.Collection(cfg.OrdersCollection),
		products:   db.Collection(cfg.ProductsCollection),
		categories: db.Collection(cfg.CategoriesCollection),
	}, nil
}

func (ms *MongoStore) Orders() dependency.Orders         { return &orderStore{ms} }
func (ms *MongoStore) Products() dependency.Products     { return &productStore{ms} }
func (ms *MongoStore) Categories() dependency.Categories { return &categoryStore{ms} }

// Ping checks the primary is reachable.
func (ms *MongoStore) Ping(ctx context.Context) error {
	if err := ms.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %v", gerr.ErrStoreUnavailable, err)
	}
	return nil
}

// Close disconnects the client.
func (ms *MongoStore) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ms.client.Disconnect(ctx); err != nil {
		slog.Default().ErrorContext(ctx, "can't disconnect from mongo", slog.String("err", err.Error()))
	}
}
