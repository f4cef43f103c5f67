package database

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gripinvest/config"

	"github.com/glebarez/sqlite"
	mysqldriver "github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the configured database with pooling and retry. The returned
// handle is meant to be passed explicitly to every component that needs it.
func Connect(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	// GORM logger: verbose in development
	var gormLogger logger.Interface
	if cfg.IsDevelopment() {
		gormLogger = logger.Default.LogMode(logger.Info)
	} else {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	// Retry connection with exponential backoff
	retries := cfg.DB.ConnectRetries
	if retries <= 0 {
		retries = 1
	}
	var db *gorm.DB
	backoff := time.Second
	for attempt := 1; attempt <= retries; attempt++ {
		db, err = gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
		if err == nil {
			break
		}
		log.Warn("database connect failed", slog.Int("attempt", attempt), slog.String("error", err.Error()))
		if attempt < retries {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(cfg.DB.Driver, "sqlite") {
		// a single writer keeps SQLite transactions serialized
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.DB.ConnMaxLifetime) * time.Second)
	}

	if err := Ping(context.Background(), db, 5*time.Second); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return db, nil
}

func dialectorFor(cfg config.DBConfig, log *slog.Logger) (gorm.Dialector, error) {
	if strings.EqualFold(cfg.Driver, "sqlite") {
		dsn := cfg.DSN
		if dsn == "" {
			dsn = cfg.Name + ".db"
		}
		log.Info("using sqlite database", slog.String("dsn", dsn))
		return sqlite.Open(dsn), nil
	}

	dsn := cfg.DSN
	if dsn == "" {
		params := cfg.Params
		if !strings.Contains(params, "tls=") {
			switch strings.ToLower(cfg.TLS) {
			case "verify":
				if err := registerTLS(cfg.TLSCAPath); err != nil {
					return nil, err
				}
				params += "&tls=custom"
			case "true", "preferred":
				params += "&tls=" + strings.ToLower(cfg.TLS)
			}
		}
		for _, p := range []string{"timeout=10s", "readTimeout=10s", "writeTimeout=10s"} {
			key := p[:strings.Index(p, "=")+1]
			if !strings.Contains(params, key) {
				params += "&" + p
			}
		}
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", cfg.User, cfg.Pass, cfg.Host, cfg.Port, cfg.Name, params)
	}

	safeDSN := dsn
	if cfg.Pass != "" {
		safeDSN = strings.Replace(safeDSN, cfg.Pass, "******", 1)
	}
	log.Info("using mysql database", slog.String("dsn", safeDSN))
	return gormmysql.Open(dsn), nil
}

// registerTLS registers a "custom" TLS config with the MySQL driver for strict
// certificate validation against the given CA bundle.
func registerTLS(caPath string) error {
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caPath != "" {
		caCert, err := os.ReadFile(caPath)
		if err != nil {
			return fmt.Errorf("failed reading DB TLS CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return errors.New("failed to append CA certs")
		}
		tlsCfg.RootCAs = pool
	}
	return mysqldriver.RegisterTLSConfig("custom", tlsCfg)
}

// Ping checks connectivity within the given timeout.
func Ping(ctx context.Context, db *gorm.DB, timeout time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
