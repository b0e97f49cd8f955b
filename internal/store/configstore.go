// Package store holds the persistence layers: Postgres for scraper and
// proxy configuration, Redis for job state and log streaming.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"propscout/internal/logging"
	"propscout/pkg/models"
	"propscout/pkg/utils"
)

// ErrConfigNotFound is returned when no scraper configuration exists for a
// domain.
var ErrConfigNotFound = errors.New("scraper config not found")

// ConfigStore persists per-domain scraper configurations and the shared
// proxy record in Postgres.
type ConfigStore struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewConfigStore creates and verifies a pgxpool connection pool.
func NewConfigStore(ctx context.Context, databaseURL string) (*ConfigStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return &ConfigStore{
		pool:   pool,
		logger: logging.GetGlobalLogger().WithField("component", "config_store"),
	}, nil
}

// Migrate creates the tables when they do not exist yet.
func (s *ConfigStore) Migrate(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS scraper_configs (
			domain                 TEXT PRIMARY KEY,
			name                   TEXT NOT NULL DEFAULT '',
			selectors              JSONB NOT NULL DEFAULT '{}',
			category_url           TEXT NOT NULL DEFAULT '',
			link_selector          TEXT NOT NULL DEFAULT '',
			delay_min              INT NOT NULL DEFAULT 0,
			delay_max              INT NOT NULL DEFAULT 0,
			auto_interval          INT NOT NULL DEFAULT 60,
			watcher_interval_hours INT NOT NULL DEFAULT 6,
			last_scraped_id        INT NOT NULL DEFAULT 1,
			is_active              BOOLEAN NOT NULL DEFAULT TRUE,
			created_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at             TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS proxy_config (
			id        INT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			host      TEXT NOT NULL DEFAULT '',
			port      INT NOT NULL DEFAULT 0,
			username  TEXT NOT NULL DEFAULT '',
			password  TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range ddl {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// GetConfig loads one scraper configuration by domain.
func (s *ConfigStore) GetConfig(ctx context.Context, domain string) (*models.ScraperConfig, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT domain, name, selectors, category_url, link_selector,
		       delay_min, delay_max, auto_interval, watcher_interval_hours,
		       last_scraped_id, is_active, created_at, updated_at
		FROM scraper_configs WHERE domain = $1`, domain)

	cfg, err := scanConfig(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	return cfg, nil
}

// ListConfigs returns every scraper configuration, active first.
func (s *ConfigStore) ListConfigs(ctx context.Context) ([]*models.ScraperConfig, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT domain, name, selectors, category_url, link_selector,
		       delay_min, delay_max, auto_interval, watcher_interval_hours,
		       last_scraped_id, is_active, created_at, updated_at
		FROM scraper_configs ORDER BY is_active DESC, domain`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*models.ScraperConfig
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

// UpsertConfig inserts or replaces a scraper configuration. The cursor is
// preserved on update unless the caller explicitly changed it.
func (s *ConfigStore) UpsertConfig(ctx context.Context, cfg *models.ScraperConfig) error {
	cfg.Normalize()

	selectors, err := json.Marshal(cfg.Selectors)
	if err != nil {
		return utils.NewConfigurationError("failed to encode selectors: " + err.Error())
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO scraper_configs
			(domain, name, selectors, category_url, link_selector,
			 delay_min, delay_max, auto_interval, watcher_interval_hours,
			 last_scraped_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (domain) DO UPDATE SET
			name = EXCLUDED.name,
			selectors = EXCLUDED.selectors,
			category_url = EXCLUDED.category_url,
			link_selector = EXCLUDED.link_selector,
			delay_min = EXCLUDED.delay_min,
			delay_max = EXCLUDED.delay_max,
			auto_interval = EXCLUDED.auto_interval,
			watcher_interval_hours = EXCLUDED.watcher_interval_hours,
			last_scraped_id = EXCLUDED.last_scraped_id,
			is_active = EXCLUDED.is_active,
			updated_at = now()`,
		cfg.Domain, cfg.Name, selectors, cfg.CategoryURL, cfg.LinkSelector,
		cfg.DelayMin, cfg.DelayMax, cfg.AutoInterval, cfg.WatcherIntervalHours,
		cfg.LastScrapedID, cfg.IsActive)
	if err != nil {
		return fmt.Errorf("failed to upsert scraper config: %w", err)
	}

	s.logger.Info("Scraper config saved", map[string]interface{}{"domain": cfg.Domain})
	return nil
}

// DeleteConfig removes a scraper configuration.
func (s *ConfigStore) DeleteConfig(ctx context.Context, domain string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM scraper_configs WHERE domain = $1`, domain)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConfigNotFound
	}
	return nil
}

// UpdateLastScrapedID moves the history-mode page cursor.
func (s *ConfigStore) UpdateLastScrapedID(ctx context.Context, domain string, page int) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE scraper_configs SET last_scraped_id = $2, updated_at = now()
		WHERE domain = $1`, domain, page)
	return err
}

// GetProxyConfig loads the shared proxy record. Returns nil without error
// when no proxy row exists.
func (s *ConfigStore) GetProxyConfig(ctx context.Context) (*models.ProxyConfig, error) {
	proxy := &models.ProxyConfig{}
	err := s.pool.QueryRow(ctx, `
		SELECT is_active, host, port, username, password FROM proxy_config WHERE id = 1`).
		Scan(&proxy.IsActive, &proxy.Host, &proxy.Port, &proxy.Username, &proxy.Password)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return proxy, nil
}

// UpsertProxyConfig replaces the shared proxy record.
func (s *ConfigStore) UpsertProxyConfig(ctx context.Context, proxy *models.ProxyConfig) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO proxy_config (id, is_active, host, port, username, password)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			is_active = EXCLUDED.is_active,
			host = EXCLUDED.host,
			port = EXCLUDED.port,
			username = EXCLUDED.username,
			password = EXCLUDED.password`,
		proxy.IsActive, proxy.Host, proxy.Port, proxy.Username, proxy.Password)
	return err
}

// Ping verifies the database connection.
func (s *ConfigStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *ConfigStore) Close() {
	s.pool.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConfig(row rowScanner) (*models.ScraperConfig, error) {
	var (
		cfg           models.ScraperConfig
		selectorsJSON []byte
		createdAt     time.Time
		updatedAt     time.Time
	)
	err := row.Scan(&cfg.Domain, &cfg.Name, &selectorsJSON, &cfg.CategoryURL,
		&cfg.LinkSelector, &cfg.DelayMin, &cfg.DelayMax, &cfg.AutoInterval,
		&cfg.WatcherIntervalHours, &cfg.LastScrapedID, &cfg.IsActive,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	cfg.CreatedAt = createdAt
	cfg.UpdatedAt = updatedAt

	if err := json.Unmarshal(selectorsJSON, &cfg.Selectors); err != nil {
		return nil, fmt.Errorf("failed to decode selectors for %s: %w", cfg.Domain, err)
	}
	cfg.Normalize()
	return &cfg, nil
}
