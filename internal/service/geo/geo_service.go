// Package geo 提供省市目录（哥伦比亚省与城市）
package geo

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/cache"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/metrics"
)

// Department 省及其城市
type Department struct {
	ID     int      `json:"id"`
	Name   string   `json:"departamento"`
	Cities []string `json:"ciudades"`
}

// Service 地理目录服务
type Service struct {
	client    *http.Client
	cache     *cache.Cache
	sourceURL string
	ttl       time.Duration
}

// NewService 创建地理目录服务
func NewService(cfg *config.GeographyConfig, c *cache.Cache) *Service {
	ttl := time.Duration(cfg.CacheTTL) * time.Second
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		client:    &http.Client{Timeout: timeout},
		cache:     c,
		sourceURL: cfg.SourceURL,
		ttl:       ttl,
	}
}

func cacheKey() string {
	return cache.BuildKey(cache.KeyPrefixGeography, "departments")
}

// Departments 获取省市目录，优先读缓存
func (s *Service) Departments(ctx context.Context) ([]Department, error) {
	var cached []Department
	err := s.cache.GetJSON(ctx, cacheKey(), &cached)
	if err == nil {
		metrics.GetMetrics().RecordCacheHit("geography")
		return cached, nil
	}
	if !stderrors.Is(err, cache.ErrMiss) {
		logger.Warn("geography cache read failed", logger.Err(err))
	}
	metrics.GetMetrics().RecordCacheMiss("geography")

	departments, err := s.fetch(ctx)
	if err != nil {
		logger.Error("获取省市目录失败", logger.Module("geo"), logger.Err(err))
		return nil, errors.ErrExternalService.WithMessage("No se pudo obtener el catálogo de departamentos").WithError(err)
	}

	if err := s.cache.SetJSON(ctx, cacheKey(), departments, s.ttl); err != nil {
		logger.Warn("geography cache write failed", logger.Err(err))
	}
	return departments, nil
}

// Cities 某省的城市列表，省名不区分大小写
func (s *Service) Cities(ctx context.Context, department string) ([]string, error) {
	departments, err := s.Departments(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range departments {
		if strings.EqualFold(d.Name, strings.TrimSpace(department)) {
			return d.Cities, nil
		}
	}
	return nil, errors.ErrNotFound.WithMessage("Departamento no encontrado")
}

func (s *Service) fetch(ctx context.Context) ([]Department, error) {
	if s.sourceURL == "" {
		return nil, fmt.Errorf("geography source url not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.sourceURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var departments []Department
	if err := json.NewDecoder(resp.Body).Decode(&departments); err != nil {
		return nil, fmt.Errorf("decode geography: %w", err)
	}
	sort.SliceStable(departments, func(i, j int) bool {
		return departments[i].Name < departments[j].Name
	})
	return departments, nil
}
