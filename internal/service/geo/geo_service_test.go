package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/cache"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/testutil"
)

const payload = `[
  {"id": 1, "departamento": "Santander", "ciudades": ["Bucaramanga", "San Gil"]},
  {"id": 0, "departamento": "Antioquia", "ciudades": ["Medellín", "Envigado"]}
]`

func newSource(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDepartments_CachesInRedis(t *testing.T) {
	var hits int32
	srv := newSource(t, &hits)
	c, mr := testutil.NewCache(t)
	svc := NewService(&config.GeographyConfig{SourceURL: srv.URL}, c)
	ctx := context.Background()

	departments, err := svc.Departments(ctx)
	require.NoError(t, err)
	require.Len(t, departments, 2)
	assert.Equal(t, "Antioquia", departments[0].Name)

	_, err = svc.Departments(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.True(t, mr.Exists(cacheKey()))
	assert.Equal(t, 24*60*60, int(mr.TTL(cacheKey()).Seconds()))

	cities, err := svc.Cities(ctx, "santander")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bucaramanga", "San Gil"}, cities)

	_, err = svc.Cities(ctx, "Atlántico")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestDepartments_WithoutCache(t *testing.T) {
	var hits int32
	srv := newSource(t, &hits)
	svc := NewService(&config.GeographyConfig{SourceURL: srv.URL}, cache.New(nil))

	_, err := svc.Departments(context.Background())
	require.NoError(t, err)
	_, err = svc.Departments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestDepartments_SourceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	c, _ := testutil.NewCache(t)

	svc := NewService(&config.GeographyConfig{SourceURL: srv.URL}, c)
	_, err := svc.Departments(context.Background())
	assert.ErrorIs(t, err, errors.ErrExternalService)

	svc = NewService(&config.GeographyConfig{}, c)
	_, err = svc.Departments(context.Background())
	assert.ErrorIs(t, err, errors.ErrExternalService)
}
