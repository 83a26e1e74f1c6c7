package oss

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Put(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	url, err := store.Put(ctx, "payments/2026/10/pagos-2026-10-18.csv", "text/csv", strings.NewReader("id,monto\n1,80000\n"))
	require.NoError(t, err)
	assert.Equal(t, "memory://payments/2026/10/pagos-2026-10-18.csv", url)

	data, ok := store.Get("payments/2026/10/pagos-2026-10-18.csv")
	require.True(t, ok)
	assert.Equal(t, "id,monto\n1,80000\n", string(data))
	assert.Equal(t, "text/csv", store.Types["payments/2026/10/pagos-2026-10-18.csv"])

	signed, err := store.SignedURL("x.csv", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, signed, "expires=3600")
}

func TestReportKey(t *testing.T) {
	day := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "payments/2026/10/pagos-2026-10-18.csv", ReportKey("payments", day))
	assert.Equal(t, "history/2026/10/historial-2026-10-18.csv", ReportKey("history", day))
}

func TestFullKey(t *testing.T) {
	tests := []struct {
		base, key, want string
	}{
		{"", "a.csv", "a.csv"},
		{"reports", "a.csv", "reports/a.csv"},
		{"reports/", "payments/a.csv", "reports/payments/a.csv"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FullKey(tt.base, tt.key))
	}
}
