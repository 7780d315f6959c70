package tenant_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantguard/pkg/logger"
	"github.com/dmitrymomot/tenantguard/pkg/tenant"
)

func TestContext(t *testing.T) {
	t.Parallel()

	_, ok := tenant.FromContext(context.Background())
	assert.False(t, ok)
	_, ok = tenant.IDFromContext(context.Background())
	assert.False(t, ok)

	src := *acme()
	ctx := tenant.WithTenant(context.Background(), src)
	src.Name = "mutated"

	got, ok := tenant.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "Acme Escola", got.Name)

	got.Name = "again"
	again, _ := tenant.FromContext(ctx)
	assert.Equal(t, "Acme Escola", again.Name)

	id, ok := tenant.IDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "t1", id)
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithContextExtractors(tenant.LoggerExtractor()))

	log.InfoContext(context.Background(), "no tenant")
	assert.NotContains(t, buf.String(), "tenant_id")

	buf.Reset()
	log.InfoContext(tenant.WithTenant(context.Background(), *acme()), "with tenant")
	assert.Contains(t, buf.String(), `"tenant_id":"t1"`)
}
