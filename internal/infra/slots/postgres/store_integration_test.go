//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"havenlist/internal/infra/slots/slottest"
	"havenlist/pkg/domain"
)

func TestContractAgainstPostgres(t *testing.T) {
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("havenlist"),
		tcpostgres.WithUsername("havenlist"),
		tcpostgres.WithPassword("havenlist"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	s, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	slottest.Run(t, s)

	// a second store on the same database finds the schema already applied
	again, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	defer func() { _ = again.Close() }()
	payload, found, err := again.Get(ctx, domain.SlotVisits)
	require.NoError(t, err)
	require.True(t, found)
	require.JSONEq(t, `[{"id":"v1","homeId":"3","status":"pending"}]`, string(payload))
}
