//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/rshade/carbon-dashboard/internal/carbon"
)

func newPostgres(t *testing.T) *Postgres {
	t.Helper()
	ctx := context.Background()

	pg, err := postgrescontainer.Run(ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("carbon"),
		postgrescontainer.WithUsername("carbon"),
		postgrescontainer.WithPassword("carbon"),
		postgrescontainer.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, waitForDatabase(ctx, pool))

	p := NewPostgres(pool, carbon.DefaultFactorTable(), zerolog.Nop())
	require.NoError(t, p.Migrate(ctx))
	require.NoError(t, p.Migrate(ctx), "schema is idempotent")
	return p
}

func waitForDatabase(ctx context.Context, pool *pgxpool.Pool) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		err := pool.Ping(ctx)
		if err == nil || time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}

func TestPostgres_ActivityRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := newPostgres(t)

	_, err := p.SaveActivity(ctx, "acct", carbon.ActivityRow{Month: "May 2024", ElectricityKw: 1000})
	require.NoError(t, err)
	_, err = p.SaveActivity(ctx, "acct", carbon.ActivityRow{Month: "2024-05", ElectricityKw: 1000, DieselLitres: 100})
	require.NoError(t, err)
	_, err = p.SaveActivity(ctx, "acct", carbon.ActivityRow{Month: "June 2024", FuelLiters: 10, RefrigerantKg: 1, RefrigerantCode: "r-410a"})
	require.NoError(t, err)
	_, err = p.SaveActivity(ctx, "other", carbon.ActivityRow{Month: "June 2024", ElectricityKw: 5})
	require.NoError(t, err)

	records, err := p.ActivityRecords(ctx, "acct")
	require.NoError(t, err)
	require.Len(t, records, 2)

	may := records[0]
	assert.Equal(t, "2024-05", may.MonthLabel)
	assert.InDelta(t, 467.0, may.TotalCo2eKg, tolerance)

	june := records[1]
	assert.Equal(t, 10.0, june.DieselLitres, "legacy fuel is folded into diesel")
	assert.Equal(t, carbon.RefrigerantR410A, june.RefrigerantCode)
	assert.InDelta(t, 10*carbon.DieselKgPerLitre+carbon.GWPR410A, june.TotalCo2eKg, tolerance)

	require.NoError(t, p.DeleteActivity(ctx, "acct", "May 2024"))
	assert.ErrorIs(t, p.DeleteActivity(ctx, "acct", "May 2024"), ErrNotFound)
}

func TestPostgres_Scope3RoundTrip(t *testing.T) {
	ctx := context.Background()
	p := newPostgres(t)

	rec := carbon.NewScope3Record("May 2024", carbon.Scope3BusinessTravel, "Flights", 1200, "km", 0.15)
	_, err := p.SaveScope3(ctx, "acct", rec)
	require.NoError(t, err)
	_, err = p.SaveScope3(ctx, "acct", carbon.NewScope3Record("June 2024", carbon.Scope3Waste, "", 10, "kg", 0.5))
	require.NoError(t, err)

	records, err := p.Scope3Records(ctx, "acct")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, rec, records[0])
	assert.Equal(t, "", records[1].Label)
}
