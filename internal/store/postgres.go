package store

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/rshade/carbon-dashboard/internal/carbon"
	"github.com/rshade/carbon-dashboard/internal/observability"
	"github.com/rshade/carbon-dashboard/internal/period"
)

//go:embed schema.sql
var schema string

// Postgres is a Store backed by a pgx connection pool.
type Postgres struct {
	pool   *pgxpool.Pool
	table  carbon.FactorTable
	logger zerolog.Logger
}

// NewPostgres constructs a Postgres store. Totals are recomputed with table
// on every save and every load.
func NewPostgres(pool *pgxpool.Pool, table carbon.FactorTable, logger zerolog.Logger) *Postgres {
	return &Postgres{
		pool:   pool,
		table:  table,
		logger: logger.With().Str("component", "store").Logger(),
	}
}

// Migrate creates the tables if they do not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// ActivityRecords loads and normalises the account's activity rows.
func (p *Postgres) ActivityRecords(ctx context.Context, accountID string) ([]carbon.ActivityRecord, error) {
	const query = `SELECT month, electricity_kw, diesel_litres, petrol_litres, gas_kwh, fuel_liters,
        refrigerant_kg, refrigerant_code, total_co2e
        FROM activity_records WHERE account_id=$1 ORDER BY created_at, month_key`

	rows, err := p.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("query activity records: %w", err)
	}
	defer rows.Close()

	out := []carbon.ActivityRecord{}
	for rows.Next() {
		var (
			row                                                 carbon.ActivityRow
			electricity, diesel, petrol, gas, fuel, refrig, tot float64
		)
		if err := rows.Scan(&row.Month, &electricity, &diesel, &petrol, &gas, &fuel, &refrig, &row.RefrigerantCode, &tot); err != nil {
			return nil, fmt.Errorf("scan activity record: %w", err)
		}
		row.ElectricityKw = carbon.Quantity(electricity)
		row.DieselLitres = carbon.Quantity(diesel)
		row.PetrolLitres = carbon.Quantity(petrol)
		row.GasKwh = carbon.Quantity(gas)
		row.FuelLiters = carbon.Quantity(fuel)
		row.RefrigerantKg = carbon.Quantity(refrig)
		row.TotalCo2e = carbon.Quantity(tot)
		out = append(out, p.table.NormalizeRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity records: %w", err)
	}
	return out, nil
}

// Scope3Records loads the account's Scope 3 rows.
func (p *Postgres) Scope3Records(ctx context.Context, accountID string) ([]carbon.Scope3Record, error) {
	const query = `SELECT month, category, label, data, co2e_kg
        FROM scope3_records WHERE account_id=$1 ORDER BY created_at, id`

	rows, err := p.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("query scope 3 records: %w", err)
	}
	defer rows.Close()

	out := []carbon.Scope3Record{}
	for rows.Next() {
		var (
			row  carbon.Scope3Row
			data []byte
			co2e float64
		)
		if err := rows.Scan(&row.Month, &row.Category, &row.Label, &data, &co2e); err != nil {
			return nil, fmt.Errorf("scan scope 3 record: %w", err)
		}
		if err := json.Unmarshal(data, &row.Data); err != nil {
			p.logger.Warn().Err(err).Str("account_id", accountID).Str("month", row.Month).
				Msg("scope 3 data is not valid JSON, treating activity as zero")
		}
		row.Co2eKg = carbon.Quantity(co2e)
		out = append(out, carbon.NormalizeScope3Row(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scope 3 records: %w", err)
	}
	return out, nil
}

// SaveActivity upserts the month's record, overwriting every column.
func (p *Postgres) SaveActivity(ctx context.Context, accountID string, row carbon.ActivityRow) (carbon.ActivityRecord, error) {
	rec := p.table.NormalizeRow(row)
	if rec.MonthLabel == "" {
		return carbon.ActivityRecord{}, fmt.Errorf("%w: month is required", ErrInvalidRecord)
	}

	const upsert = `INSERT INTO activity_records (account_id, month_key, month, electricity_kw, diesel_litres,
        petrol_litres, gas_kwh, fuel_liters, refrigerant_kg, refrigerant_code, total_co2e)
        VALUES ($1,$2,$3,$4,$5,$6,$7,0,$8,$9,$10)
        ON CONFLICT (account_id, month_key) DO UPDATE SET
            month=EXCLUDED.month,
            electricity_kw=EXCLUDED.electricity_kw,
            diesel_litres=EXCLUDED.diesel_litres,
            petrol_litres=EXCLUDED.petrol_litres,
            gas_kwh=EXCLUDED.gas_kwh,
            fuel_liters=0,
            refrigerant_kg=EXCLUDED.refrigerant_kg,
            refrigerant_code=EXCLUDED.refrigerant_code,
            total_co2e=EXCLUDED.total_co2e,
            updated_at=now()`

	_, err := p.pool.Exec(ctx, upsert,
		accountID,
		period.MonthKey(rec.MonthLabel),
		rec.MonthLabel,
		rec.ElectricityKwh,
		rec.DieselLitres,
		rec.PetrolLitres,
		rec.GasKwh,
		rec.RefrigerantKg,
		rec.RefrigerantCode,
		rec.TotalCo2eKg,
	)
	if err != nil {
		return carbon.ActivityRecord{}, fmt.Errorf("save activity record: %w", err)
	}
	observability.RecordActivityRecomputed()
	return rec, nil
}

// DeleteActivity removes the account's record for month.
func (p *Postgres) DeleteActivity(ctx context.Context, accountID, month string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM activity_records WHERE account_id=$1 AND month_key=$2`,
		accountID, period.MonthKey(month))
	if err != nil {
		return fmt.Errorf("delete activity record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveScope3 inserts a Scope 3 record.
func (p *Postgres) SaveScope3(ctx context.Context, accountID string, rec carbon.Scope3Record) (carbon.Scope3Record, error) {
	rec.Month = strings.TrimSpace(rec.Month)
	if rec.Month == "" {
		return carbon.Scope3Record{}, fmt.Errorf("%w: month is required", ErrInvalidRecord)
	}
	row := rec.Row()
	data, err := json.Marshal(row.Data)
	if err != nil {
		return carbon.Scope3Record{}, fmt.Errorf("encode scope 3 data: %w", err)
	}

	const insert = `INSERT INTO scope3_records (id, account_id, month, category, label, data, co2e_kg)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err = p.pool.Exec(ctx, insert, uuid.New(), accountID, row.Month, row.Category, row.Label, data, rec.Co2eKg)
	if err != nil {
		return carbon.Scope3Record{}, fmt.Errorf("save scope 3 record: %w", err)
	}
	return rec, nil
}

// Ping reports whether the database is reachable.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
