package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rshade/carbon-dashboard/internal/carbon"
	"github.com/rshade/carbon-dashboard/internal/observability"
	"github.com/rshade/carbon-dashboard/internal/period"
)

type accountData struct {
	activity []carbon.ActivityRecord
	scope3   []carbon.Scope3Record
}

// Memory is an in-process Store for tests and local runs.
type Memory struct {
	table carbon.FactorTable

	mu       sync.RWMutex
	accounts map[string]*accountData
}

// NewMemory returns an empty Memory store that recomputes totals with table.
func NewMemory(table carbon.FactorTable) *Memory {
	return &Memory{table: table, accounts: make(map[string]*accountData)}
}

// ActivityRecords returns copies of the account's activity records in save order.
func (m *Memory) ActivityRecords(_ context.Context, accountID string) ([]carbon.ActivityRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.accounts[accountID]
	if !ok {
		return []carbon.ActivityRecord{}, nil
	}
	return append([]carbon.ActivityRecord{}, d.activity...), nil
}

// Scope3Records returns copies of the account's Scope 3 records in save order.
func (m *Memory) Scope3Records(_ context.Context, accountID string) ([]carbon.Scope3Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.accounts[accountID]
	if !ok {
		return []carbon.Scope3Record{}, nil
	}
	return append([]carbon.Scope3Record{}, d.scope3...), nil
}

// SaveActivity normalises row and replaces any record for the same month.
func (m *Memory) SaveActivity(_ context.Context, accountID string, row carbon.ActivityRow) (carbon.ActivityRecord, error) {
	rec := m.table.NormalizeRow(row)
	if rec.MonthLabel == "" {
		return carbon.ActivityRecord{}, fmt.Errorf("%w: month is required", ErrInvalidRecord)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.account(accountID)
	for i, existing := range d.activity {
		if period.SameMonth(existing.MonthLabel, rec.MonthLabel) {
			d.activity[i] = rec
			observability.RecordActivityRecomputed()
			return rec, nil
		}
	}
	d.activity = append(d.activity, rec)
	observability.RecordActivityRecomputed()
	return rec, nil
}

// DeleteActivity removes the account's record for month.
func (m *Memory) DeleteActivity(_ context.Context, accountID, month string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	for i, existing := range d.activity {
		if period.SameMonth(existing.MonthLabel, month) {
			d.activity = append(d.activity[:i], d.activity[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// SaveScope3 appends a Scope 3 record.
func (m *Memory) SaveScope3(_ context.Context, accountID string, rec carbon.Scope3Record) (carbon.Scope3Record, error) {
	rec.Month = strings.TrimSpace(rec.Month)
	if rec.Month == "" {
		return carbon.Scope3Record{}, fmt.Errorf("%w: month is required", ErrInvalidRecord)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.account(accountID)
	d.scope3 = append(d.scope3, rec)
	return rec, nil
}

func (m *Memory) account(accountID string) *accountData {
	d, ok := m.accounts[accountID]
	if !ok {
		d = &accountData{}
		m.accounts[accountID] = d
	}
	return d
}
