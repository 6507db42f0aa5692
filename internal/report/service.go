package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rshade/carbon-dashboard/internal/auth"
	"github.com/rshade/carbon-dashboard/internal/carbon"
	"github.com/rshade/carbon-dashboard/internal/observability"
	"github.com/rshade/carbon-dashboard/internal/period"
	"github.com/rshade/carbon-dashboard/internal/share"
	"github.com/rshade/carbon-dashboard/internal/store"
)

// DefaultNarrativeTimeout bounds how long Build waits for a narrator.
const DefaultNarrativeTimeout = 8 * time.Second

// Narrator turns a prompt into raw model text.
type Narrator interface {
	Narrate(ctx context.Context, prompt string) (string, error)
}

// Service builds reports for an account.
type Service struct {
	source           store.Source
	aggregator       period.Aggregator
	narrator         Narrator
	narrativeTimeout time.Duration
	now              func() time.Time
	logger           zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithNarrator attaches a narrator. Without one, reports carry no AI narrative.
func WithNarrator(n Narrator, timeout time.Duration) Option {
	return func(s *Service) {
		s.narrator = n
		if timeout > 0 {
			s.narrativeTimeout = timeout
		}
	}
}

// WithClock overrides the time source used for GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithFactors overrides the factor table and share precision.
func WithFactors(table carbon.FactorTable, precision int) Option {
	return func(s *Service) { s.aggregator = period.NewAggregator(table, precision) }
}

// NewService constructs a Service reading from source.
func NewService(source store.Source, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		source:           source,
		aggregator:       period.NewAggregator(carbon.DefaultFactorTable(), share.DefaultPrecision),
		narrativeTimeout: DefaultNarrativeTimeout,
		now:              func() time.Time { return time.Now().UTC() },
		logger:           logger.With().Str("component", "report").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarise loads the account's records and aggregates them for sel.
func (s *Service) Summarise(ctx context.Context, account auth.Account, sel period.Selector) (period.Summary, error) {
	records, err := s.source.ActivityRecords(ctx, account.ID)
	if err != nil {
		return period.Summary{}, fmt.Errorf("load activity records: %w", err)
	}
	scope3, err := s.source.Scope3Records(ctx, account.ID)
	if err != nil {
		return period.Summary{}, fmt.Errorf("load scope 3 records: %w", err)
	}
	return s.aggregator.Aggregate(records, scope3, sel), nil
}

// Build assembles the account's report for sel. A failing or slow narrator
// never fails the report; AINarrative is left nil instead.
func (s *Service) Build(ctx context.Context, account auth.Account, sel period.Selector) (Report, error) {
	start := time.Now()

	summary, err := s.Summarise(ctx, account, sel)
	if err != nil {
		return Report{}, err
	}
	if summary.RangeFallback {
		observability.RecordRangeFallback()
		s.logger.Info().Str("account_id", account.ID).Str("start", sel.Start).Str("end", sel.End).
			Msg("custom range not found, report covers all months")
	}

	r := Assemble(summary, Options{GeneratedAt: s.now()})
	r.AINarrative = s.narrate(ctx, account, r)

	observability.RecordReportBuilt(sel.Kind.String(), time.Since(start))
	s.logger.Debug().
		Str("account_id", account.ID).
		Str("report_id", r.ID.String()).
		Str("period", r.PeriodLabel).
		Int("months", len(r.Months)).
		Float64("total_co2e_kg", r.Totals.TotalCo2eKg).
		Msg("report built")
	return r, nil
}

func (s *Service) narrate(ctx context.Context, account auth.Account, r Report) *Narrative {
	if s.narrator == nil {
		return nil
	}
	if len(r.Months) == 0 {
		observability.RecordNarrativeFallback("no_data")
		return nil
	}

	prompt, err := Prompt(r)
	if err != nil {
		s.logger.Warn().Err(err).Str("account_id", account.ID).Msg("could not build narrative prompt")
		observability.RecordNarrativeFallback("prompt")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.narrativeTimeout)
	defer cancel()
	raw, err := s.narrator.Narrate(ctx, prompt)
	if err != nil {
		reason := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		s.logger.Warn().Err(err).Str("account_id", account.ID).Str("reason", reason).
			Msg("narrative unavailable, report served without it")
		observability.RecordNarrativeFallback(reason)
		return nil
	}

	n := ParseNarrative(raw)
	return &n
}

// promptFacts is the figure set sent to the narrator.
type promptFacts struct {
	Period       string             `json:"period"`
	Totals       period.Totals      `json:"totals"`
	Shares       share.GroupShares  `json:"shares"`
	SourceShares share.SourceShares `json:"sourceShares"`
	Hotspot      period.Hotspot     `json:"hotspot"`
	Delta        string             `json:"monthOverMonth"`
	Trend        Trend              `json:"trend"`
}

// Prompt renders the user prompt for a report's narrative.
func Prompt(r Report) (string, error) {
	facts := promptFacts{
		Period:       r.PeriodLabel,
		Totals:       r.Totals,
		Shares:       r.BreakdownBySource,
		SourceShares: r.SourceShares,
		Hotspot:      r.Hotspot,
		Delta:        r.Delta.String(),
		Trend:        r.Trend,
	}
	payload, err := json.Marshal(facts)
	if err != nil {
		return "", fmt.Errorf("encode prompt facts: %w", err)
	}
	return "Summarise this organisation's emissions for the period. Figures are kg CO2e.\n\nJSON: " + string(payload), nil
}
