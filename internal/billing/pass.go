package billing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/anketahub/anketa-api/internal/domain"
	"github.com/anketahub/anketa-api/internal/platform/logger"
	"github.com/anketahub/anketa-api/internal/store"
	"github.com/google/uuid"
)

// Outcome classifies what the pass did with one listing.
type Outcome string

const (
	// OutcomeCharged means the worker's balance covered the cycle and was debited.
	OutcomeCharged Outcome = "charged"
	// OutcomeDisabled means the balance was insufficient and the listing was disabled.
	OutcomeDisabled Outcome = "disabled"
	// OutcomeSkipped means the listing is exempt (no applicable rate, or free tier).
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means an error prevented a decision; the listing is untouched.
	OutcomeFailed Outcome = "failed"
)

// Result is the per-listing outcome of one pass.
type Result struct {
	ListingID uuid.UUID
	WorkerID  uuid.UUID
	Outcome   Outcome
	Amount    float64
	Err       error
}

// Summary aggregates one full pass. Failed counts listings whose errors were
// collected rather than aborting the batch.
type Summary struct {
	Processed int
	Charged   int
	Disabled  int
	Skipped   int
	Failed    int
}

// PassConfig tunes one billing pass.
type PassConfig struct {
	// ConversionRate scales the base rate into the charged amount.
	ConversionRate float64
	// Concurrency bounds how many listings are billed in parallel.
	Concurrency int
}

// DefaultPassConfig returns a PassConfig with production defaults.
func DefaultPassConfig() PassConfig {
	return PassConfig{
		ConversionRate: 1.6,
		Concurrency:    4,
	}
}

// Pass bills every open listing once per run: it looks up the city/section
// rate, debits the owning worker's balance atomically, and disables the
// listing when funds are insufficient. Each listing's outcome is independent;
// errors are collected, never fatal to the batch. Because the debit is a
// single compare-and-subtract and disabling removes the listing from the next
// run's input, running the pass twice back to back cannot double-debit a
// listing the first run already disabled.
type Pass struct {
	listings store.ListingStore
	workers  store.WorkerStore
	rates    *RateTable
	cfg      PassConfig
	logger   *slog.Logger
}

// NewPass creates a billing pass over the given stores.
// If logger is nil, a default logger will be used.
func NewPass(
	listings store.ListingStore,
	workers store.WorkerStore,
	rates *RateTable,
	cfg PassConfig,
	log *slog.Logger,
) *Pass {
	if listings == nil || workers == nil || rates == nil {
		panic("listings, workers and rates cannot be nil")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultPassConfig().Concurrency
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pass{
		listings: listings,
		workers:  workers,
		rates:    rates,
		cfg:      cfg,
		logger:   log.With(slog.String("component", "billing_pass")),
	}
}

// Run executes one full billing pass and blocks until every listing has been
// processed. It returns an error only when the open-listing snapshot itself
// cannot be loaded; per-listing failures are reported through the summary.
func (p *Pass) Run(ctx context.Context) (Summary, error) {
	log := logger.FromContextOrDefault(ctx, p.logger)

	open, err := p.listings.FindOpenWithWorkers(ctx)
	if err != nil {
		log.Error("failed to load open listings for billing", "error", err)
		return Summary{}, fmt.Errorf("failed to load open listings: %w", err)
	}

	log.Info("billing pass started", "open_listings", len(open))

	results := make([]Result, len(open))
	sem := make(chan struct{}, p.cfg.Concurrency)
	var wg sync.WaitGroup

	for i, listing := range open {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, l *domain.Listing) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = p.billOne(ctx, l)
		}(i, listing)
	}
	wg.Wait()

	var summary Summary
	for _, res := range results {
		summary.Processed++
		switch res.Outcome {
		case OutcomeCharged:
			summary.Charged++
		case OutcomeDisabled:
			summary.Disabled++
		case OutcomeSkipped:
			summary.Skipped++
		case OutcomeFailed:
			summary.Failed++
			log.Error("billing failed for listing",
				"listing_id", res.ListingID,
				"worker_id", res.WorkerID,
				"error", res.Err)
		}
	}

	log.Info("billing pass finished",
		"processed", summary.Processed,
		"charged", summary.Charged,
		"disabled", summary.Disabled,
		"skipped", summary.Skipped,
		"failed", summary.Failed)

	return summary, nil
}

// billOne decides and applies the outcome for a single listing. A panic in
// here is converted into a failed result so one listing can never take down
// the batch.
func (p *Pass) billOne(ctx context.Context, l *domain.Listing) (res Result) {
	res = Result{ListingID: l.ID, WorkerID: l.WorkerID}

	defer func() {
		if r := recover(); r != nil {
			res.Outcome = OutcomeFailed
			res.Err = fmt.Errorf("panic while billing listing %s: %v", l.ID, r)
		}
	}()

	if l.Worker == nil {
		res.Outcome = OutcomeFailed
		res.Err = fmt.Errorf("listing %s has no worker loaded", l.ID)
		return res
	}

	rate, applicable := p.rates.Lookup(l.City, l.Section)
	if !applicable {
		res.Outcome = OutcomeSkipped
		return res
	}

	amount := rate * p.cfg.ConversionRate
	res.Amount = amount
	if amount == 0 {
		res.Outcome = OutcomeSkipped
		return res
	}

	debited, err := p.workers.Debit(ctx, l.WorkerID, amount)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = fmt.Errorf("failed to debit worker %s: %w", l.WorkerID, err)
		return res
	}
	if debited {
		res.Outcome = OutcomeCharged
		return res
	}

	if err := p.listings.UpdateStatus(ctx, l.ID, domain.ListingStatusDisabled); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = fmt.Errorf("failed to disable listing %s: %w", l.ID, err)
		return res
	}
	res.Outcome = OutcomeDisabled
	return res
}
