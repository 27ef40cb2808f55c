package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/yonwatch/hklisting/app/classify"
	"github.com/yonwatch/hklisting/app/notify"
	"github.com/yonwatch/hklisting/app/record"
	"github.com/yonwatch/hklisting/app/source"
)

// ErrNoAdapters is returned when the pipeline is constructed without any
// source adapter.
var ErrNoAdapters = errors.New("no source adapters configured")

// Store is the dedup store surface the pipeline needs.
type Store interface {
	Load()
	Contains(fingerprint string) bool
	Add(fingerprint string)
	Size() int
	Persist(pruneDays int) error
}

// Deliverer fans one classified record out to the configured channels.
type Deliverer interface {
	Deliver(ctx context.Context, rec record.Record, cls classify.Classification) []notify.DeliveryResult
}

// DetailFetcher pulls announcement page text for field extraction.
type DetailFetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// Summary is the externally observable result of one run, besides the
// notifications themselves.
type Summary struct {
	Fetched          int
	Relevant         int
	New              int
	Notified         int
	FailedSources    []string
	FailedDeliveries int
}

// Pipeline wires adapters, classifier, dedup store and notifier into one
// stateless pass: fetch, classify, filter, notify, persist. Nothing is
// retained between runs except the dedup store.
type Pipeline struct {
	adapters   []source.Adapter
	classifier *classify.Classifier
	store      Store
	notifier   Deliverer

	// detail is optional; nil disables enrichment.
	detail DetailFetcher

	lookbackDays int
	pruneDays    int
}

type Config struct {
	LookbackDays int
	PruneDays    int
	Detail       DetailFetcher
}

func New(adapters []source.Adapter, classifier *classify.Classifier, store Store, notifier Deliverer, cfg Config) (*Pipeline, error) {
	if len(adapters) == 0 {
		return nil, ErrNoAdapters
	}
	if classifier == nil || store == nil || notifier == nil {
		return nil, errors.New("pipeline is missing a component")
	}

	return &Pipeline{
		adapters:     adapters,
		classifier:   classifier,
		store:        store,
		notifier:     notifier,
		detail:       cfg.Detail,
		lookbackDays: cfg.LookbackDays,
		pruneDays:    cfg.PruneDays,
	}, nil
}

// Run executes one full pass. Individual adapter or channel failures are
// reported in the summary, never returned as errors: once the pipeline is
// constructed, a run always reaches completion.
func (p *Pipeline) Run(ctx context.Context) Summary {
	var summary Summary

	p.store.Load()
	slog.Info("Pipeline started",
		"adapters", len(p.adapters), "known_fingerprints", p.store.Size())

	records := p.fetch(ctx, &summary)
	summary.Fetched = len(records)

	batchSeen := make(map[string]struct{})
	for _, rec := range records {
		if !rec.Valid() {
			slog.Warn("Dropping record without source or title", "source", rec.Source)
			continue
		}

		cls := p.classifier.Classify(rec)
		if !cls.IsRelevant {
			slog.Debug("Record not relevant", "source", rec.Source, "title", rec.Title)
			continue
		}
		summary.Relevant++

		fingerprint := rec.Fingerprint()
		if p.store.Contains(fingerprint) {
			slog.Debug("Record already notified", "title", rec.Title)
			continue
		}
		if _, dup := batchSeen[fingerprint]; dup {
			slog.Debug("Duplicate record within batch", "title", rec.Title)
			continue
		}
		batchSeen[fingerprint] = struct{}{}
		summary.New++

		p.enrich(ctx, &rec, &cls)

		results := p.notifier.Deliver(ctx, rec, cls)
		for _, result := range results {
			if result.Err != nil {
				summary.FailedDeliveries++
			}
		}

		if notify.Delivered(results) {
			p.store.Add(fingerprint)
			summary.Notified++
		}
	}

	if err := p.store.Persist(p.pruneDays); err != nil {
		slog.Error("Failed to persist dedup store", "error", err)
	}

	slog.Info("Pipeline completed",
		"fetched", summary.Fetched,
		"relevant", summary.Relevant,
		"new", summary.New,
		"notified", summary.Notified,
		"failed_sources", len(summary.FailedSources),
		"failed_deliveries", summary.FailedDeliveries)

	return summary
}

// fetch runs every adapter concurrently and collects their batches. A failing
// adapter contributes an empty batch and a summary entry; it never aborts the
// run or the other adapters.
func (p *Pipeline) fetch(ctx context.Context, summary *Summary) []record.Record {
	var (
		mu      sync.Mutex
		records []record.Record
	)

	var g errgroup.Group
	for _, adapter := range p.adapters {
		g.Go(func() error {
			batch, err := adapter.Fetch(ctx, p.lookbackDays)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Warn("Source unavailable", "source", adapter.Name(), "error", err)
				summary.FailedSources = append(summary.FailedSources, adapter.Name())
				return nil
			}
			slog.Debug("Source fetched", "source", adapter.Name(), "records", len(batch))
			records = append(records, batch...)
			return nil
		})
	}
	g.Wait()

	return records
}

// enrich pulls the announcement page text and fills in extracted fields the
// title alone did not yield. Best-effort: any failure leaves the record as is.
func (p *Pipeline) enrich(ctx context.Context, rec *record.Record, cls *classify.Classification) {
	if p.detail == nil || rec.Link == "" {
		return
	}

	text, err := p.detail.Fetch(ctx, rec.Link)
	if err != nil {
		slog.Debug("Detail fetch failed", "title", rec.Title, "error", err)
		return
	}
	rec.Content = text

	extra := p.classifier.ExtractFields(cls.Category, text)
	if len(extra) == 0 {
		return
	}
	if cls.Extracted == nil {
		cls.Extracted = make(map[string]string)
	}
	for field, value := range extra {
		if _, ok := cls.Extracted[field]; !ok {
			cls.Extracted[field] = value
		}
	}
}
