// Package migrate converts documents written by the previous schema into
// the current ones.
package migrate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"serverrewards/internal/model"
)

// Documents is the slice of the document repository the migrator needs.
type Documents interface {
	Load(ctx context.Context, name model.DocumentName) (*model.Document, error)
	Exists(ctx context.Context, name model.DocumentName) (bool, error)
	Move(ctx context.Context, from, to model.DocumentName) (bool, error)
}

// Target receives converted documents. *store.Store satisfies it.
type Target interface {
	Restore(name model.DocumentName, data []byte) error
	MarkDirty(names ...model.DocumentName)
}

// SaveFunc persists the target's dirty documents.
type SaveFunc func(ctx context.Context) error

// Outcome is the result of one domain.
type Outcome string

const (
	OutcomeMigrated      Outcome = "migrated"
	OutcomeSkipped       Outcome = "skipped"
	OutcomeMissingSource Outcome = "missing_source"
	OutcomeFailed        Outcome = "failed"
)

// DomainReport describes what happened to one domain.
type DomainReport struct {
	Domain  string             `json:"domain"`
	Target  model.DocumentName `json:"target"`
	Outcome Outcome            `json:"outcome"`
	Records int                `json:"records"`
	Error   string             `json:"error,omitempty"`
}

// Report is the result of a migration run.
type Report struct {
	Forced   bool           `json:"forced"`
	Domains  []DomainReport `json:"domains"`
	Duration string         `json:"duration"`
}

// Migrated returns the number of domains that were converted.
func (r Report) Migrated() int {
	n := 0
	for _, d := range r.Domains {
		if d.Outcome == OutcomeMigrated {
			n++
		}
	}
	return n
}

// domain converts one or more legacy documents into a single target.
type domain struct {
	name    string
	target  model.DocumentName
	sources []model.DocumentName
	convert func(sources [][]byte) (json.Marshaler, int, error)
}

var domains = []domain{
	{
		name:    "catalog",
		target:  model.DocProducts,
		sources: []model.DocumentName{model.LegacyRewardData},
		convert: func(src [][]byte) (json.Marshaler, int, error) {
			c, err := ConvertRewardData(src[0])
			if err != nil {
				return nil, 0, err
			}
			return c, c.Count(), nil
		},
	},
	{
		name:    "balances",
		target:  model.DocBalances,
		sources: []model.DocumentName{model.LegacyPlayerData},
		convert: func(src [][]byte) (json.Marshaler, int, error) {
			l, err := ConvertPlayerData(src[0])
			if err != nil {
				return nil, 0, err
			}
			return l, l.Len(), nil
		},
	},
	{
		name:    "sell-prices",
		target:  model.DocPrices,
		sources: []model.DocumentName{model.LegacySaleData},
		convert: func(src [][]byte) (json.Marshaler, int, error) {
			p, err := ConvertSaleData(src[0])
			if err != nil {
				return nil, 0, err
			}
			return p, p.Len(), nil
		},
	},
	{
		name:    "npc-stores",
		target:  model.DocNpcStores,
		sources: []model.DocumentName{model.LegacyNpcData, model.LegacyRewardData},
		convert: func(src [][]byte) (json.Marshaler, int, error) {
			r, err := ConvertNpcData(src[0], src[1])
			if err != nil {
				return nil, 0, err
			}
			return r, r.Len(), nil
		},
	},
}

// Migrator moves legacy documents aside and converts them.
type Migrator struct {
	docs   Documents
	target Target
	save   SaveFunc
}

// New creates a migrator. save may be nil, in which case converted
// documents are only marked dirty.
func New(docs Documents, target Target, save SaveFunc) *Migrator {
	return &Migrator{docs: docs, target: target, save: save}
}

// MoveLegacy moves every legacy document into its v1/ location unless a v1
// copy already exists. It returns the documents that were moved.
func (m *Migrator) MoveLegacy(ctx context.Context) ([]model.DocumentName, error) {
	var moved []model.DocumentName
	for _, name := range model.LegacyDocuments {
		ok, err := m.docs.Move(ctx, name, name.Archived())
		if err != nil {
			return moved, fmt.Errorf("failed to move %s: %w", name, err)
		}
		if ok {
			log.Printf("[Migrate] Moved %s to %s", name, name.Archived())
			moved = append(moved, name)
		}
	}
	return moved, nil
}

// Run converts every domain whose target is missing, or all of them when
// force is set. A failing domain does not stop the others.
func (m *Migrator) Run(ctx context.Context, force bool) (Report, error) {
	start := time.Now()
	report := Report{Forced: force}

	for _, d := range domains {
		rep, err := m.runDomain(ctx, d, force)
		if err != nil {
			return report, err
		}
		if rep.Outcome == OutcomeFailed {
			log.Printf("[Migrate] %s failed: %s", d.name, rep.Error)
		}
		report.Domains = append(report.Domains, rep)
	}

	if m.save != nil && report.Migrated() > 0 {
		if err := m.save(ctx); err != nil {
			return report, fmt.Errorf("failed to save migrated documents: %w", err)
		}
	}
	report.Duration = time.Since(start).String()
	if report.Migrated() > 0 {
		log.Printf("[Migrate] Converted %d domain(s) in %s", report.Migrated(), report.Duration)
	}
	return report, nil
}

func (m *Migrator) runDomain(ctx context.Context, d domain, force bool) (DomainReport, error) {
	rep := DomainReport{Domain: d.name, Target: d.target}

	if !force {
		exists, err := m.docs.Exists(ctx, d.target)
		if err != nil {
			return rep, fmt.Errorf("failed to check %s: %w", d.target, err)
		}
		if exists {
			rep.Outcome = OutcomeSkipped
			return rep, nil
		}
	}

	sources := make([][]byte, 0, len(d.sources))
	for _, name := range d.sources {
		doc, err := m.source(ctx, name)
		if err != nil {
			return rep, err
		}
		if doc == nil {
			rep.Outcome = OutcomeMissingSource
			return rep, nil
		}
		sources = append(sources, doc.Body)
	}

	converted, records, err := d.convert(sources)
	if err == nil {
		var data []byte
		if data, err = json.Marshal(converted); err == nil {
			err = m.target.Restore(d.target, data)
		}
	}
	if err != nil {
		rep.Outcome = OutcomeFailed
		rep.Error = err.Error()
		return rep, nil
	}

	m.target.MarkDirty(d.target)
	rep.Outcome = OutcomeMigrated
	rep.Records = records
	return rep, nil
}

// source loads a legacy document from its v1/ location, falling back to the
// original name when it has not been moved.
func (m *Migrator) source(ctx context.Context, name model.DocumentName) (*model.Document, error) {
	doc, err := m.docs.Load(ctx, name.Archived())
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name.Archived(), err)
	}
	if doc != nil {
		return doc, nil
	}
	doc, err = m.docs.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	return doc, nil
}
