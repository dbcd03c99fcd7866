// Package extract turns an element-major forecast payload into flat,
// per-element sample series.
package extract

import (
	"context"

	"github.com/okian/wxgrid/internal/domain/failure"
	"github.com/okian/wxgrid/internal/domain/model"
	"github.com/okian/wxgrid/internal/domain/payload"
	"github.com/okian/wxgrid/pkg/logger"
	"github.com/okian/wxgrid/pkg/metrics"
)

const op = "extract"

// Drop reasons reported to metrics.
const (
	reasonExcluded     = "excluded"
	reasonUnrecognized = "unrecognized"
	reasonEmpty        = "empty"
)

// Extractor pulls the recognized numeric elements out of a payload.
type Extractor struct {
	log        logger.Logger
	schemaGate bool
}

// New returns an Extractor with the schema gate enabled.
func New(opts ...Option) *Extractor {
	e := &Extractor{log: logger.Nop(), schemaGate: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns one series per recognized, non-excluded element that has
// at least one sample, in payload order. Any structural problem yields
// failure.ErrSchema and no series.
func (e *Extractor) Extract(ctx context.Context, doc any, h model.Horizon) ([]model.ElementSeries, error) {
	cat, err := model.CatalogFor(h)
	if err != nil {
		return nil, failure.Wrap(op, failure.ErrInvalidInput, err)
	}
	if e.schemaGate {
		if err := payload.Validate(doc, payload.ElementMajor); err != nil {
			return nil, failure.Annotate(op, failure.ErrSchema, err)
		}
	}

	list, err := payload.Root(doc).Walk("records", "Locations", 0, "Location", 0, "WeatherElement")
	if err != nil {
		return nil, failure.Annotate(op, failure.ErrSchema, err)
	}
	elements, err := list.Items()
	if err != nil {
		return nil, failure.Annotate(op, failure.ErrSchema, err)
	}

	out := make([]model.ElementSeries, 0, len(cat.Elements))
	for _, el := range elements {
		nameNode, err := el.Key("ElementName")
		if err != nil {
			return nil, failure.Annotate(op, failure.ErrSchema, err)
		}
		name, err := nameNode.Text()
		if err != nil {
			return nil, failure.Annotate(op, failure.ErrSchema, err)
		}

		if cat.IsExcluded(name) {
			e.drop(ctx, h, name, reasonExcluded)
			continue
		}
		def, known := cat.Lookup(name)
		if !known {
			e.drop(ctx, h, name, reasonUnrecognized)
			continue
		}

		samples, err := samplesOf(el, def.Field)
		if err != nil {
			return nil, failure.Annotate(op, failure.ErrSchema, err)
		}
		if len(samples) == 0 {
			e.drop(ctx, h, name, reasonEmpty)
			continue
		}
		e.log.Debug(ctx, "element extracted", logger.String("element", name), logger.Int("samples", len(samples)))
		out = append(out, model.ElementSeries{Name: name, Samples: samples})
	}

	metrics.RecordElementsExtracted(h.String(), len(out))
	return out, nil
}

func (e *Extractor) drop(ctx context.Context, h model.Horizon, name, reason string) {
	metrics.RecordElementDropped(h.String(), reason)
	e.log.Debug(ctx, "element dropped", logger.String("element", name), logger.String("reason", reason))
}

// samplesOf reads every Time record of el. A record without DataTime or
// StartTime is malformed; a record without the catalog field is skipped.
func samplesOf(el payload.Node, field string) ([]model.Sample, error) {
	timeNode, err := el.Key("Time")
	if err != nil {
		return nil, err
	}
	records, err := timeNode.Items()
	if err != nil {
		return nil, err
	}

	samples := make([]model.Sample, 0, len(records))
	for _, rec := range records {
		ts, err := timestampOf(rec)
		if err != nil {
			return nil, err
		}
		value, ok, err := valueOf(rec, field)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		samples = append(samples, model.Sample{Timestamp: model.NormalizeTimestamp(ts), Value: value})
	}
	return samples, nil
}

func timestampOf(rec payload.Node) (string, error) {
	for _, key := range []string{"DataTime", "StartTime"} {
		if n, ok := rec.Lookup(key); ok {
			return n.Text()
		}
	}
	return "", failure.Schemaf(op, "%s: neither DataTime nor StartTime present", rec.Path())
}

func valueOf(rec payload.Node, field string) (string, bool, error) {
	values, ok := rec.Lookup("ElementValue")
	if !ok {
		return "", false, nil
	}
	items, err := values.Items()
	if err != nil {
		return "", false, err
	}
	if len(items) == 0 {
		return "", false, nil
	}
	v, ok := items[0].Lookup(field)
	if !ok {
		return "", false, nil
	}
	s, err := v.Scalar()
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}
