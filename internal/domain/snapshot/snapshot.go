// Package snapshot reads window-major forecasts into time windows and
// renders the summary of one selected window.
package snapshot

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/okian/wxgrid/internal/domain/failure"
	"github.com/okian/wxgrid/internal/domain/payload"
	"github.com/okian/wxgrid/pkg/logger"
	"github.com/okian/wxgrid/pkg/metrics"
)

const op = "snapshot"

// Window time layouts accepted from upstream, tried in order.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Element names a summary needs, in output order.
var summaryElements = []string{"Wx", "PoP", "CI", "MaxT", "MinT"}

// Window is one forecast interval and the element values reported for it.
type Window struct {
	Start     time.Time
	End       time.Time
	StartText string
	EndText   string
	Values    map[string]string

	// Position in the upstream listing: first appearance of the start text,
	// then first appearance of the end text under that start.
	startSeq int
	endSeq   int
}

// Contains reports whether t lies in [Start, End].
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Snapshot is the windowed view of one location, ordered by start then end.
type Snapshot struct {
	Location string
	Windows  []Window
}

// Builder builds snapshots and summaries.
type Builder struct {
	loc    *time.Location
	now    func() time.Time
	policy Policy
	log    logger.Logger
}

// New returns a Builder using PolicyContaining in UTC unless configured.
func New(opts ...Option) *Builder {
	b := &Builder{
		loc:    time.UTC,
		now:    time.Now,
		policy: PolicyContaining,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Policy returns the configured selection policy.
func (b *Builder) Policy() Policy { return b.policy }

// Build groups every (element, time record) pair of doc into windows keyed
// by their start and end text.
func (b *Builder) Build(ctx context.Context, doc any) (Snapshot, error) {
	if err := payload.Validate(doc, payload.WindowMajor); err != nil {
		return Snapshot{}, failure.Annotate(op, failure.ErrSchema, err)
	}
	loc, err := payload.Root(doc).Walk("records", "location", 0)
	if err != nil {
		return Snapshot{}, failure.Annotate(op, failure.ErrSchema, err)
	}
	snap, err := b.build(loc)
	if err != nil {
		return Snapshot{}, failure.Annotate(op, failure.ErrSchema, err)
	}
	b.log.Debug(ctx, "snapshot built",
		logger.String("location", snap.Location), logger.Int("windows", len(snap.Windows)))
	return snap, nil
}

func (b *Builder) build(loc payload.Node) (Snapshot, error) {
	nameNode, err := loc.Key("locationName")
	if err != nil {
		return Snapshot{}, err
	}
	name, err := nameNode.Text()
	if err != nil {
		return Snapshot{}, err
	}
	list, err := loc.Key("weatherElement")
	if err != nil {
		return Snapshot{}, err
	}
	elements, err := list.Items()
	if err != nil {
		return Snapshot{}, err
	}

	type key struct{ start, end string }
	index := make(map[key]int)
	startSeq := make(map[string]int)
	endCount := make(map[string]int)
	var windows []Window

	for _, el := range elements {
		en, err := el.Key("elementName")
		if err != nil {
			return Snapshot{}, err
		}
		elementName, err := en.Text()
		if err != nil {
			return Snapshot{}, err
		}
		tn, err := el.Key("time")
		if err != nil {
			return Snapshot{}, err
		}
		records, err := tn.Items()
		if err != nil {
			return Snapshot{}, err
		}
		for _, rec := range records {
			start, end, value, err := readRecord(rec)
			if err != nil {
				return Snapshot{}, err
			}
			k := key{start, end}
			i, ok := index[k]
			if !ok {
				w, err := b.newWindow(rec.Path(), start, end)
				if err != nil {
					return Snapshot{}, err
				}
				if _, seen := startSeq[start]; !seen {
					startSeq[start] = len(startSeq)
				}
				w.startSeq, w.endSeq = startSeq[start], endCount[start]
				endCount[start]++
				i = len(windows)
				index[k] = i
				windows = append(windows, w)
			}
			windows[i].Values[elementName] = value
		}
	}

	slices.SortStableFunc(windows, func(a, c Window) int {
		if d := a.Start.Compare(c.Start); d != 0 {
			return d
		}
		return a.End.Compare(c.End)
	})
	return Snapshot{Location: name, Windows: windows}, nil
}

// readRecord returns the window bounds and "name[ unit]" value of rec.
func readRecord(rec payload.Node) (start, end, value string, err error) {
	fields := make([]string, 0, 3)
	for _, k := range []string{"startTime", "endTime"} {
		n, err := rec.Key(k)
		if err != nil {
			return "", "", "", err
		}
		s, err := n.Text()
		if err != nil {
			return "", "", "", err
		}
		fields = append(fields, s)
	}
	param, err := rec.Key("parameter")
	if err != nil {
		return "", "", "", err
	}
	pn, err := param.Key("parameterName")
	if err != nil {
		return "", "", "", err
	}
	value, err = pn.Text()
	if err != nil {
		return "", "", "", err
	}
	if un, ok := param.Lookup("parameterUnit"); ok {
		unit, err := un.Text()
		if err != nil {
			return "", "", "", err
		}
		value += " " + unit
	}
	return fields[0], fields[1], value, nil
}

func (b *Builder) newWindow(path, start, end string) (Window, error) {
	s, err := b.parseTime(start)
	if err != nil {
		return Window{}, fmt.Errorf("%s.startTime: %w", path, err)
	}
	e, err := b.parseTime(end)
	if err != nil {
		return Window{}, fmt.Errorf("%s.endTime: %w", path, err)
	}
	return Window{Start: s, End: e, StartText: start, EndText: end, Values: make(map[string]string)}, nil
}

func (b *Builder) parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, b.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// Select picks one window of s according to the configured policy.
func (b *Builder) Select(s Snapshot) (Window, error) {
	w, _, err := b.pick(s)
	return w, err
}

func (b *Builder) pick(s Snapshot) (Window, bool, error) {
	if len(s.Windows) == 0 {
		return Window{}, false, failure.Schemaf(op, "no forecast windows for %q", s.Location)
	}
	now := b.now()
	if b.policy == PolicyLast {
		w := lastListed(s.Windows)
		return w, w.Contains(now), nil
	}
	for _, w := range s.Windows {
		if w.Contains(now) {
			return w, true, nil
		}
	}
	return s.Windows[0], false, nil
}

// lastListed returns the window whose start text appeared last upstream,
// taking the last end listed under that start.
func lastListed(windows []Window) Window {
	last := windows[0]
	for _, w := range windows[1:] {
		if w.startSeq > last.startSeq || (w.startSeq == last.startSeq && w.endSeq > last.endSeq) {
			last = w
		}
	}
	return last
}

// Summarize builds the snapshot of doc, selects a window and renders the
// fixed five-line summary.
func (b *Builder) Summarize(ctx context.Context, doc any) (string, error) {
	snap, err := b.Build(ctx, doc)
	if err != nil {
		return "", err
	}
	w, contained, err := b.pick(snap)
	if err != nil {
		return "", err
	}
	metrics.RecordWindowSelected(string(b.policy), contained)

	var missing []string
	for _, name := range summaryElements {
		if _, ok := w.Values[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", failure.Schemaf(op, "window %s/%s lacks %s", w.StartText, w.EndText, strings.Join(missing, ", "))
	}

	b.log.Debug(ctx, "window selected",
		logger.String("policy", string(b.policy)),
		logger.String("start", w.StartText),
		logger.String("end", w.EndText),
		logger.Any("contained", contained))

	return fmt.Sprintf("\nlocation: %s\nweather summary: %s\nprobability of precipitation: %s\noutdoor thermal comfort index: %s\nmaximum temperature: %s\nminimum temperature: %s\n",
		snap.Location, w.Values["Wx"], w.Values["PoP"], w.Values["CI"], w.Values["MaxT"], w.Values["MinT"]), nil
}
