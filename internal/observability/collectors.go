package observability

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Prometheus text-format collectors. A family owns every series of one metric
// name; series are keyed by their rendered label set ("" when unlabeled).

type family struct {
	name   string
	help   string
	kind   string
	labels []string
}

func (f family) header(b *strings.Builder) {
	fmt.Fprintf(b, "# HELP %s %s\n# TYPE %s %s\n", f.name, f.help, f.name, f.kind)
}

// key renders values against the family's label names; missing values read "unknown".
func (f family) key(values []string) string {
	if len(f.labels) == 0 {
		return ""
	}
	pairs := make([]string, len(f.labels))
	for i, name := range f.labels {
		val := "unknown"
		if i < len(values) {
			val = values[i]
		}
		pairs[i] = name + `="` + escapeLabel(val) + `"`
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

// scalars backs counters and gauges.
type scalars struct {
	family
	mu     sync.RWMutex
	values map[string]float64
}

func (s *scalars) init(name, help, kind string, labels []string) {
	s.family = family{name: name, help: help, kind: kind, labels: labels}
	s.values = map[string]float64{}
	if len(labels) == 0 {
		s.values[""] = 0
	}
}

func (s *scalars) update(values []string, fn func(float64) float64) {
	k := s.key(values)
	s.mu.Lock()
	s.values[k] = fn(s.values[k])
	s.mu.Unlock()
}

func (s *scalars) get(values []string) float64 {
	k := s.key(values)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[k]
}

func (s *scalars) WritePrometheus(w io.Writer) error {
	var b strings.Builder
	s.header(&b)
	s.mu.RLock()
	for _, k := range sortedKeys(s.values) {
		fmt.Fprintf(&b, "%s%s %g\n", s.name, k, s.values[k])
	}
	s.mu.RUnlock()
	_, err := io.WriteString(w, b.String())
	return err
}

type CounterVec struct{ scalars }

func NewCounterVec(name, help string, labels []string) *CounterVec {
	c := &CounterVec{}
	c.init(name, help, "counter", labels)
	return c
}

func (c *CounterVec) Inc(values ...string) { c.Add(1, values...) }

func (c *CounterVec) Add(v float64, values ...string) {
	if c == nil || v < 0 {
		return
	}
	c.update(values, func(cur float64) float64 { return cur + v })
}

type Counter struct{ CounterVec }

func NewCounter(name, help string) *Counter {
	c := &Counter{}
	c.init(name, help, "counter", nil)
	return c
}

func (c *Counter) Inc() {
	if c != nil {
		c.CounterVec.Add(1)
	}
}

func (c *Counter) Value() float64 {
	if c == nil {
		return 0
	}
	return c.get(nil)
}

type GaugeVec struct{ scalars }

func NewGaugeVec(name, help string, labels []string) *GaugeVec {
	g := &GaugeVec{}
	g.init(name, help, "gauge", labels)
	return g
}

func (g *GaugeVec) Set(v float64, values ...string) {
	if g != nil {
		g.update(values, func(float64) float64 { return v })
	}
}

type Gauge struct{ GaugeVec }

func NewGauge(name, help string) *Gauge {
	g := &Gauge{}
	g.init(name, help, "gauge", nil)
	return g
}

func (g *Gauge) Inc() { g.add(1) }
func (g *Gauge) Dec() { g.add(-1) }

func (g *Gauge) add(d float64) {
	if g != nil {
		g.update(nil, func(cur float64) float64 { return cur + d })
	}
}

type HistogramVec struct {
	family
	bounds []float64
	mu     sync.Mutex
	series map[string]*histogram
}

type histogram struct {
	// cumulative counts per bound; the +Inf bucket equals count.
	buckets []uint64
	sum     float64
	count   uint64
}

var defaultBounds = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

func NewHistogramVec(name, help string, labels []string, bounds []float64) *HistogramVec {
	if len(bounds) == 0 {
		bounds = defaultBounds
	}
	sorted := append([]float64(nil), bounds...)
	sort.Float64s(sorted)
	return &HistogramVec{
		family: family{name: name, help: help, kind: "histogram", labels: labels},
		bounds: sorted,
		series: map[string]*histogram{},
	}
}

func (h *HistogramVec) Observe(v float64, values ...string) {
	if h == nil {
		return
	}
	k := h.key(values)
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.series[k]
	if s == nil {
		s = &histogram{buckets: make([]uint64, len(h.bounds))}
		h.series[k] = s
	}
	s.sum += v
	s.count++
	for i := sort.SearchFloat64s(h.bounds, v); i < len(h.bounds); i++ {
		s.buckets[i]++
	}
}

func (h *HistogramVec) WritePrometheus(w io.Writer) error {
	var b strings.Builder
	h.header(&b)
	h.mu.Lock()
	for _, k := range sortedKeys(h.series) {
		s := h.series[k]
		for i, bound := range h.bounds {
			fmt.Fprintf(&b, "%s_bucket%s %d\n", h.name, withLe(k, strconv.FormatFloat(bound, 'g', -1, 64)), s.buckets[i])
		}
		fmt.Fprintf(&b, "%s_bucket%s %d\n", h.name, withLe(k, "+Inf"), s.count)
		fmt.Fprintf(&b, "%s_sum%s %g\n", h.name, k, s.sum)
		fmt.Fprintf(&b, "%s_count%s %d\n", h.name, k, s.count)
	}
	h.mu.Unlock()
	_, err := io.WriteString(w, b.String())
	return err
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func escapeLabel(v string) string { return labelEscaper.Replace(v) }

func withLe(labels, le string) string {
	if labels == "" {
		return `{le="` + le + `"}`
	}
	return strings.TrimSuffix(labels, "}") + `,le="` + le + `"}`
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
