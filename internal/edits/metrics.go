package edits

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts history activity. A nil *Metrics records nothing.
type Metrics struct {
	Edits   *prometheus.CounterVec
	Undos   prometheus.Counter
	Redos   prometheus.Counter
	History prometheus.Gauge
}

// NewMetrics registers the edit metrics with reg. A nil reg creates
// unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Edits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ledgr_edits_total",
			Help: "Edits recorded in the undo history, by kind.",
		}, []string{"kind"}),
		Undos: f.NewCounter(prometheus.CounterOpts{
			Name: "ledgr_undo_total",
			Help: "Edits undone.",
		}),
		Redos: f.NewCounter(prometheus.CounterOpts{
			Name: "ledgr_redo_total",
			Help: "Edits redone.",
		}),
		History: f.NewGauge(prometheus.GaugeOpts{
			Name: "ledgr_edit_history_length",
			Help: "Edits currently held in the undo history.",
		}),
	}
}

func (m *Metrics) observeEdit(k Kind) {
	if m != nil {
		m.Edits.WithLabelValues(k.String()).Inc()
	}
}

func (m *Metrics) observeUndo() {
	if m != nil {
		m.Undos.Inc()
	}
}

func (m *Metrics) observeRedo() {
	if m != nil {
		m.Redos.Inc()
	}
}

func (m *Metrics) observeLen(n int) {
	if m != nil {
		m.History.Set(float64(n))
	}
}
