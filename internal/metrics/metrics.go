package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"lifelevel/internal/catalog"
	"lifelevel/internal/engine"
	"lifelevel/internal/models"
)

const namespace = "lifelevel"

// Metrics exports progression and HTTP metrics to Prometheus.
type Metrics struct {
	completions     *prometheus.CounterVec
	experience      *prometheus.CounterVec
	levelUps        *prometheus.CounterVec
	skillUnlocks    *prometheus.CounterVec
	questsCompleted prometheus.Counter
	achievements    prometheus.Counter
	reminders       prometheus.Counter
	areaLevel       *prometheus.GaugeVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New registers the collectors with reg (the default registerer when nil).
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_completions_total",
			Help:      "Completed activities by area.",
		}, []string{"area"}),
		experience: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "experience_gained_total",
			Help:      "XP earned by area.",
		}, []string{"area"}),
		levelUps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "level_ups_total",
			Help:      "Level-ups by area.",
		}, []string{"area"}),
		skillUnlocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skill_unlocks_total",
			Help:      "Skills unlocked by area.",
		}, []string{"area"}),
		questsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quests_completed_total",
			Help:      "Quests completed.",
		}),
		achievements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "achievements_earned_total",
			Help:      "Achievements earned.",
		}),
		reminders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Reminders fired for planned activities.",
		}),
		areaLevel: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "area_level",
			Help:      "Current level by area.",
		}, []string{"area"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	collectors := []prometheus.Collector{
		m.completions, m.experience, m.levelUps, m.skillUnlocks,
		m.questsCompleted, m.achievements, m.reminders, m.areaLevel,
		m.httpRequests, m.httpDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return m, nil
}

// Observe updates counters from one engine event.
func (m *Metrics) Observe(ev engine.Event) {
	if m == nil {
		return
	}
	switch p := ev.Payload.(type) {
	case models.ActivityCompletion:
		m.completions.WithLabelValues(p.AreaID).Inc()
		m.experience.WithLabelValues(p.AreaID).Add(float64(p.ExperienceGained))
	case engine.LevelUpEvent:
		m.levelUps.WithLabelValues(p.AreaID).Inc()
		m.areaLevel.WithLabelValues(p.AreaID).Set(float64(p.NewLevel))
	case models.SkillUnlock:
		m.skillUnlocks.WithLabelValues(p.AreaID).Inc()
	case catalog.Quest:
		m.questsCompleted.Inc()
	case models.Achievement:
		m.achievements.Inc()
	case engine.ReminderNotice:
		m.reminders.Inc()
	}
}

// SetLevels seeds the per-area level gauge from a state snapshot.
func (m *Metrics) SetLevels(s models.UserState) {
	if m == nil {
		return
	}
	for _, p := range s.Progress {
		m.areaLevel.WithLabelValues(p.AreaID).Set(float64(p.CurrentLevel))
	}
}

// Run consumes events until ctx is done or the channel closes.
func (m *Metrics) Run(ctx context.Context, events <-chan engine.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.Observe(ev)
		}
	}
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
