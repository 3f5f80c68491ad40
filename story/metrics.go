package story

import (
	"reflect"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "story_transitions_total",
		Help: "Total number of story state transitions by machine, from_state and to_state",
	}, []string{"machine", "from_state", "to_state"})

	actionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "story_action_failures_total",
		Help: "Total number of story actions skipped because they failed, by machine and action kind",
	}, []string{"machine", "kind"})

	conditionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "story_condition_failures_total",
		Help: "Total number of story conditions disabled after an evaluation error, by machine and condition kind",
	}, []string{"machine", "kind"})
)

func kindOf(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "nil"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}
