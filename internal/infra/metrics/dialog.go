package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		dialogTurns,
		stateTransitions,
		promptRetries,
		systemEvents,
	)
}

var (
	dialogTurns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialog_turns_total",
			Help: "Dialog turns by outcome (resolved/prompted/echoed/...).",
		},
		[]string{"outcome"},
	)

	stateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialog_state_transitions_total",
			Help: "Conversation state transitions.",
		},
		[]string{"from", "to"},
	)

	promptRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dialog_prompt_retries_total",
			Help: "Re-prompts issued for unusable replies.",
		},
	)

	systemEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialog_system_events_total",
			Help: "Non-message activities acknowledged and dropped, by type.",
		},
		[]string{"type"},
	)
)

func IncTurn(outcome string) {
	dialogTurns.WithLabelValues(norm(outcome)).Inc()
}

func IncTransition(from, to string) {
	stateTransitions.WithLabelValues(norm(from), norm(to)).Inc()
}

func IncPromptRetry() { promptRetries.Inc() }

func IncSystemEvent(activityType string) {
	systemEvents.WithLabelValues(norm(activityType)).Inc()
}
