package observability

// Metric name prefixes
const (
	MetricPrefix = "guesser"
)

// Metric names
const (
	// Game metrics
	GamesStartedTotal  = MetricPrefix + ".games.started_total"
	GamesFinishedTotal = MetricPrefix + ".games.finished_total"
	HintsGrantedTotal  = MetricPrefix + ".hints.granted_total"

	// Persistence metrics
	ResultRecordFailuresTotal = MetricPrefix + ".results.record_failures_total"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"

	// HTTP metrics
	HTTPRequestDuration = MetricPrefix + ".http.request_duration"
)

// Label keys
const (
	LabelMode      = "mode"
	LabelOutcome   = "outcome"
	LabelEventType = "event_type"
	LabelMethod    = "method"
	LabelRoute     = "route"
	LabelStatus    = "status"
)

// Outcomes for finished games
const (
	OutcomeWon  = "won"
	OutcomeLost = "lost"
)
