package subscribers

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GridHeist/internal/game/events"
)

// LoggerSubscriber writes every event it receives as one structured log line
type LoggerSubscriber struct {
	id     string
	logger zerolog.Logger
	level  zerolog.Level
	only   map[string]bool // nil logs everything
	dump   bool            // attach the full event as JSON
}

// NewLoggerSubscriber creates a subscriber that logs at level
func NewLoggerSubscriber(id string, logger zerolog.Logger, level zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:     id,
		logger: logger.With().Str("subscriber", "event_logger").Logger(),
		level:  level,
	}
}

func (ls *LoggerSubscriber) ID() string { return ls.id }

// SetEventFilter restricts logging to the given event types. An empty list
// removes the restriction.
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.only = nil
		return
	}
	ls.only = make(map[string]bool, len(eventTypes))
	for _, t := range eventTypes {
		ls.only[t] = true
	}
}

// SetDevMode attaches the full event payload to each line
func (ls *LoggerSubscriber) SetDevMode(enabled bool) { ls.dump = enabled }

func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	return ls.only == nil || ls.only[eventType]
}

// HandleEvent logs event with the fields of its concrete type
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	line := ls.logger.WithLevel(ls.level).
		Str("event_type", event.Type()).
		Str("game_id", event.GameID()).
		Time("event_time", event.Timestamp())

	msg := "Game event"
	switch e := event.(type) {
	case *events.GameStartedEvent:
		msg = "Game started"
		line.Int("rows", e.Rows).
			Int("cols", e.Cols).
			Int("robots", e.Robots).
			Int("intruders", e.Intruders).
			Int("bags", e.Bags).
			Str("first_side", e.FirstSide)

	case *events.GameEndedEvent:
		msg = "Game ended"
		line.Str("result", e.Result).
			Dur("duration", e.Duration).
			Int("final_turn", e.FinalTurn).
			Int("captures", e.Captures).
			Int("escapes", e.Escapes).
			Int("bags_stolen", e.BagsStolen)

	case *events.TurnEndedEvent:
		msg = "Turn ended"
		line.Int("turn", e.TurnNumber).
			Str("side", e.Side).
			Str("next_side", e.NextSide).
			Bool("passed", e.Passed)

	case *events.MoveExecutedEvent:
		msg = "Move executed"
		line.Str("entity", e.Entity).
			Str("from", e.From.String()).
			Str("to", e.To.String()).
			Int("turn", e.Metadata.Turn)

	case *events.BagPickedUpEvent:
		msg = "Bag picked up"
		line.Int("intruder_id", e.IntruderID).
			Int("bag_id", e.BagID).
			Str("at", e.At.String()).
			Int("carried", e.Carried)

	case *events.IntruderCapturedEvent:
		msg = "Intruder captured"
		line.Int("robot_id", e.RobotID).
			Int("intruder_id", e.IntruderID).
			Str("at", e.At.String()).
			Int("bags_released", e.BagsReleased)

	case *events.IntruderEscapedEvent:
		msg = "Intruder escaped"
		line.Int("intruder_id", e.IntruderID).
			Str("exit", e.Exit.String()).
			Int("bags_carried", e.BagsCarried)

	case *events.StateTransitionEvent:
		msg = "Phase changed"
		line.Str("from_phase", e.FromPhase).
			Str("to_phase", e.ToPhase).
			Str("reason", e.Reason)
	}

	if ls.dump {
		if raw, err := json.Marshal(event); err == nil {
			line.RawJSON("event_data", raw)
		}
	}
	line.Msg(msg)
}
