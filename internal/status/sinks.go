package status

import (
	"encoding/json"
	"time"

	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/infrastructure/logging"
)

// LogSink renders events through the structured logger, mapping event
// severity to log level.
type LogSink struct {
	logger *logging.Logger
}

// NewLogSink creates a sink that writes to the given logger.
func NewLogSink(logger *logging.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Emit implements Sink.
func (s *LogSink) Emit(ev Event) {
	switch ev.Severity {
	case SeverityError:
		s.logger.Error(ev.Message, "event_time", ev.Time.Format(time.RFC3339))
	case SeverityWarning:
		s.logger.Warn(ev.Message, "event_time", ev.Time.Format(time.RFC3339))
	default:
		s.logger.Info(ev.Message, "event_time", ev.Time.Format(time.RFC3339))
	}
}

// Publisher is the transport an MQTTSink publishes through. The MQTT
// infrastructure client satisfies it.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	IsConnected() bool
}

// MQTTSink publishes events as JSON to a status topic. Publish failures
// are recorded on a counter rather than surfaced; status delivery is
// best-effort by design of the bus.
type MQTTSink struct {
	publisher Publisher
	topic     string
	qos       byte
	failed    uint64
}

// NewMQTTSink creates a sink publishing to the given topic.
func NewMQTTSink(publisher Publisher, topic string, qos byte) *MQTTSink {
	return &MQTTSink{publisher: publisher, topic: topic, qos: qos}
}

// Emit implements Sink. Events are skipped while the broker is
// unreachable so a broker outage cannot back up the dispatch goroutine.
func (s *MQTTSink) Emit(ev Event) {
	if !s.publisher.IsConnected() {
		s.failed++
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		s.failed++
		return
	}

	if err := s.publisher.Publish(s.topic, payload, s.qos, false); err != nil {
		s.failed++
	}
}

// Failed returns the number of events that could not be published.
func (s *MQTTSink) Failed() uint64 {
	return s.failed
}
