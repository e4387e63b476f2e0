// Package status carries human-readable poller events outward.
//
// The poll loop runs on a background goroutine; whatever renders status
// (a terminal, an MQTT dashboard, a supervisor) lives elsewhere. This
// package decouples the two: the worker reports events through the
// Reporter interface and the Bus fans them out to sinks from its own
// dispatch goroutine over a bounded queue. A slow or dead sink can never
// block the sampling loop — when the queue is full, events are dropped
// and counted instead.
//
// Two sinks ship with the logger: LogSink renders events through the
// structured logger, and MQTTSink publishes them as JSON to a status
// topic for remote observation.
package status
