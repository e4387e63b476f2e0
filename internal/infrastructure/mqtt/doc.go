// Package mqtt provides the MQTT client used for status publishing.
//
// The logger is a publisher only: it announces its own lifecycle on a
// retained status topic (with a Last Will for crash detection) and
// carries the status bus's events to remote observers. There are no
// subscriptions.
//
// The client wraps paho.mqtt.golang with connection state tracking,
// automatic reconnection, and optional connect/disconnect callbacks.
// All methods are safe for concurrent use.
//
// MQTT is optional: when disabled in configuration the rest of the
// logger runs without it.
package mqtt
