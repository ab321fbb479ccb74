// Package notifications delivers rotation run events via ntfy.
//
// The default implementation publishes to the topic configured in config.toml
// and gracefully degrades to a no-op when notifications are disabled. Run
// completion and failure gates are honored per event so operators can keep
// alerts without the routine traffic.
//
// Extend this package if you need alternative transports; the runner depends
// only on the simple Service interface.
package notifications
