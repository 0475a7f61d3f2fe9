// Package debug provides debug logging for grain.
//
// When enabled via the --debug flag, every git invocation and engine
// mutation is written to a log file as slog text records. Logging is off
// by default and costs nothing when disabled.
package debug
