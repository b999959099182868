// Package logging constructs the slog loggers used across dumpcheck.
//
// Two output formats are supported: a human-oriented console format for
// interactive runs and JSON for machine consumption. Construction goes
// through Options so commands and tests share one code path.
package logging
