// Package logging configures the process wide loggers.
//
// All packages log through dragonboat's logger registry (logger.GetLogger("name")),
// the same registry the RAFT library uses internally. InitLoggers installs a factory
// producing single-line "LEVEL | name | message" output and applies one level to
// every logger.
package logging
