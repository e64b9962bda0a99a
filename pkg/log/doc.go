// Package log provides the structured logging facade used across UDMF.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// simple Field type for structured context. Entries flow through a
// Formatter (JSON or text) to one or more Outputs.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("store"), log.Str("store_id", "drag"))
//	l.Info("store opened", log.Int("records", 3))
//
// # Configuration
//
// Use ApplyConfig to build a logger from a declarative Config with a level
// and a format. To capture standard library log output (e.g. from Pebble),
// use RedirectStdLog.
package log
