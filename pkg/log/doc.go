// Package log provides this tool's structured logging facade and utilities.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// simple Field type for structured context. BaseLogger's leveled methods
// format each entry and write it to the configured outputs directly. Each
// logger also builds a custom slog.Handler that routes slog records through
// the same formatter/outputs pipeline; the leveled methods do not use it.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("scanner"), log.Str("ns", "default"))
//	l.Info("scan started", log.Int("rank", 0))
package log
