// Package logger provides structured logging for voicekit built on zerolog.
// It supports console and JSON output, per-component loggers, and a global
// logger for packages that do not carry their own instance.
package logger
