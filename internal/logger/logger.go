// Package logger re-exports printfleet/pkg/logger so internal packages share
// one import path for logging.
package logger

import (
	pkglogger "printfleet/pkg/logger"
)

type (
	Logger = pkglogger.Logger
	Config = pkglogger.Config
	Format = pkglogger.Format
)

const (
	DefaultTraceIDKey = pkglogger.DefaultTraceIDKey
	FormatJSON        = pkglogger.FormatJSON
	FormatText        = pkglogger.FormatText
)

var (
	New                = pkglogger.New
	NewWithConfig      = pkglogger.NewWithConfig
	NewWithContext     = pkglogger.NewWithContext
	ContextWithTraceID = pkglogger.ContextWithTraceID
	TraceIDFromContext = pkglogger.TraceIDFromContext
)
