// Package logger provides structured logging for tabprofile using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers carrying structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.Get("dag")
//	log.Info("step completed", logger.Fields("step", "load_file"))
package logger
