// Package logger provides structured logging for respkv.
//
// It wraps the standard library log/slog:
//
//   - JSON structured logging (default) or key=value text
//   - One process-wide level that can be changed at runtime with SetLevel
//   - Named child loggers tagged with a component attribute
//
// Components that only need to emit records take a *slog.Logger, obtained
// from Logger.Slog. The server builds one per component:
//
//	log.Named("reactor").Slog()
package logger
