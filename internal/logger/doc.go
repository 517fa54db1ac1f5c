// Package logger wraps zap for the orchestrator's console notices:
//   - a global sugared logger with a coloured console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and runtime level changes,
//   - leveled helpers taking a context (Infof, WarnKV, ErrorKV and so on).
//
// Raw child-process output never goes through this package. It is written
// verbatim by the run log and echoed by the console writer.
package logger
