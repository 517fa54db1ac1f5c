// Package drain runs a child process and delivers every line it writes to
// standard output and standard error, as it is produced.
//
// Each stream has its own reader goroutine feeding an unbounded queue, so the
// child's pipes are emptied at the child's pace and a flood on one stream or a
// slow callback can never stall the child or drop output. Lines are handed to
// the caller's callback from the calling goroutine only, in per-stream order.
// The order between the two streams is best-effort.
package drain
