// Package runlog implements the raw, append-only log of one run.
//
// Every run gets its own timestamp-named UTF-8 file. Lines are appended one
// write at a time and never rewritten. Write failures are absorbed: the line is
// retried once on a reopened handle and otherwise sent to a fallback writer.
package runlog
