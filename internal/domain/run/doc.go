// Package run contains the domain types of one upgrade run.
//
// It defines Actor (who started the run) and the per-step outcomes that make
// up the summary written at the end of the run log.
package run
