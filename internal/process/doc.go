// Package process inspects the host process table.
//
// It is used to terminate a child together with everything it spawned, and
// to detect another running instance of this tool.
package process
