// Package upgrader sequences one upgrade run.
//
// The run checks for administrative rights and relaunches itself elevated
// when needed. The elevated instance runs the package manager's update and
// upgrade invocations through the drainer, writes every raw line to the run
// log, echoes the sanitized lines, and ends with a summary of both exit codes.
// Failures are recorded in the log; the console only points at it.
package upgrader
