package run

import "fmt"

// Actor identifies who started the run and where.
type Actor struct {
	// Hostname is the machine the run executes on.
	Hostname string
	// Username is the account the run executes as.
	Username string
}

// String renders the actor for the log header.
func (a *Actor) String() string {
	if a == nil {
		return "unknown"
	}

	return fmt.Sprintf("%s@%s", a.Username, a.Hostname)
}
