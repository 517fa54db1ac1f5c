//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"os/user"

	"github.com/mariokreitz/windows-winget-automatic-update/internal/domain/run"
)

// DetectActor gathers host and user information for the run log header.
func DetectActor() (*run.Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &run.Actor{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}
