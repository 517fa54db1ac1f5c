package elevation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Host uses the running platform's elevation facilities.
type Host struct{}

// IsElevated reports whether the current process holds administrative rights.
func (Host) IsElevated() bool {
	return IsElevated()
}

// Relaunch starts exe with args through the elevation prompt and waits for it.
// The returned code is the elevated instance's exit status.
func (Host) Relaunch(ctx context.Context, exe string, args []string) (int, error) {
	return Relaunch(ctx, exe, args)
}

// Relaunch runs the elevation command for exe with the console attached and
// waits for it. A non-zero exit is not an error; only a failure to start the
// elevation tool is.
func Relaunch(ctx context.Context, exe string, args []string) (int, error) {
	name, argv := Command(runtime.GOOS, exe, args)

	cmd := exec.CommandContext(ctx, name, argv...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}

	return -1, fmt.Errorf("run %s: %w", name, err)
}
