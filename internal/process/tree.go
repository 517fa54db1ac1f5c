package process

import (
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/go-ps"
)

// Descendants returns the PIDs of every process below pid, children before
// grandchildren.
func Descendants(pid int) ([]int, error) {
	processList, err := ps.Processes()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	return descendants(processList, pid), nil
}

// KillTree kills pid and every process below it. Descendants are killed
// deepest first so none of them is re-parented in between. The result of
// killing pid itself is returned, so a finished process yields os.ErrProcessDone.
func KillTree(pid int) error {
	root, err := os.FindProcess(pid)
	if err != nil {
		return err
	}

	children, err := Descendants(pid)
	if err != nil {
		// The process table is unavailable; still stop the direct child.
		children = nil
	}

	for i := len(children) - 1; i >= 0; i-- {
		if child, findErr := os.FindProcess(children[i]); findErr == nil {
			_ = child.Kill()
		}
	}

	return root.Kill()
}

// Others returns processes running the executable name, excluding the current
// process and its ancestors.
func Others(name string) ([]ps.Process, error) {
	processList, err := ps.Processes()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	excluded := ancestors(processList, os.Getpid())

	var found []ps.Process

	for _, p := range processList {
		if _, skip := excluded[p.Pid()]; skip {
			continue
		}

		if p.Executable() == name {
			found = append(found, p)
		}
	}

	return found, nil
}

// ErrNotFound is returned by Executable when the current process is not listed.
var ErrNotFound = errors.New("process not found")

// Executable returns the executable name of the current process as the
// process table reports it.
func Executable() (string, error) {
	p, err := ps.FindProcess(os.Getpid())
	if err != nil {
		return "", fmt.Errorf("find current process: %w", err)
	}

	if p == nil {
		return "", ErrNotFound
	}

	return p.Executable(), nil
}

// descendants walks the parent links breadth first.
func descendants(processList []ps.Process, pid int) []int {
	children := make(map[int][]int, len(processList))
	for _, p := range processList {
		if p.Pid() != p.PPid() {
			children[p.PPid()] = append(children[p.PPid()], p.Pid())
		}
	}

	var (
		result []int
		queue  = []int{pid}
		seen   = map[int]struct{}{pid: {}}
	)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, child := range children[current] {
			if _, ok := seen[child]; ok {
				continue
			}

			seen[child] = struct{}{}
			result = append(result, child)
			queue = append(queue, child)
		}
	}

	return result
}

// ancestors returns pid and every parent above it.
func ancestors(processList []ps.Process, pid int) map[int]struct{} {
	parents := make(map[int]int, len(processList))
	for _, p := range processList {
		parents[p.Pid()] = p.PPid()
	}

	result := map[int]struct{}{pid: {}}

	for current := pid; ; {
		parent, ok := parents[current]
		if !ok || parent == 0 {
			return result
		}

		if _, seen := result[parent]; seen {
			return result
		}

		result[parent] = struct{}{}
		current = parent
	}
}
