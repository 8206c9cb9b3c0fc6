package shell

import "os/exec"

// Checker reports whether an external tool is available.
type Checker interface {
	Check(name string) bool
}

// PathChecker resolves tools on the PATH of the current process.
type PathChecker struct{}

func (PathChecker) Check(name string) bool {
	if name == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}
