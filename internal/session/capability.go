package session

import (
	"os/exec"
	"runtime"

	"github.com/netbuddy/netbuddy/internal/probe"
)

// Capability is the typed outcome of the start-time environment check:
// whether this platform is supported and whether the ping command is
// present and produces output. Computed once at Start and stubbable in
// tests.
type Capability struct {
	// Platform is the operating system that was checked.
	Platform string

	// Supported reports whether the exec pinger knows how to drive
	// this platform's ping utility.
	Supported bool

	// PingPath is the resolved ping executable, empty if not found.
	PingPath string

	// CommandOK reports whether invoking the command produced any
	// output at all.
	CommandOK bool
}

// supportedPlatforms are the systems the exec pinger has argument
// tables for.
var supportedPlatforms = map[string]bool{
	"windows": true,
	"linux":   true,
	"darwin":  true,
}

// DetectCapability checks the current platform and the ping command.
// The command check runs ping with no destination (help invocation on
// Windows) and accepts any output, matching how a human would verify
// the tool exists; exit status is deliberately ignored since bare ping
// exits non-zero while still printing usage.
func DetectCapability() Capability {
	c := Capability{Platform: runtime.GOOS}
	c.Supported = supportedPlatforms[c.Platform]
	if !c.Supported {
		return c
	}

	// Resolve through the exec pinger so the command checked here is
	// the command the probes will actually invoke.
	path, err := probe.NewExecPinger().LookPath()
	if err != nil {
		return c
	}
	c.PingPath = path

	var cmd *exec.Cmd
	if c.Platform == "windows" {
		cmd = exec.Command(path, "/?")
	} else {
		cmd = exec.Command(path)
	}
	out, _ := cmd.CombinedOutput()
	c.CommandOK = len(out) > 0
	return c
}
