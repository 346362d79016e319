package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"foildb/internal/config"
)

// Requirement defines an external binary foildb shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of one requirement. Command holds the
// resolved absolute path when the binary was found, otherwise the configured
// value as given.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// ForConfig lists the external binaries the given configuration relies on.
// The title extraction tool is the only one; fetching, image handling, and
// storage all run in-process.
func ForConfig(cfg *config.Config) []Requirement {
	tool := ""
	if cfg != nil {
		tool = cfg.Titles.Tool
	}
	return []Requirement{
		{
			Name:        "extraction tool",
			Command:     tool,
			Description: "regenerates the title snapshot from the upstream catalog",
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
// Resolution goes through exec.LookPath so the answer matches what running
// the tool would actually do, for bare names and explicit paths alike.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		command := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     command,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if command == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(command)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", command)
			results = append(results, status)
			continue
		}
		status.Command = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}
