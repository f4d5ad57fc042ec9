package capability

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"media-orchestrator/internal/logging"
)

// defaultExecTimeout bounds one provider invocation.
const defaultExecTimeout = 2 * time.Minute

// ExecProvider runs a capability through an external command. The
// content buffer is written to the command's stdin and trimmed stdout
// is returned as the capability output. Ready reflects whether the
// command resolves on PATH.
type ExecProvider struct {
	// ProviderName identifies the provider in logs and metrics.
	ProviderName string
	// Command is the executable to run, resolved via PATH.
	Command string
	// Args are passed to the command verbatim.
	Args []string
	// Timeout bounds one invocation; zero means the default.
	Timeout time.Duration
}

// Name implements Provider.
func (e *ExecProvider) Name() string { return e.ProviderName }

// Ready implements Provider.
func (e *ExecProvider) Ready() bool {
	if e.Command == "" {
		return false
	}
	_, err := exec.LookPath(e.Command)
	return err == nil
}

// Execute implements Provider. Non-byte inputs are rejected; a non-zero
// exit includes trimmed stderr in the error.
func (e *ExecProvider) Execute(ctx context.Context, input any) (any, error) {
	data, ok := input.([]byte)
	if !ok {
		return nil, fmt.Errorf("exec provider %s: input must be a byte buffer", e.ProviderName)
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = defaultExecTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.Command, e.Args...)
	cmd.Stdin = bytes.NewReader(data)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s failed: %w: %s", e.Command, err, msg)
		}
		return nil, fmt.Errorf("%s failed: %w", e.Command, err)
	}

	logging.Debug("Provider %s ran %s in %v", e.ProviderName, e.Command,
		time.Since(start).Round(time.Millisecond))
	return strings.TrimSpace(stdout.String()), nil
}
