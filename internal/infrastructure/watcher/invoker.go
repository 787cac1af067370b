package watcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"evewatch/internal/errs"
	"evewatch/internal/ports"
)

const defaultInvokeTimeout = 120 * time.Second

// ExecInvoker runs watcher commands through os/exec. Stdin is closed, stdout
// must be exactly one JSON document, stderr only feeds error messages.
type ExecInvoker struct{}

func NewExecInvoker() *ExecInvoker {
	return &ExecInvoker{}
}

func (*ExecInvoker) Invoke(ctx context.Context, desc ports.WatcherDescriptor) (json.RawMessage, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if strings.TrimSpace(desc.Program) == "" {
		return nil, errors.New("watcher program is required")
	}

	timeout := desc.Timeout
	if timeout <= 0 {
		timeout = defaultInvokeTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, desc.Program, desc.Args...)
	if desc.Dir != "" {
		cmd.Dir = desc.Dir
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return nil, errs.Wrapf(ports.ErrWatcherTimeout, "%s after %s", desc.Program, timeout)
	}
	if runErr != nil {
		detail := firstLine(stderr.String())
		if detail == "" {
			detail = runErr.Error()
		}
		return nil, fmt.Errorf("run %s: %s", desc.Program, detail)
	}

	payload, err := parseSingleDocument(stdout.Bytes())
	if err != nil {
		return nil, errs.Wrapf(err, "parse %s output", desc.Program)
	}
	return payload, nil
}

// parseSingleDocument accepts exactly one JSON document and rejects trailing
// content, so a watcher that streams log lines to stdout fails loudly.
func parseSingleDocument(out []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(out)
	if len(trimmed) == 0 {
		return nil, errors.New("empty output")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	var doc json.RawMessage
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing content after JSON document")
	}
	return doc, nil
}

func firstLine(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	parts := strings.SplitN(trimmed, "\n", 2)
	return strings.TrimSpace(parts[0])
}
