package ghostscript

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Profile selects a predefined fidelity/size trade-off for pdfwrite
type Profile string

const (
	ProfileScreen   Profile = "screen"
	ProfileEbook    Profile = "ebook"
	ProfilePrinter  Profile = "printer"
	ProfilePrepress Profile = "prepress"
)

// DefaultProfile is used when the requested profile is unknown
const DefaultProfile = ProfileEbook

// pdfSettings maps each profile to its -dPDFSETTINGS value.
// The table is static configuration, resolved once per run.
var pdfSettings = map[Profile]string{
	ProfileScreen:   "/screen",
	ProfileEbook:    "/ebook",
	ProfilePrinter:  "/printer",
	ProfilePrepress: "/prepress",
}

// ResolveProfile maps a client-supplied quality name to a known profile,
// falling back to the default for anything unrecognized.
func ResolveProfile(name string) Profile {
	p := Profile(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := pdfSettings[p]; ok {
		return p
	}
	return DefaultProfile
}

// Profiles returns the known profile names
func Profiles() []Profile {
	return []Profile{ProfileScreen, ProfileEbook, ProfilePrinter, ProfilePrepress}
}

// Reason classifies why a run failed
type Reason string

const (
	ReasonNotFound Reason = "tool-not-found"
	ReasonTimeout  Reason = "timeout-exceeded"
	ReasonExit     Reason = "nonzero-exit"
	ReasonInternal Reason = "unexpected-error"
)

// RunError reports a failed invocation of the external tool
type RunError struct {
	Reason Reason
	Detail string
	Err    error
}

func (e *RunError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("ghostscript: %s: %s", e.Reason, e.Detail)
	}
	return fmt.Sprintf("ghostscript: %s", e.Reason)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Runner invokes the Ghostscript binary with a hard wall-clock timeout
type Runner struct {
	binary  string
	timeout time.Duration
}

// New creates a runner for the given binary path and per-run timeout
func New(binary string, timeout time.Duration) *Runner {
	return &Runner{
		binary:  binary,
		timeout: timeout,
	}
}

// Compress rewrites the PDF at inputPath into outputPath under the given
// profile. On failure the caller owns cleanup of any partial output file.
func (r *Runner) Compress(ctx context.Context, inputPath, outputPath string, profile Profile) error {
	setting, ok := pdfSettings[profile]
	if !ok {
		setting = pdfSettings[DefaultProfile]
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := []string{
		"-sDEVICE=pdfwrite",
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-dSAFER",
		fmt.Sprintf("-dPDFSETTINGS=%s", setting),
		"-dOptimize=true",
		fmt.Sprintf("-sOutputFile=%s", outputPath),
		inputPath,
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Stderr = &stderr
	// Don't wait on orphaned children holding the stderr pipe after a kill
	cmd.WaitDelay = 5 * time.Second

	if err := cmd.Run(); err != nil {
		return classify(ctx, err, stderr.String())
	}

	// Exit code 0 alone is not success: the output file must exist and be non-empty.
	info, err := os.Stat(outputPath)
	if err != nil {
		return &RunError{Reason: ReasonInternal, Detail: "tool exited 0 but produced no output", Err: err}
	}
	if info.Size() == 0 {
		return &RunError{Reason: ReasonInternal, Detail: "tool exited 0 but produced an empty output"}
	}

	return nil
}

// Version returns the tool's version string, probing with --version
func (r *Runner) Version(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, r.binary, "--version").Output()
	if err != nil {
		return "", classify(ctx, err, "")
	}
	return strings.TrimSpace(string(out)), nil
}

// Available reports whether the tool can be invoked at all
func (r *Runner) Available(ctx context.Context) bool {
	_, err := r.Version(ctx)
	return err == nil
}

// classify maps an exec failure onto the RunError taxonomy
func classify(ctx context.Context, err error, stderr string) *RunError {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &RunError{Reason: ReasonTimeout, Detail: "wall-clock timeout exceeded", Err: err}
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
		return &RunError{Reason: ReasonNotFound, Detail: execErr.Name + " not found in PATH", Err: err}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		detail := fmt.Sprintf("exit code %d", exitErr.ExitCode())
		if s := strings.TrimSpace(stderr); s != "" {
			detail = fmt.Sprintf("%s: %s", detail, s)
		}
		return &RunError{Reason: ReasonExit, Detail: detail, Err: err}
	}

	return &RunError{Reason: ReasonInternal, Err: err}
}
