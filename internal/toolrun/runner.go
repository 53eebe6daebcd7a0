package toolrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	ptyDevice "github.com/creack/pty"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/socforge/socforge/internal/eventbus"
	"github.com/socforge/socforge/internal/procutil"
)

// ErrToolPathEmpty indicates a tool invocation without an executable path.
var ErrToolPathEmpty = errors.New("toolrun: tool path is empty")

// ToolError reports an external tool that ran and exited non-zero.
type ToolError struct {
	Tool       string
	ExitStatus int
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("toolrun: %s exited with status %d", e.Tool, e.ExitStatus)
}

// Tool describes one blocking external invocation.
type Tool struct {
	Name string // short name used in events and errors ("dtc", "fdtoverlay", ...)
	Path string
	Args []string
	Dir  string
	Env  []string // appended to the ambient environment

	// RequiresTTY runs the tool under a pseudo-terminal when stdin is a
	// terminal. FPGA toolchains gate their progress output on one.
	RequiresTTY bool
}

// Runner executes external tools to completion.
type Runner interface {
	Run(ctx context.Context, tool Tool) error
}

// OutputRunner executes a tool and returns its captured stdout.
type OutputRunner interface {
	Output(ctx context.Context, tool Tool) (string, error)
}

// ExecRunner runs tools via os/exec, capturing output line-wise onto the
// event bus. Invocations are strictly sequential; the runner holds no state
// between calls.
type ExecRunner struct {
	bus *eventbus.Bus
}

// New returns a runner publishing captured output on bus (nil is allowed).
func New(bus *eventbus.Bus) *ExecRunner {
	return &ExecRunner{bus: bus}
}

// Run executes the tool and blocks until it exits. A non-zero exit status is
// returned as *ToolError; every other failure mode is wrapped as-is.
func (r *ExecRunner) Run(ctx context.Context, tool Tool) error {
	if strings.TrimSpace(tool.Path) == "" {
		return ErrToolPathEmpty
	}
	if _, err := exec.LookPath(tool.Path); err != nil {
		return fmt.Errorf("toolrun: locate %s: %w", tool.Name, err)
	}

	cmd := exec.CommandContext(ctx, tool.Path, tool.Args...)
	cmd.Dir = tool.Dir
	if len(tool.Env) > 0 {
		cmd.Env = append(os.Environ(), tool.Env...)
	}
	// On cancellation ask the tool to exit cleanly first; FPGA toolchains
	// leave corrupt intermediate files behind when killed outright.
	cmd.Cancel = func() error {
		return procutil.GracefulTerminate(cmd.Process)
	}
	cmd.WaitDelay = 10 * time.Second

	out := newLineWriter(ctx, r.bus, tool.Name)
	defer out.Close()

	if tool.RequiresTTY && terminal.IsTerminal(int(os.Stdin.Fd())) {
		return r.runPTY(cmd, tool, out)
	}

	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("toolrun: start %s: %w", tool.Name, err)
	}
	return r.waitTool(cmd, tool)
}

// Output executes the tool with stdout captured and returned while stderr
// still streams line-wise onto the bus. Used for converters that emit their
// product on stdout.
func (r *ExecRunner) Output(ctx context.Context, tool Tool) (string, error) {
	if strings.TrimSpace(tool.Path) == "" {
		return "", ErrToolPathEmpty
	}
	if _, err := exec.LookPath(tool.Path); err != nil {
		return "", fmt.Errorf("toolrun: locate %s: %w", tool.Name, err)
	}

	cmd := exec.CommandContext(ctx, tool.Path, tool.Args...)
	cmd.Dir = tool.Dir
	if len(tool.Env) > 0 {
		cmd.Env = append(os.Environ(), tool.Env...)
	}
	cmd.Cancel = func() error {
		return procutil.GracefulTerminate(cmd.Process)
	}
	cmd.WaitDelay = 10 * time.Second

	errOut := newLineWriter(ctx, r.bus, tool.Name)
	defer errOut.Close()

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = errOut

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("toolrun: start %s: %w", tool.Name, err)
	}
	if err := r.waitTool(cmd, tool); err != nil {
		return "", err
	}
	return stdout.String(), nil
}

// runPTY runs the command attached to a pseudo-terminal and drains its
// output through the line writer.
func (r *ExecRunner) runPTY(cmd *exec.Cmd, tool Tool, out *lineWriter) error {
	ptyFile, err := ptyDevice.Start(cmd)
	if err != nil {
		return fmt.Errorf("toolrun: start %s on pty: %w", tool.Name, err)
	}
	defer ptyFile.Close()

	buf := make([]byte, 4096)
	for {
		n, readErr := ptyFile.Read(buf)
		if n > 0 {
			_, _ = out.Write(buf[:n])
		}
		if readErr != nil {
			// EOF (or EIO once the child side closes) ends the drain loop.
			break
		}
	}
	return r.waitTool(cmd, tool)
}

func (r *ExecRunner) waitTool(cmd *exec.Cmd, tool Tool) error {
	err := cmd.Wait()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ToolError{Tool: tool.Name, ExitStatus: exitErr.ExitCode()}
	}
	return fmt.Errorf("toolrun: wait for %s: %w", tool.Name, err)
}
