package gnupg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"

	kerrors "github.com/PolarWolf314/kaitiaki/internal/errors"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const bufferSize = 8192

// child is a started gpg process whose three pipes belong to the caller.
type child struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser
}

// launch starts argv[0] with pipes on stdin, stdout and stderr. env entries
// are appended to the current environment so they take precedence.
func launch(ctx context.Context, argv []string, env map[string]string, dir string) (*child, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = mergeEnv(os.Environ(), env)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdin: %v", kerrors.ErrPipeFailed, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("%w: stdout: %v", kerrors.ErrPipeFailed, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("%w: stderr: %v", kerrors.ErrPipeFailed, err)
	}

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w: %v", kerrors.ErrLaunchFailed, kerrors.ErrEngineNotFound, err)
		}
		return nil, fmt.Errorf("%w: %v", kerrors.ErrLaunchFailed, err)
	}

	return &child{cmd: cmd, stdin: stdin, stdout: stdout, stderr: stderr}, nil
}

func mergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := append([]string(nil), base...)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}

// feed writes the passphrase line and the payload to stdin, then closes it.
// gpg waits for EOF on stdin for most operations, so the close is not optional.
func feed(stdin io.WriteCloser, passphrase string, payload []byte, src io.Reader) (err error) {
	defer func() {
		if cerr := stdin.Close(); err == nil && cerr != nil && !errors.Is(cerr, os.ErrClosed) {
			err = fmt.Errorf("%w: %v", kerrors.ErrWriteFailed, cerr)
		}
	}()

	if passphrase != "" {
		if _, err := io.WriteString(stdin, passphrase+"\n"); err != nil {
			return fmt.Errorf("%w: passphrase: %v", kerrors.ErrWriteFailed, err)
		}
	}

	if payload != nil {
		if _, err := stdin.Write(payload); err != nil {
			return fmt.Errorf("%w: %v", kerrors.ErrWriteFailed, err)
		}
		return nil
	}

	if src == nil {
		return nil
	}

	buf := make([]byte, bufferSize)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, err := stdin.Write(buf[:n]); err != nil {
				return fmt.Errorf("%w: %v", kerrors.ErrWriteFailed, err)
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return fmt.Errorf("%w: %v", kerrors.ErrReadFailed, rerr)
		}
	}
}

// readOutput drains stdout in fixed-size chunks.
func readOutput(r io.Reader, c *collector) error {
	buf := make([]byte, bufferSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			c.appendOutput(buf[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: stdout: %v", kerrors.ErrReadFailed, err)
		}
	}
}

// readStatus drains the status channel to EOF before decoding it, so the
// substring checks made by status handlers see every diagnostic line.
func readStatus(r io.Reader, c *collector, onDebug func(string)) error {
	data, err := io.ReadAll(r)
	c.appendStatus(data)
	c.handleStatusData(string(data), onDebug)
	if err != nil {
		return fmt.Errorf("%w: status: %v", kerrors.ErrReadFailed, err)
	}
	return nil
}

// exitCode waits for the process. Both output pipes must be drained first.
func exitCode(cmd *exec.Cmd) int {
	err := cmd.Wait()
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return ExitCodeUnknown
}

// Run executes one gpg invocation and returns its frozen Result.
//
// A non-nil error means gpg could not be launched (ErrLaunchFailed,
// ErrEngineNotFound), an input file could not be opened (ErrFileNotFound),
// or bytes could not be moved through a pipe (ErrWriteFailed,
// ErrReadFailed). In the last case the returned Result is still complete.
func (e *Engine) Run(ctx context.Context, inv Invocation) (Result, error) {
	failed := Result{Operation: inv.Operation, ExitCode: ExitCodeUnknown}
	src, closeSrc, err := resolveInput(inv)
	if err != nil {
		return failed, err
	}
	defer closeSrc()

	argv := e.BuildArgs(inv)
	id := uuid.New().String()
	e.log.Debugf("[%s] %s: %v", id[:8], inv.Operation, redactArgs(argv))

	ch, err := launch(ctx, argv, mergeMaps(e.env, inv.Env), inv.Dir)
	if err != nil {
		failed.InvocationID = id
		return failed, err
	}

	c := newCollector(id, inv.Operation)

	fed := make(chan error, 1)
	go func() {
		fed <- feed(ch.stdin, inv.Passphrase, inv.Input, src)
	}()

	var drains errgroup.Group
	drains.Go(func() error { return readOutput(ch.stdout, c) })
	drains.Go(func() error { return readStatus(ch.stderr, c, e.engineLog) })
	drainErr := drains.Wait()

	feedErr := <-fed
	c.setExitCode(exitCode(ch.cmd))

	ioErr := errors.Join(feedErr, drainErr)
	if ioErr != nil {
		e.log.Warnf("[%s] %s: %v", id[:8], inv.Operation, ioErr)
		c.addProblem(Problem{"status": "IO_ERROR", "io_error": ioErr.Error()})
	}

	res := c.freeze()
	e.log.Debugf("[%s] %s finished: exit=%d success=%t status=%s", id[:8], inv.Operation, res.ExitCode, res.Success, res.Status)
	return res, ioErr
}

func (e *Engine) engineLog(line string) {
	e.log.Enginef("%s", line)
}

// resolveInput picks the streaming source for an invocation. A literal
// payload needs no source.
func resolveInput(inv Invocation) (io.Reader, func(), error) {
	noop := func() {}
	if inv.Input != nil {
		return nil, noop, nil
	}
	if inv.InputFile != nil {
		return inv.InputFile, noop, nil
	}
	if inv.InputPath == "" {
		return nil, noop, nil
	}
	f, err := os.Open(inv.InputPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, noop, fmt.Errorf("%w: %s", kerrors.ErrFileNotFound, inv.InputPath)
		}
		return nil, noop, fmt.Errorf("%w: %v", kerrors.ErrReadFailed, err)
	}
	return f, func() { f.Close() }, nil
}

func mergeMaps(base, over map[string]string) map[string]string {
	if len(over) == 0 {
		return base
	}
	out := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// redactArgs hides the value following --passphrase, which some callers
// pass through Options.
func redactArgs(argv []string) []string {
	out := append([]string(nil), argv...)
	for i := 0; i < len(out)-1; i++ {
		if out[i] == "--passphrase" {
			out[i+1] = "******"
		}
	}
	return out
}
