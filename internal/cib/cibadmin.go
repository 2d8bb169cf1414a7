package cib

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Querier fetches the raw CIB XML of a live cluster.
type Querier interface {
	Query(ctx context.Context) ([]byte, error)
}

// Cibadmin runs the pacemaker cibadmin binary.
type Cibadmin struct {
	Path string
	Log  *zap.SugaredLogger
}

// NewCibadmin returns a runner for the cibadmin binary at path.
func NewCibadmin(path string, log *zap.SugaredLogger) *Cibadmin {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Cibadmin{Path: path, Log: log}
}

func queryArgs() []string {
	return []string{"--query", "--local"}
}

func (c *Cibadmin) run(ctx context.Context, args ...string) ([]byte, error) {
	c.Log.Debugw("running cibadmin", "path", c.Path, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, c.Path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("cibadmin command failed: %w\nstderr: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Query returns the CIB of the local cluster node.
func (c *Cibadmin) Query(ctx context.Context) ([]byte, error) {
	return c.run(ctx, queryArgs()...)
}

// Validate checks that the cibadmin binary is available.
func (c *Cibadmin) Validate(ctx context.Context) error {
	out, err := exec.CommandContext(ctx, c.Path, "--version").Output()
	if err != nil {
		return fmt.Errorf("cibadmin not found at %q: %w", c.Path, err)
	}
	c.Log.Debugw("cibadmin version", "output", strings.TrimSpace(string(out)))
	return nil
}

// Source says where a CIB is read from. File takes precedence; a File of
// "-" reads Stdin; otherwise Live is queried.
type Source struct {
	File  string
	Stdin io.Reader
	Live  Querier
}

// Load reads and parses the CIB described by src.
func Load(ctx context.Context, src Source) (*Document, error) {
	switch {
	case src.File == "-":
		if src.Stdin == nil {
			return nil, fmt.Errorf("no stdin available to read cib from")
		}
		return Read(src.Stdin)
	case src.File != "":
		return ReadFile(src.File)
	case src.Live != nil:
		data, err := src.Live.Query(ctx)
		if err != nil {
			return nil, fmt.Errorf("querying live cib: %w", err)
		}
		return Parse(data)
	default:
		return nil, fmt.Errorf("no cib source configured")
	}
}
