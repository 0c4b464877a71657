// Package gennorm drives ICU's gennorm2 compiler to turn normalization text
// files into the binary .nrm artifacts loaded by the rendering engine.
//
// An artifact that is open in another process cannot always be deleted
// (Windows refuses). Compile therefore moves such a file aside under a
// random name in the same directory and records that name in the
// TempFilesToDelete ledger; Sweep removes those files later, once their
// consumers have let go.
package gennorm

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/2pages/FieldWorksMacOS-sub008/internal/format"
	"github.com/2pages/FieldWorksMacOS-sub008/internal/logger"
	"github.com/2pages/FieldWorksMacOS-sub008/pkg/types"
)

// Compiler runs gennorm2.
//
// The zero value is not usable; construct with NewCompiler.
type Compiler struct {
	tool   string
	runner Runner

	// Filesystem hooks, replaced in tests to simulate a locked artifact.
	remove func(string) error
	rename func(string, string) error
}

// NewCompiler returns a compiler that runs tool through r. A nil r means
// ExecRunner.
func NewCompiler(tool string, r Runner) *Compiler {
	if r == nil {
		r = ExecRunner{}
	}
	return &Compiler{
		tool:   tool,
		runner: r,
		remove: os.Remove,
		rename: os.Rename,
	}
}

// Tool returns the executable the compiler runs.
func (c *Compiler) Tool() string { return c.tool }

// Outcome reports side effects of a successful or failed Compile.
type Outcome struct {
	// Deferred is the name the previous artifact was moved to when it could
	// not be deleted, or "" when no move was needed.
	Deferred string
}

// Compile runs `tool -o output inputs...` after clearing output out of the way.
//
// Exit status 0 is success. The file-access status (4) yields an error of
// kind types.ErrKindLocked; any other status yields types.ErrKindToolFailure.
// Both carry the tool's standard error (or standard output when stderr is
// empty) in Detail.
func (c *Compiler) Compile(ctx context.Context, inputs []string, output string) (Outcome, error) {
	var out Outcome

	if err := ctx.Err(); err != nil {
		return out, err
	}

	deferred, err := c.clearOutput(output)
	if err != nil {
		return out, err
	}
	out.Deferred = deferred

	args := make([]string, 0, len(inputs)+2)
	args = append(args, format.GennormOutputFlag, output)
	args = append(args, inputs...)
	cmd := Command{Path: c.tool, Args: args, Dir: toolDir(c.tool)}

	logger.Debug("executing gennorm", "tool", c.tool, "args", strings.Join(args, " "))

	res, err := c.runner.Run(ctx, cmd)
	if err != nil {
		return out, &types.Error{
			Kind: types.ErrKindToolFailure,
			Msg:  "run " + filepath.Base(c.tool),
			Path: output,
			Err:  err,
		}
	}
	if res.ExitCode == 0 {
		return out, nil
	}

	detail := strings.TrimSpace(string(res.Stderr))
	if detail == "" {
		detail = strings.TrimSpace(string(res.Stdout))
	}
	logger.Error("error running gennorm2",
		"exit", res.ExitCode,
		"stdout", string(res.Stdout),
		"stderr", string(res.Stderr))

	kind := types.ErrKindToolFailure
	msg := fmt.Sprintf("%s exited with status %d", filepath.Base(c.tool), res.ExitCode)
	if res.ExitCode == format.GennormFileAccessError {
		kind = types.ErrKindLocked
		msg = fmt.Sprintf("%s could not write its output; is it open in another program?", filepath.Base(c.tool))
	}
	return out, &types.Error{Kind: kind, Msg: msg, Path: output, Detail: detail}
}

// clearOutput deletes path, or renames it aside and records it in the ledger
// when the delete fails.
func (c *Compiler) clearOutput(path string) (string, error) {
	if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}

	rmErr := c.remove(path)
	if rmErr == nil || errors.Is(rmErr, fs.ErrNotExist) {
		return "", nil
	}

	dir := filepath.Dir(path)
	aside := filepath.Join(dir, uuid.NewString())
	if err := c.rename(path, aside); err != nil {
		logger.Error("error renaming locked file", "from", path, "to", aside, "err", err)
		return "", types.IOError("move locked artifact aside", path, errors.Join(rmErr, err))
	}
	logger.Info("artifact locked, renamed for later deletion", "path", path, "renamed", aside, "err", rmErr)

	if err := appendLedger(dir, aside); err != nil {
		// The rename already succeeded; a missing ledger entry only leaks a file.
		logger.Warn("could not record file for later deletion", "path", aside, "err", err)
	}
	return aside, nil
}

// toolDir returns the directory of an explicit tool path so the tool can
// find libraries installed next to it.
func toolDir(tool string) string {
	if !strings.ContainsRune(tool, filepath.Separator) && !strings.ContainsRune(tool, '/') {
		return ""
	}
	return filepath.Dir(tool)
}

// LookTool resolves name to an executable path. Names without a directory
// component are searched for on PATH.
func LookTool(name string) (string, error) {
	if name == "" {
		name = format.GennormTool
	}
	if toolDir(name) != "" {
		info, err := os.Stat(name)
		if err != nil {
			return "", &types.Error{Kind: types.ErrKindToolFailure, Msg: "compiler not found", Path: name, Err: err}
		}
		if info.IsDir() {
			return "", &types.Error{Kind: types.ErrKindToolFailure, Msg: "compiler path is a directory", Path: name}
		}
		return name, nil
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", &types.Error{Kind: types.ErrKindToolFailure, Msg: "compiler not found on PATH", Path: name, Err: err}
	}
	return path, nil
}
