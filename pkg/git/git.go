// Package git runs the git command-line tool. The preview workflow only
// needs a handful of plumbing commands, so this is a thin process runner
// rather than a repository model: git remains the source of truth for
// object construction and transport.
package git

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Git invokes git in a fixed working directory with optional extra
// environment. The zero value runs git in the process working directory
// against the real index.
type Git struct {
	dir string
	env []string
}

// New returns a Git that runs commands in dir. An empty dir means the
// process working directory.
func New(dir string) Git {
	return Git{dir: dir}
}

// WithIndexFile returns a derived Git whose commands operate on the index
// at path instead of the repository's real index. Staging through the
// derived Git never mutates the caller's staging area.
func (g Git) WithIndexFile(path string) Git {
	env := append(append([]string(nil), g.env...), "GIT_INDEX_FILE="+path)
	return Git{dir: g.dir, env: env}
}

// Output runs git with args and returns its trimmed combined output.
// On failure the output is folded into the returned error, since git
// writes its diagnostics to the same streams.
func (g Git) Output(ctx context.Context, args ...string) (string, error) {
	zerolog.Ctx(ctx).Debug().
		Str("dir", g.dir).
		Msg("git " + strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.dir
	if len(g.env) > 0 {
		cmd.Env = append(os.Environ(), g.env...)
	}

	out, err := cmd.CombinedOutput()
	trimmed := strings.TrimSpace(string(out))
	if err != nil {
		if trimmed != "" {
			return "", errors.Errorf("git %s: %s: %w", args[0], trimmed, err)
		}
		return "", errors.Errorf("git %s: %w", args[0], err)
	}
	return trimmed, nil
}

// Run is Output for commands whose output only matters at debug level.
func (g Git) Run(ctx context.Context, args ...string) error {
	out, err := g.Output(ctx, args...)
	if err != nil {
		return err
	}
	if out != "" {
		zerolog.Ctx(ctx).Debug().Msg(out)
	}
	return nil
}

// RemoteURL returns the push URL configured for the named remote.
// Unconfigured remotes are an error; callers decide whether that is fatal.
func (g Git) RemoteURL(ctx context.Context, name string) (string, error) {
	return g.Output(ctx, "remote", "get-url", "--push", name)
}

// Prefix returns the repository-root-relative path of the working
// directory, with a trailing slash, or "" at the repository root.
func (g Git) Prefix(ctx context.Context) (string, error) {
	return g.Output(ctx, "rev-parse", "--show-prefix")
}

// Stage adds files to the index, forcing past ignore rules. Pointed at a
// fresh index file via WithIndexFile, the index afterwards holds exactly
// these files.
func (g Git) Stage(ctx context.Context, files []string) error {
	args := append([]string{"add", "-f", "--"}, files...)
	return g.Run(ctx, args...)
}

// WriteTree writes a tree object from the current index and returns its id.
func (g Git) WriteTree(ctx context.Context) (string, error) {
	return g.Output(ctx, "write-tree")
}

// CommitTree creates a parentless commit wrapping tree and returns the
// commit id.
func (g Git) CommitTree(ctx context.Context, tree, message string) (string, error) {
	return g.Output(ctx, "commit-tree", tree, "-m", message)
}

// PushRef force-pushes commit to ref on the remote at url, bypassing
// client-side hooks. The preview content is throwaway so there is nothing
// for a pre-push hook to validate.
func (g Git) PushRef(ctx context.Context, url, commit, ref string) error {
	return g.Run(ctx, "push", "--no-verify", "--force", url, commit+":"+ref)
}
