package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexID = regexp.MustCompile(`^[0-9a-f]{40}$`)

// trun runs a command in dir and fails the test on error.
func trun(t *testing.T, dir string, name string, args ...string) string {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "%s %s: %s", name, strings.Join(args, " "), out)
	return strings.TrimSpace(string(out))
}

// newRepo initializes a git repository with a committer identity.
func newRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	trun(t, dir, "git", "init", "-q", ".")
	trun(t, dir, "git", "config", "user.name", "tester")
	trun(t, dir, "git", "config", "user.email", "tester@example.com")
	return dir
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755), "making parent dir")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "writing file")
}

func TestOutputTrimsAndErrors(t *testing.T) {
	ctx := context.Background()
	dir := newRepo(t)
	g := New(dir)

	out, err := g.Output(ctx, "rev-parse", "--is-inside-work-tree")
	require.NoError(t, err, "rev-parse should succeed")
	assert.Equal(t, "true", out, "output should be trimmed")

	_, err = g.Output(ctx, "rev-parse", "--verify", "refs/heads/nope")
	require.Error(t, err, "verifying a missing ref should fail")
	assert.Contains(t, err.Error(), "git rev-parse", "error should name the subcommand")
}

func TestPrefix(t *testing.T) {
	ctx := context.Background()
	dir := newRepo(t)
	write(t, filepath.Join(dir, "docs", "keep"), "")

	prefix, err := New(dir).Prefix(ctx)
	require.NoError(t, err, "prefix at root")
	assert.Equal(t, "", prefix, "prefix should be empty at the repository root")

	prefix, err = New(filepath.Join(dir, "docs")).Prefix(ctx)
	require.NoError(t, err, "prefix in subdir")
	assert.Equal(t, "docs/", prefix, "prefix should be slash-terminated")
}

func TestRemoteURL(t *testing.T) {
	ctx := context.Background()
	dir := newRepo(t)
	trun(t, dir, "git", "remote", "add", "cros", "https://example-review.googlesource.com/repo")

	g := New(dir)
	url, err := g.RemoteURL(ctx, "cros")
	require.NoError(t, err, "reading configured remote")
	assert.Equal(t, "https://example-review.googlesource.com/repo", url, "push URL should match")

	_, err = g.RemoteURL(ctx, "missing")
	require.Error(t, err, "unconfigured remote should error")
}

func TestScratchIndexCommit(t *testing.T) {
	ctx := context.Background()
	dir := newRepo(t)
	write(t, filepath.Join(dir, "a.md"), "alpha")
	write(t, filepath.Join(dir, "docs", "b.md"), "beta")

	g := New(dir).WithIndexFile(filepath.Join(t.TempDir(), "index"))

	require.NoError(t, g.Stage(ctx, []string{"a.md", "docs/b.md"}), "staging into scratch index")

	tree, err := g.WriteTree(ctx)
	require.NoError(t, err, "writing tree")
	assert.Regexp(t, hexID, tree, "tree id should be 40 hex chars")

	commit, err := g.CommitTree(ctx, tree, "docs preview")
	require.NoError(t, err, "creating commit")
	assert.Regexp(t, hexID, commit, "commit id should be 40 hex chars")

	// Exactly the staged files, no history.
	names := trun(t, dir, "git", "ls-tree", "-r", "--name-only", commit)
	assert.Equal(t, "a.md\ndocs/b.md", names, "commit should hold exactly the staged files")
	parents := trun(t, dir, "git", "rev-list", "--parents", "-n", "1", commit)
	assert.Equal(t, commit, parents, "commit should have no parent")

	// The real index was never touched.
	staged := trun(t, dir, "git", "ls-files")
	assert.Empty(t, staged, "real index should stay empty")
}

func TestPushRef(t *testing.T) {
	ctx := context.Background()
	dir := newRepo(t)
	write(t, filepath.Join(dir, "a.md"), "alpha")

	bare := t.TempDir()
	trun(t, bare, "git", "init", "-q", "--bare", ".")

	g := New(dir).WithIndexFile(filepath.Join(t.TempDir(), "index"))
	require.NoError(t, g.Stage(ctx, []string{"a.md"}), "staging")
	tree, err := g.WriteTree(ctx)
	require.NoError(t, err, "writing tree")
	commit, err := g.CommitTree(ctx, tree, "docs preview")
	require.NoError(t, err, "creating commit")

	ref := "refs/sandbox/alice/preview_docs"
	require.NoError(t, g.PushRef(ctx, bare, commit, ref), "pushing ref")
	assert.Equal(t, commit, trun(t, bare, "git", "rev-parse", ref), "remote ref should point at the pushed commit")

	_, err = New(dir).Output(ctx, "push", filepath.Join(bare, "missing"), commit+":"+ref)
	require.Error(t, err, "pushing to a nonexistent remote should fail")
}
