package remote

import (
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/previewdocs/pkg/git"
)

// newRepo initializes a git repository with the given name->URL remotes.
func newRepo(t *testing.T, remotes map[string]string) git.Git {
	t.Helper()
	dir := t.TempDir()
	trun(t, dir, "git", "init", "-q", ".")
	for name, url := range remotes {
		trun(t, dir, "git", "remote", "add", name, url)
	}
	return git.New(dir)
}

func trun(t *testing.T, dir string, name string, args ...string) {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "%s %s: %s", name, strings.Join(args, " "), out)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		remotes     map[string]string
		order       []string
		wantName    string
		wantURL     string
		wantErr     bool
		errContains string
	}{
		{
			name: "first_preference_wins",
			remotes: map[string]string{
				"cros":   "https://example-review.googlesource.com/repo",
				"origin": "https://example.googlesource.com/repo",
			},
			order:    []string{"cros", "cros-internal", "origin"},
			wantName: "cros",
			wantURL:  "https://example-review.googlesource.com/repo",
		},
		{
			name: "unconfigured_remotes_are_skipped",
			remotes: map[string]string{
				"origin": "https://example.googlesource.com/repo",
			},
			order:    []string{"cros", "cros-internal", "origin"},
			wantName: "origin",
			wantURL:  "https://example.googlesource.com/repo",
		},
		{
			name: "non_googlesource_remotes_are_skipped",
			remotes: map[string]string{
				"cros":   "https://github.com/example/repo",
				"origin": "https://example.googlesource.com/repo",
			},
			order:    []string{"cros", "origin"},
			wantName: "origin",
			wantURL:  "https://example.googlesource.com/repo",
		},
		{
			name: "no_matching_remote",
			remotes: map[string]string{
				"origin": "https://github.com/example/repo",
			},
			order:       []string{"cros", "origin"},
			wantErr:     true,
			errContains: "no googlesource remote found",
		},
		{
			name:        "no_remotes_at_all",
			remotes:     nil,
			order:       []string{"cros", "origin"},
			wantErr:     true,
			errContains: "tried cros, origin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			g := newRepo(t, tt.remotes)

			d, err := Resolve(ctx, g, tt.order)
			if tt.wantErr {
				require.Error(t, err, "expected resolution to fail")
				assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
				return
			}

			require.NoError(t, err, "resolving remote")
			assert.Equal(t, tt.wantName, d.Name, "remote name should match")
			assert.Equal(t, tt.wantURL, d.PushURL, "push URL should match")
		})
	}
}

func TestBrowseURL(t *testing.T) {
	tests := []struct {
		name string
		push string
		want string
	}{
		{
			name: "review_host_rewritten",
			push: "https://example-review.googlesource.com/repo",
			want: "https://example.googlesource.com/repo",
		},
		{
			name: "plain_host_unchanged",
			push: "https://example.googlesource.com/repo",
			want: "https://example.googlesource.com/repo",
		},
		{
			name: "only_first_occurrence_rewritten",
			push: "https://a-review.googlesource.com/a-review.googlesource.com",
			want: "https://a.googlesource.com/a-review.googlesource.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Descriptor{Name: "cros", PushURL: tt.push}
			assert.Equal(t, tt.want, d.BrowseURL(), "browse URL should match")
		})
	}
}
