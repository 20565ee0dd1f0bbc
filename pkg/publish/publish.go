// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package publish

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/pkg/browser"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/previewdocs/pkg/config"
	"github.com/walteh/previewdocs/pkg/git"
	"github.com/walteh/previewdocs/pkg/remote"
	"github.com/walteh/previewdocs/pkg/status"
)

const (
	// commitMessage is the fixed message on every preview commit.
	commitMessage = "docs preview"

	// refTool is the sandbox ref segment the docs renderer serves
	// previews from. It predates this binary's name and must not change
	// with it.
	refTool = "preview_docs"
)

// Seams for tests; production code never reassigns these.
var (
	currentUser = user.Current
	openURL     = browser.OpenURL
)

// 🎛️ Options configures a Publisher
type Options struct {
	Config *config.Config
	Git    git.Git
	Status *status.Logger

	// RemoteName, when set, selects that git remote directly instead of
	// walking the configured preference order.
	RemoteName string

	// NoOpen suppresses the browser launch.
	NoOpen bool
}

// 📤 Publisher pushes preview commits to a sandbox ref
type Publisher struct {
	opts Options
}

// 🏗️ New creates a new Publisher
func New(opts Options) (*Publisher, error) {
	if opts.Config == nil {
		return nil, errors.Errorf("config is required")
	}
	if opts.Status == nil {
		return nil, errors.Errorf("status logger is required")
	}
	return &Publisher{opts: opts}, nil
}

// SandboxRef returns the ref previews are pushed to for username.
func SandboxRef(username string) string {
	return fmt.Sprintf("refs/sandbox/%s/%s", username, refTool)
}

// 🚀 Publish builds a parentless commit holding exactly files (plus the
// navigation file when present at the repository root), force-pushes it to
// the invoking user's sandbox ref, and returns the browsable URL for it.
// Every error is terminal: nothing is retried and there is no partial
// success beyond the sandbox ref a later invocation will overwrite anyway.
func (p *Publisher) Publish(ctx context.Context, files []string) (string, error) {
	logger := zerolog.Ctx(ctx)

	if len(files) == 0 {
		return "", errors.Errorf("no files to preview")
	}

	u, err := currentUser()
	if err != nil {
		return "", errors.Errorf("resolving current user: %w", err)
	}
	// The sandbox namespace is keyed by username; a root-owned ref would
	// shadow every user on machines that share it.
	if u.Uid == "0" || u.Username == "root" {
		return "", errors.Errorf("refusing to publish a preview as root")
	}

	if err := checkFiles(ctx, files); err != nil {
		return "", err
	}

	rem, err := p.resolveRemote(ctx)
	if err != nil {
		return "", err
	}
	p.opts.Status.Step(fmt.Sprintf("publishing via %s (%s)", rem.Name, rem.PushURL))

	scratch, err := os.MkdirTemp("", "previewdocs-")
	if err != nil {
		return "", errors.Errorf("creating scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	g := p.opts.Git.WithIndexFile(filepath.Join(scratch, "index"))

	prefix, err := g.Prefix(ctx)
	if err != nil {
		return "", errors.Errorf("finding repository prefix: %w", err)
	}

	fileSet := append([]string(nil), files...)
	if nav := p.navPath(prefix); nav != "" {
		logger.Debug().Str("nav", nav).Msg("bundling navigation file")
		fileSet = append(fileSet, nav)
	}

	commit, err := buildCommit(ctx, g, fileSet)
	if err != nil {
		return "", err
	}

	ref := SandboxRef(u.Username)
	if err := g.PushRef(ctx, rem.PushURL, commit, ref); err != nil {
		return "", errors.Errorf("pushing preview: %w", err)
	}
	p.opts.Status.Success("pushed " + ref)

	url := rem.BrowseURL() + "/+/" + commit + "/" + prefix
	if len(files) == 1 {
		// Point straight at the rendered file, spelled the way the
		// caller spelled it.
		url += files[0]
	}

	if !p.opts.NoOpen && p.opts.Config.OpenBrowserEnabled() {
		if err := openURL(url); err != nil {
			// The printed URL is the deliverable; a headless machine is
			// not an error.
			p.opts.Status.Warn("could not open browser: " + err.Error())
		}
	}

	return url, nil
}

// 🔍 checkFiles stats every requested file up front so a typo surfaces as
// a file error instead of git staging noise.
func checkFiles(ctx context.Context, files []string) error {
	eg, _ := errgroup.WithContext(ctx)
	for _, f := range files {
		f := f
		eg.Go(func() error {
			if _, err := os.Stat(f); err != nil {
				return errors.Errorf("checking %s: %w", f, err)
			}
			return nil
		})
	}
	return eg.Wait()
}

// 🧭 resolveRemote picks the publish remote: the explicit override when
// set, otherwise the first configured googlesource remote in preference
// order.
func (p *Publisher) resolveRemote(ctx context.Context) (remote.Descriptor, error) {
	if p.opts.RemoteName != "" {
		url, err := p.opts.Git.RemoteURL(ctx, p.opts.RemoteName)
		if err != nil {
			return remote.Descriptor{}, errors.Errorf("reading remote %s: %w", p.opts.RemoteName, err)
		}
		return remote.Descriptor{Name: p.opts.RemoteName, PushURL: url}, nil
	}
	return remote.Resolve(ctx, p.opts.Git, p.opts.Config.Remotes)
}

// navPath returns the working-directory-relative path of the repository
// root navigation file, or "" when the repository has none.
func (p *Publisher) navPath(prefix string) string {
	nav := strings.Repeat("../", strings.Count(prefix, "/")) + p.opts.Config.NavFile
	if _, err := os.Stat(nav); err != nil {
		return ""
	}
	return nav
}

// 🧱 buildCommit stages fileSet into the scratch index, writes a tree from
// it and wraps the tree in a parentless commit, so the pushed snapshot
// carries none of the repository's history.
func buildCommit(ctx context.Context, g git.Git, fileSet []string) (string, error) {
	if err := g.Stage(ctx, fileSet); err != nil {
		return "", errors.Errorf("staging preview files: %w", err)
	}

	tree, err := g.WriteTree(ctx)
	if err != nil {
		return "", errors.Errorf("writing preview tree: %w", err)
	}

	commit, err := g.CommitTree(ctx, tree, commitMessage)
	if err != nil {
		return "", errors.Errorf("creating preview commit: %w", err)
	}

	return commit, nil
}
