// Package remote discovers which configured git remote a preview should be
// published through and derives the browsable URL for it.
package remote

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/previewdocs/pkg/git"
)

// Host fragments recognized in a remote's push URL. A remote pointing at
// either is publishable; everything else is skipped.
const (
	ReviewHost = "-review.googlesource.com"
	PlainHost  = ".googlesource.com"
)

// Descriptor is a resolved publish target: a remote name and the push URL
// git has configured for it.
type Descriptor struct {
	Name    string
	PushURL string
}

// Resolve walks names in order and returns the first remote whose push URL
// points at a googlesource host. Remotes that are not configured at all are
// skipped rather than failing, so a preference list can include remotes
// that only exist in some checkouts.
func Resolve(ctx context.Context, g git.Git, names []string) (Descriptor, error) {
	logger := zerolog.Ctx(ctx)

	for _, name := range names {
		url, err := g.RemoteURL(ctx, name)
		if err != nil {
			logger.Debug().Str("remote", name).Msg("remote not configured, skipping")
			continue
		}
		if strings.Contains(url, ReviewHost) || strings.Contains(url, PlainHost) {
			logger.Debug().Str("remote", name).Str("url", url).Msg("resolved publish remote")
			return Descriptor{Name: name, PushURL: url}, nil
		}
		logger.Debug().Str("remote", name).Str("url", url).Msg("remote is not a googlesource host, skipping")
	}

	return Descriptor{}, errors.Errorf("no googlesource remote found (tried %s)", strings.Join(names, ", "))
}

// BrowseURL rewrites the push URL from the review host to the plain
// hosting domain, where Gitiles renders the pushed tree. Only the first
// occurrence is rewritten; a URL already on the plain host passes through
// unchanged.
func (d Descriptor) BrowseURL() string {
	return strings.Replace(d.PushURL, ReviewHost, PlainHost, 1)
}
