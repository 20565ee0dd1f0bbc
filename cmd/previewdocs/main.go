// Command previewdocs pushes a throwaway preview commit of the given
// documentation files to a per-user sandbox ref on a googlesource remote
// and opens the Gitiles-rendered result in a browser.
package main

import (
	"context"
	"os"

	"github.com/walteh/previewdocs/pkg/status"
)

func main() {
	ctx := context.Background()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		status.NewLogger(ctx).LogValidation(false, "preview failed", err)
		os.Exit(1)
	}
}
