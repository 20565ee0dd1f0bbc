/*
Package publish implements the preview pipeline for previewdocs.

	+----------+    +-----------+    +---------------+    +----------+
	|  Files   +--->+  Scratch  +--->+  Root Commit  +--->+  Push to |
	| (+ nav)  |    |   Index   |    | (no parents)  |    | sandbox  |
	+----------+    +-----------+    +---------------+    +----+-----+
	                                                           |
	                                               +-----------+-----------+
	                                               |  Gitiles preview URL  |
	                                               +-----------------------+

🎯 Purpose:
- Builds an isolated commit holding exactly the requested files
- Force-pushes it to refs/sandbox/<user>/preview_docs
- Derives and opens the Gitiles URL for the pushed tree

🔄 Flow:
1. Checks the invoking user (never root) and the requested files
2. Resolves the publish remote from the preference order
3. Stages into a scratch index inside a throwaway temp dir
4. Writes tree, wraps it in a parentless commit, pushes it
5. Prints the URL and (optionally) opens a browser

📝 Design Philosophy:
The pipeline never touches the caller's history, working tree or staging
index: isolation comes from GIT_INDEX_FILE pointing into the scratch dir,
which is removed on every exit path. Errors are terminal; the only failure
that is swallowed is the browser launch, because the printed URL is the
deliverable.
*/
package publish
