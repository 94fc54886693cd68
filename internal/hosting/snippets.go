package hosting

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/go-github/v72/github"

	"issuescout/internal/utils"
)

const (
	// MaxSnippetBlobSize excludes blobs of this many bytes or more.
	MaxSnippetBlobSize = 10000
	// MaxSnippetFiles is how many ranked files are sampled.
	MaxSnippetFiles = 20
	// SnippetChars is how much of each sampled file is kept.
	SnippetChars = 400
)

var readmePattern = regexp.MustCompile(`(?i)readme`)

// RelevanceScore ranks a path: 0 for README-like paths, 1 for paths under
// src, 2 for everything else.
func RelevanceScore(path string) int {
	switch {
	case readmePattern.MatchString(path):
		return 0
	case strings.HasPrefix(path, "src"):
		return 1
	default:
		return 2
	}
}

// SelectSnippetEntries keeps blobs smaller than MaxSnippetBlobSize, orders
// them by RelevanceScore (stable, so listing order breaks ties) and returns
// at most MaxSnippetFiles of them.
func SelectSnippetEntries(entries []*github.TreeEntry) []*github.TreeEntry {
	files := make([]*github.TreeEntry, 0, len(entries))
	for _, e := range entries {
		if e == nil || e.GetType() != "blob" || e.GetSize() >= MaxSnippetBlobSize {
			continue
		}
		files = append(files, e)
	}
	sort.SliceStable(files, func(i, j int) bool {
		return RelevanceScore(files[i].GetPath()) < RelevanceScore(files[j].GetPath())
	})
	if len(files) > MaxSnippetFiles {
		files = files[:MaxSnippetFiles]
	}
	return files
}

// CollectSnippets samples the repository's most relevant small files at
// HEAD. It never fails: a missing tree, a failed blob or a panic anywhere
// degrades to fewer (or no) snippets.
func (c *Client) CollectSnippets(ctx context.Context, owner, repo string) (snippets []FileSnippet) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("snippet collection panicked", "owner", owner, "repo", repo, "panic", r)
			snippets = nil
		}
	}()

	tree, err := c.headTree(ctx, owner, repo)
	if err != nil {
		c.logger.Debug("tree listing failed", "owner", owner, "repo", repo, "error", err)
		return nil
	}
	for _, entry := range SelectSnippetEntries(tree.Entries) {
		if ctx.Err() != nil {
			break
		}
		content, ok := c.blobText(ctx, owner, repo, entry.GetSHA())
		if !ok {
			continue
		}
		snippets = append(snippets, FileSnippet{
			Path:    entry.GetPath(),
			Content: utils.Truncate(content, SnippetChars),
		})
	}
	return snippets
}

func (c *Client) headTree(ctx context.Context, owner, repo string) (*github.Tree, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()
	tree, resp, err := c.gh.Git.GetTree(callCtx, owner, repo, "HEAD", true)
	if err != nil {
		return nil, upstreamError(resp, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("empty tree response")
	}
	return tree, nil
}

func (c *Client) blobText(ctx context.Context, owner, repo, sha string) (string, bool) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()
	blob, _, err := c.gh.Git.GetBlob(callCtx, owner, repo, sha)
	if err != nil || blob == nil || blob.GetEncoding() != "base64" {
		return "", false
	}
	raw := strings.NewReplacer("\n", "", "\r", "").Replace(blob.GetContent())
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", false
	}
	return strings.ToValidUTF8(string(decoded), "�"), true
}

// RenderSnippets lays snippets out as the repository context block of the prompt.
func RenderSnippets(snippets []FileSnippet) string {
	var b strings.Builder
	for _, s := range snippets {
		fmt.Fprintf(&b, "\n--- FILE: %s ---\n%s\n", s.Path, s.Content)
	}
	return b.String()
}
