package changelog

import (
	"fmt"
	"strings"

	"github.com/pyarchinit/pyarchinit-installer/internal/github"
	"github.com/pyarchinit/pyarchinit-installer/internal/metadata"
)

// FetchRemote fetches and parses the metadata.txt of a branch, giving the
// version and changelog the branch would install
func FetchRemote(client *github.Client, branch string) (*metadata.Plugin, error) {
	data, err := client.FetchRawFile(branch, metadata.FileName)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote metadata: %w", err)
	}
	return metadata.ParseBytes(data)
}

// FormatCommit formats a commit as a single what's-new line
func FormatCommit(commit github.Commit) string {
	lines := strings.Split(commit.Commit.Message, "\n")
	firstLine := strings.TrimSpace(lines[0])

	// Skip merge commits
	if strings.HasPrefix(strings.ToLower(firstLine), "merge ") {
		return ""
	}

	shortSHA := commit.SHA
	if len(shortSHA) > 7 {
		shortSHA = shortSHA[:7]
	}

	if firstLine == "" {
		return ""
	}
	return fmt.Sprintf("* %s (commit %s)", firstLine, shortSHA)
}

// ForBranch builds a what's-new block for a branch: the version it would
// install, its declared changelog, and the latest commit line. Partial data
// is fine; an empty string means nothing could be fetched.
func ForBranch(client *github.Client, branch string) string {
	var b strings.Builder

	if remote, err := FetchRemote(client, branch); err == nil {
		if remote.Version != "" {
			fmt.Fprintf(&b, "Available version: %s\n", remote.Version)
		}
		if remote.Changelog != "" {
			b.WriteString("\nChangelog:\n")
			for _, line := range strings.Split(strings.TrimSpace(remote.Changelog), "\n") {
				fmt.Fprintf(&b, "  %s\n", strings.TrimSpace(line))
			}
		}
	}

	if commit, err := client.GetLatestCommit(branch); err == nil {
		if line := FormatCommit(*commit); line != "" {
			fmt.Fprintf(&b, "\nLatest change:\n  %s\n", line)
			if date := commit.Commit.Author.Date; date != "" {
				fmt.Fprintf(&b, "  (%s)\n", date)
			}
		}
	}

	return b.String()
}
