package github

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultAPIURL      = "https://api.github.com"
	defaultRawURL      = "https://raw.githubusercontent.com"
	defaultDownloadURL = "https://github.com"
)

// Commit represents a GitHub commit
type Commit struct {
	SHA    string      `json:"sha"`
	Commit CommitInner `json:"commit"`
}

// CommitInner represents the commit details
type CommitInner struct {
	Author    CommitAuthor `json:"author"`
	Committer CommitAuthor `json:"committer"`
	Message   string       `json:"message"`
}

// CommitAuthor represents commit author information
type CommitAuthor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Date  string `json:"date"`
}

// Branch represents a GitHub branch
type Branch struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
		URL string `json:"url"`
	} `json:"commit"`
	Protected bool `json:"protected"`
}

// Client handles GitHub API requests for one repository
type Client struct {
	owner       string
	repo        string
	apiURL      string
	rawURL      string
	downloadURL string
	httpClient  *http.Client
}

// NewClient creates a new GitHub API client
func NewClient(owner, repo string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}
	return &Client{
		owner:       owner,
		repo:        repo,
		apiURL:      defaultAPIURL,
		rawURL:      defaultRawURL,
		downloadURL: defaultDownloadURL,
		httpClient:  httpClient,
	}
}

// SetBaseURLs overrides the GitHub endpoints (useful for testing).
// Empty strings leave the corresponding endpoint unchanged.
func (c *Client) SetBaseURLs(api, raw, download string) {
	if api != "" {
		c.apiURL = api
	}
	if raw != "" {
		c.rawURL = raw
	}
	if download != "" {
		c.downloadURL = download
	}
}

// SetHTTPClient sets the HTTP client (useful for testing)
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// GetHTTPClient returns the HTTP client (useful for testing)
func (c *Client) GetHTTPClient() *http.Client {
	return c.httpClient
}

// BranchZipURL returns the archive download URL for a branch. The branch name
// is substituted as-is: GitHub accepts raw slashes in this path segment, so
// feature branches like "feature/qt6-migration" must not be escaped.
func (c *Client) BranchZipURL(branch string) string {
	return fmt.Sprintf("%s/%s/%s/archive/refs/heads/%s.zip", c.downloadURL, c.owner, c.repo, branch)
}

// GetRawURL returns the raw URL for a file at a given ref
func (c *Client) GetRawURL(ref string, path string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", c.rawURL, c.owner, c.repo, ref, path)
}

// FetchRawFile fetches a file's content from a branch or tag
func (c *Client) FetchRawFile(ref string, path string) ([]byte, error) {
	resp, err := c.httpClient.Get(c.GetRawURL(ref, path))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: HTTP %d", path, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// GetLatestCommit fetches the latest commit for a given ref
func (c *Client) GetLatestCommit(ref string) (*Commit, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/commits/%s", c.apiURL, c.owner, c.repo, ref)
	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch commit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch commit: HTTP %d", resp.StatusCode)
	}

	var commit Commit
	if err := json.NewDecoder(resp.Body).Decode(&commit); err != nil {
		return nil, fmt.Errorf("failed to parse commit: %w", err)
	}

	return &commit, nil
}

// GetLastCommitDate fetches the last commit date for a given ref
func (c *Client) GetLastCommitDate(ref string) (string, error) {
	commit, err := c.GetLatestCommit(ref)
	if err != nil {
		return "", err
	}
	return commit.Commit.Author.Date, nil
}

// GetBranches fetches all branches from the repository
func (c *Client) GetBranches() ([]Branch, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/branches?per_page=100", c.apiURL, c.owner, c.repo)
	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch branches: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch branches: HTTP %d", resp.StatusCode)
	}

	var branches []Branch
	if err := json.NewDecoder(resp.Body).Decode(&branches); err != nil {
		return nil, fmt.Errorf("failed to parse branches: %w", err)
	}

	return branches, nil
}
