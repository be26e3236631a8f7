package integration

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pyarchinit/pyarchinit-installer/internal/channel"
	"github.com/pyarchinit/pyarchinit-installer/internal/github"
	"github.com/pyarchinit/pyarchinit-installer/internal/installer"
	"github.com/pyarchinit/pyarchinit-installer/internal/locate"
	helpers "github.com/pyarchinit/pyarchinit-installer/testing"
)

// TestEnvironment represents a complete test environment
type TestEnvironment struct {
	T            *testing.T
	PluginsDir   string
	GitHubServer *helpers.MockGitHubServer
	GitHubClient *github.Client
	Installer    *installer.Installer
	Locator      *locate.Locator
	ChannelMgr   ChannelManager
}

// ChannelManager wraps channel operations for testing
type ChannelManager struct {
	baseDir string
}

// Save saves a channel
func (c *ChannelManager) Save(ch string) error {
	return channel.Save(c.baseDir, ch)
}

// Load loads the current channel
func (c *ChannelManager) Load() (string, error) {
	return channel.Load(c.baseDir)
}

// SetupTestEnvironment creates a complete test environment
func SetupTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	pluginsDir := t.TempDir()
	githubServer := helpers.NewMockGitHubServer(t)

	githubClient := github.NewClient("pyarchinit", "pyarchinit", &http.Client{})
	githubClient.SetBaseURLs(githubServer.URL, githubServer.URL, githubServer.URL)

	inst := installer.New(installer.Config{
		PluginsDir: pluginsDir,
		Client:     githubClient,
	})

	return &TestEnvironment{
		T:            t,
		PluginsDir:   pluginsDir,
		GitHubServer: githubServer,
		GitHubClient: githubClient,
		Installer:    inst,
		Locator:      locate.New(pluginsDir),
		ChannelMgr:   ChannelManager{baseDir: pluginsDir},
	}
}

// ServeBranch publishes a branch archive on the mock server
func (e *TestEnvironment) ServeBranch(branch, wrapper string, files map[string]string) {
	e.T.Helper()
	e.GitHubServer.SetArchive("pyarchinit", "pyarchinit", branch, helpers.BuildBranchZip(e.T, wrapper, files))
}

// Install runs one install to completion and returns the outcome
func (e *TestEnvironment) Install(ch string) (bool, string, []string) {
	e.T.Helper()

	var messages []string
	var success bool
	var message string
	done := make(chan struct{})

	e.Installer.Install(context.Background(), ch, func(m string) {
		messages = append(messages, m)
	}, func(ok bool, m string) {
		success = ok
		message = m
		close(done)
	})

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		e.T.Fatal("install did not finish in time")
	}

	return success, message, messages
}

// CreateFile creates a file with content under the plugins directory
func (e *TestEnvironment) CreateFile(relativePath, content string) error {
	e.T.Helper()

	fullPath := filepath.Join(e.PluginsDir, relativePath)
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return os.WriteFile(fullPath, []byte(content), 0644)
}

// ReadFile reads a file from under the plugins directory
func (e *TestEnvironment) ReadFile(relativePath string) (string, error) {
	e.T.Helper()

	data, err := os.ReadFile(filepath.Join(e.PluginsDir, relativePath))
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// FileExists checks if a file exists under the plugins directory
func (e *TestEnvironment) FileExists(relativePath string) bool {
	e.T.Helper()

	_, err := os.Stat(filepath.Join(e.PluginsDir, relativePath))
	return err == nil
}

// AssertFileContent asserts that a file has specific content
func (e *TestEnvironment) AssertFileContent(relativePath, expectedContent string) {
	e.T.Helper()

	content, err := e.ReadFile(relativePath)
	if err != nil {
		e.T.Fatalf("failed to read file %s: %v", relativePath, err)
	}

	if content != expectedContent {
		e.T.Errorf("file %s content = %q, want %q", relativePath, content, expectedContent)
	}
}
