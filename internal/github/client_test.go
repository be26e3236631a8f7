package github

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestNewClient tests client creation
func TestNewClient(t *testing.T) {
	t.Run("with custom http client", func(t *testing.T) {
		customClient := &http.Client{Timeout: 10 * time.Second}
		client := NewClient("pyarchinit", "pyarchinit", customClient)

		if client == nil {
			t.Fatal("NewClient() returned nil")
		}

		if client.GetHTTPClient() != customClient {
			t.Error("NewClient() didn't use provided HTTP client")
		}
	})

	t.Run("with nil http client", func(t *testing.T) {
		client := NewClient("pyarchinit", "pyarchinit", nil)

		if client == nil {
			t.Fatal("NewClient() returned nil")
		}

		if client.GetHTTPClient() == nil {
			t.Error("NewClient() should create default HTTP client when nil is provided")
		}

		if client.GetHTTPClient().Timeout != 30*time.Second {
			t.Errorf("NewClient() default timeout = %v, want 30s", client.GetHTTPClient().Timeout)
		}
	})
}

// TestBranchZipURL tests archive URL construction, including raw slashes in
// feature branch names
func TestBranchZipURL(t *testing.T) {
	client := NewClient("pyarchinit", "pyarchinit", nil)

	tests := []struct {
		name   string
		branch string
		want   string
	}{
		{
			name:   "master branch",
			branch: "master",
			want:   "https://github.com/pyarchinit/pyarchinit/archive/refs/heads/master.zip",
		},
		{
			name:   "feature branch keeps raw slash",
			branch: "feature/qt6-migration",
			want:   "https://github.com/pyarchinit/pyarchinit/archive/refs/heads/feature/qt6-migration.zip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := client.BranchZipURL(tt.branch)
			if got != tt.want {
				t.Errorf("BranchZipURL(%q) = %q, want %q", tt.branch, got, tt.want)
			}
		})
	}
}

// TestGetRawURL tests raw URL construction
func TestGetRawURL(t *testing.T) {
	client := NewClient("pyarchinit", "pyarchinit", nil)

	got := client.GetRawURL("master", "metadata.txt")
	want := "https://raw.githubusercontent.com/pyarchinit/pyarchinit/master/metadata.txt"
	if got != want {
		t.Errorf("GetRawURL() = %q, want %q", got, want)
	}
}

// TestGetLatestCommit tests commit retrieval against a mock server
func TestGetLatestCommit(t *testing.T) {
	expectedCommit := Commit{
		SHA: "abc123def456",
		Commit: CommitInner{
			Author: CommitAuthor{
				Name: "Test Author",
				Date: time.Now().Format(time.RFC3339),
			},
			Message: "fix: site form crash",
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/repos/pyarchinit/pyarchinit/commits/") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(expectedCommit)
	}))
	defer server.Close()

	client := NewClient("pyarchinit", "pyarchinit", server.Client())
	client.SetBaseURLs(server.URL, "", "")

	commit, err := client.GetLatestCommit("master")
	if err != nil {
		t.Fatalf("GetLatestCommit() error = %v", err)
	}

	if commit.SHA != expectedCommit.SHA {
		t.Errorf("GetLatestCommit() SHA = %s, want %s", commit.SHA, expectedCommit.SHA)
	}
	if commit.Commit.Message != expectedCommit.Commit.Message {
		t.Errorf("GetLatestCommit() Message = %s, want %s", commit.Commit.Message, expectedCommit.Commit.Message)
	}
}

// TestGetLatestCommit_HTTPError tests non-200 handling
func TestGetLatestCommit_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "Not Found"})
	}))
	defer server.Close()

	client := NewClient("pyarchinit", "pyarchinit", server.Client())
	client.SetBaseURLs(server.URL, "", "")

	_, err := client.GetLatestCommit("missing-branch")
	if err == nil {
		t.Fatal("GetLatestCommit() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "HTTP 404") {
		t.Errorf("GetLatestCommit() error = %v, want HTTP 404", err)
	}
}

// TestGetBranches tests branch listing
func TestGetBranches(t *testing.T) {
	branches := []Branch{
		{Name: "master"},
		{Name: "feature/qt6-migration"},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/branches") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(branches)
	}))
	defer server.Close()

	client := NewClient("pyarchinit", "pyarchinit", server.Client())
	client.SetBaseURLs(server.URL, "", "")

	got, err := client.GetBranches()
	if err != nil {
		t.Fatalf("GetBranches() error = %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("GetBranches() returned %d branches, want 2", len(got))
	}
	if got[1].Name != "feature/qt6-migration" {
		t.Errorf("GetBranches()[1].Name = %q, want feature branch", got[1].Name)
	}
}

// TestFetchRawFile tests raw file retrieval
func TestFetchRawFile(t *testing.T) {
	content := "[general]\nname=pyarchinit\nversion=3.2.1\n"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pyarchinit/pyarchinit/master/metadata.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(content))
	}))
	defer server.Close()

	client := NewClient("pyarchinit", "pyarchinit", server.Client())
	client.SetBaseURLs("", server.URL, "")

	t.Run("existing file", func(t *testing.T) {
		data, err := client.FetchRawFile("master", "metadata.txt")
		if err != nil {
			t.Fatalf("FetchRawFile() error = %v", err)
		}
		if string(data) != content {
			t.Errorf("FetchRawFile() = %q, want %q", string(data), content)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := client.FetchRawFile("master", "nope.txt")
		if err == nil {
			t.Fatal("FetchRawFile() expected error for missing file, got nil")
		}
	})
}
