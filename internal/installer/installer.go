package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/pyarchinit/pyarchinit-installer/internal/archive"
	"github.com/pyarchinit/pyarchinit-installer/internal/channel"
	"github.com/pyarchinit/pyarchinit-installer/internal/download"
	"github.com/pyarchinit/pyarchinit-installer/internal/github"
	"github.com/pyarchinit/pyarchinit-installer/internal/locate"
)

// ProgressFunc receives a human-readable progress message at each step boundary
type ProgressFunc func(message string)

// DoneFunc receives the terminal outcome of an install, exactly once per call
type DoneFunc func(success bool, message string)

// State tracks where an invocation is in the install pipeline
type State int32

const (
	StateIdle State = iota
	StateDownloading
	StateExtracting
	StateRemovingOld
	StateCopying
	StateCleaningUp
	StateDone
)

// zipName is the file name the downloaded archive is saved under
const zipName = "pyarchinit.zip"

// targetLocks serializes the remove-then-copy window per canonical target
// path, process-wide
var targetLocks sync.Map

func lockForTarget(target string) *sync.Mutex {
	mu, _ := targetLocks.LoadOrStore(filepath.Clean(target), &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Config holds the pieces an Installer needs
type Config struct {
	// PluginsDir is the QGIS python plugins directory
	PluginsDir string
	// Client provides archive URLs; required
	Client *github.Client
	// DownloadProgress, when set, receives transfer progress during the fetch
	DownloadProgress download.ProgressCallback
}

// Installer downloads a pyarchinit branch archive and replaces the installed
// plugin with it. Safe for concurrent use: a second Install against the same
// target while one is running is rejected with a busy error.
type Installer struct {
	cfg     Config
	locator *locate.Locator
	state   atomic.Int32
}

// New creates an Installer for the given configuration
func New(cfg Config) *Installer {
	return &Installer{
		cfg:     cfg,
		locator: locate.New(cfg.PluginsDir),
	}
}

// Locate returns a fresh snapshot of the existing installation
func (i *Installer) Locate() locate.Info {
	return i.locator.Find()
}

// State returns the pipeline state of the current (or last) invocation
func (i *Installer) State() State {
	return State(i.state.Load())
}

func (i *Installer) setState(s State) {
	i.state.Store(int32(s))
}

// Install downloads the branch for the given channel and replaces the
// installed plugin. It returns immediately; progress and the single terminal
// outcome are delivered on a separate goroutine. Cancelling the context is
// honored while downloading and before destructive steps, but refused once
// removal of the old installation has begun.
func (i *Installer) Install(ctx context.Context, ch string, progress ProgressFunc, done DoneFunc) {
	target := i.locator.TargetPath()
	mu := lockForTarget(target)
	if !mu.TryLock() {
		done(false, "Installation already in progress")
		return
	}

	go func() {
		defer mu.Unlock()
		success, message := i.run(ctx, ch, progress)
		done(success, message)
	}()
}

// InstallArchive installs from zip bytes already in hand (an embedded
// snapshot) through the same pipeline tail, skipping the download
func (i *Installer) InstallArchive(ctx context.Context, zipData []byte, label string, progress ProgressFunc, done DoneFunc) {
	target := i.locator.TargetPath()
	mu := lockForTarget(target)
	if !mu.TryLock() {
		done(false, "Installation already in progress")
		return
	}

	go func() {
		defer mu.Unlock()
		success, message := i.runArchive(ctx, zipData, label, progress)
		done(success, message)
	}()
}

// run executes the full pipeline for one invocation. All terminal outcomes
// funnel through the returned pair; a panic anywhere in the pipeline becomes
// an "Installation error" result rather than escaping to the caller.
func (i *Installer) run(ctx context.Context, ch string, progress ProgressFunc) (success bool, message string) {
	defer i.setState(StateDone)
	defer func() {
		if r := recover(); r != nil {
			success = false
			message = fmt.Sprintf("Installation error: %v", r)
		}
	}()

	branch := channel.Branch(ch)

	emit(progress, "Downloading %s branch...", ch)
	i.setState(StateDownloading)

	tempDir, err := os.MkdirTemp("", "pyarchinit-install-")
	if err != nil {
		return false, fmt.Sprintf("Installation error: %v", err)
	}
	defer os.RemoveAll(tempDir)

	zipPath := filepath.Join(tempDir, zipName)
	zipURL := i.cfg.Client.BranchZipURL(branch)
	if err := download.FileWithProgress(ctx, zipURL, zipPath, i.cfg.DownloadProgress); err != nil {
		if errors.Is(err, context.Canceled) {
			return false, "Installation cancelled"
		}
		return false, fmt.Sprintf("Download error: %v", err)
	}

	emit(progress, "Download complete. Installing...")

	return i.installFromZip(ctx, zipPath, tempDir, ch, progress)
}

func (i *Installer) runArchive(ctx context.Context, zipData []byte, label string, progress ProgressFunc) (success bool, message string) {
	defer i.setState(StateDone)
	defer func() {
		if r := recover(); r != nil {
			success = false
			message = fmt.Sprintf("Installation error: %v", r)
		}
	}()

	emit(progress, "Installing %s snapshot...", label)

	tempDir, err := os.MkdirTemp("", "pyarchinit-install-")
	if err != nil {
		return false, fmt.Sprintf("Installation error: %v", err)
	}
	defer os.RemoveAll(tempDir)

	zipPath := filepath.Join(tempDir, zipName)
	if err := os.WriteFile(zipPath, zipData, 0644); err != nil {
		return false, fmt.Sprintf("Installation error: %v", err)
	}

	return i.installFromZip(ctx, zipPath, tempDir, label, progress)
}

// installFromZip is the shared pipeline tail: extract, remove old, copy in,
// clean up, read back the installed version
func (i *Installer) installFromZip(ctx context.Context, zipPath, tempDir, label string, progress ProgressFunc) (bool, string) {
	emit(progress, "Extracting files...")
	i.setState(StateExtracting)

	extractDir := filepath.Join(tempDir, "extracted")
	if err := archive.Extract(zipPath, extractDir); err != nil {
		return false, fmt.Sprintf("Installation error: %v", err)
	}

	entries, err := archive.TopLevelEntries(extractDir)
	if err != nil {
		return false, fmt.Sprintf("Installation error: %v", err)
	}
	if len(entries) == 0 {
		return false, "No files found in downloaded archive"
	}

	// Branch archives wrap everything in one repo-branch directory; take the
	// first entry in listing order
	sourceDir := filepath.Join(extractDir, entries[0])

	if err := ctx.Err(); err != nil {
		return false, "Installation cancelled"
	}

	emit(progress, "Checking existing installation...")
	i.setState(StateRemovingOld)

	targetPath := i.locator.TargetPath()

	// From here until the copy completes, cancellation is refused: aborting
	// mid-removal would leave neither old nor new installation.
	existing := i.locator.Find()
	if existing.Exists {
		emit(progress, "Removing existing installation: %s...", existing.FolderName)
		if err := os.RemoveAll(existing.Path); err != nil {
			return false, fmt.Sprintf("Failed to remove existing installation: %v", err)
		}
	}

	// The locator may have matched a differently named folder while a
	// canonical one also lingers
	if _, err := os.Stat(targetPath); err == nil {
		emit(progress, "Removing old pyarchinit folder...")
		if err := os.RemoveAll(targetPath); err != nil {
			return false, fmt.Sprintf("Failed to remove existing installation: %v", err)
		}
	}

	emit(progress, "Copying new plugin files...")
	i.setState(StateCopying)

	if err := copyTree(sourceDir, targetPath); err != nil {
		return false, fmt.Sprintf("Installation error: %v", err)
	}

	emit(progress, "Cleaning up...")
	i.setState(StateCleaningUp)
	if err := os.RemoveAll(tempDir); err != nil {
		return false, fmt.Sprintf("Installation error: %v", err)
	}

	// Read back what landed on disk for the success message
	version := locate.VersionUnknown
	if info := i.locator.Find(); info.Exists {
		version = info.Version
	}

	return true, fmt.Sprintf("PyArchInit %s (v%s) installed successfully!\n\nPlease restart QGIS to load the plugin.", label, version)
}

// copyTree copies a directory tree. The destination must not exist: the
// pipeline is expected to have cleared it, and silently merging into leftover
// files would hide a removal failure.
func copyTree(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("target already exists: %s", dst)
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}
	if err := os.MkdirAll(dst, srcInfo.Mode()); err != nil {
		return fmt.Errorf("failed to create target: %w", err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("failed to read source: %w", err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := copyTree(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}

		if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}

	return nil
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", dst, err)
	}
	return nil
}

func emit(progress ProgressFunc, format string, args ...interface{}) {
	if progress != nil {
		progress(fmt.Sprintf(format, args...))
	}
}
