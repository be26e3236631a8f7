package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pyarchinit/pyarchinit-installer/internal/audio"
	"github.com/pyarchinit/pyarchinit-installer/internal/channel"
	"github.com/pyarchinit/pyarchinit-installer/internal/changelog"
	"github.com/pyarchinit/pyarchinit-installer/internal/console"
	"github.com/pyarchinit/pyarchinit-installer/internal/embedded"
	"github.com/pyarchinit/pyarchinit-installer/internal/github"
	"github.com/pyarchinit/pyarchinit-installer/internal/installer"
	"github.com/pyarchinit/pyarchinit-installer/internal/locate"
	"github.com/pyarchinit/pyarchinit-installer/internal/paths"
	"github.com/pyarchinit/pyarchinit-installer/internal/process"
	"github.com/pyarchinit/pyarchinit-installer/internal/prompt"
	"github.com/pyarchinit/pyarchinit-installer/internal/selfupdate"
	"github.com/pyarchinit/pyarchinit-installer/internal/version"
)

const (
	installerVersion = "1.2.0"
	title            = "PyArchInit Installer"
	githubOwner      = "pyarchinit"
	githubRepo       = "pyarchinit"
)

//go:embed sounds/error.wav
var errorSound []byte

//go:embed sounds/downloading.wav
var downloadingSound []byte

//go:embed sounds/installing.wav
var installingSound []byte

//go:embed sounds/success.wav
var successSound []byte

//go:embed sounds/start.wav
var startSound []byte

//go:embed sounds/up_to_date.wav
var upToDateSound []byte

//go:embed sounds/select.wav
var selectSound []byte

var (
	channelFlag    string
	quietFlag      bool
	verboseFlag    bool
	versionFlag    bool
	nonInteractive bool
	offlineFlag    bool
	pluginsDirFlag string

	subcommand string
)

// soundPlayer adapts the embedded sound data to the prompt package
type soundPlayer struct{}

func (soundPlayer) Play(name string) {
	audio.Play(soundByName(name))
}

func (soundPlayer) PlayAsync(name string) {
	audio.PlayAsync(soundByName(name), 0.0)
}

func soundByName(name string) []byte {
	switch name {
	case "error":
		return errorSound
	case "downloading":
		return downloadingSound
	case "installing":
		return installingSound
	case "success":
		return successSound
	case "start":
		return startSound
	case "up_to_date":
		return upToDateSound
	case "select":
		return selectSound
	}
	return nil
}

func main() {
	// Global panic handler to prevent path leakage in error messages
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\nOops, something broke: %v\n", r)
			fmt.Fprintln(os.Stderr, "Let the developers know what happened.")
			audio.Play(errorSound)
			os.Exit(1)
		}
	}()

	// Configure log package to not include file paths
	log.SetFlags(0)

	// Check for subcommands before parsing flags
	var subcommandArgs []string
	if len(os.Args) > 1 && !strings.HasPrefix(os.Args[1], "-") {
		subcommand = os.Args[1]
		subcommandArgs = os.Args[2:]
	}

	flag.StringVar(&channelFlag, "channel", "stable", "Release channel: stable, dev, or a branch name")
	flag.BoolVar(&quietFlag, "quiet", false, "Suppress output")
	flag.BoolVar(&verboseFlag, "verbose", false, "Show detailed output")
	flag.BoolVar(&versionFlag, "version", false, "Show installer version and exit")
	flag.BoolVar(&nonInteractive, "non-interactive", false, "Non-interactive mode: no prompts, assume yes")
	flag.BoolVar(&offlineFlag, "offline", false, "Install the embedded plugin snapshot without network access")
	flag.StringVar(&pluginsDirFlag, "plugins-dir", "", "QGIS plugins directory (overrides auto-detection)")

	// Only parse flags if not using subcommand syntax
	if subcommand == "" {
		flag.Parse()
	} else {
		// Separate flags from positional args since flag.Parse stops at first non-flag
		var flagArgs []string
		var positionalArgs []string
		for _, arg := range subcommandArgs {
			if strings.HasPrefix(arg, "-") {
				flagArgs = append(flagArgs, arg)
			} else {
				positionalArgs = append(positionalArgs, arg)
			}
		}
		flag.CommandLine.Parse(append(flagArgs, positionalArgs...))
	}

	console.Init(quietFlag)
	audio.Init(quietFlag, verboseFlag, console.Log)
	console.Attach()
	console.SetTitle(title)

	// Clean up old installer binary if this is a post-update restart
	selfupdate.CleanupOld()

	if versionFlag {
		fmt.Printf("PyArchInit Installer v%s\n", installerVersion)
		return
	}

	pluginsDir := resolvePluginsDir()

	httpClient := &http.Client{
		Timeout: 120 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			DisableCompression:  true, // GitHub archives are already compressed
		},
	}
	client := github.NewClient(githubOwner, githubRepo, httpClient)

	// Check if channel was explicitly set
	channelExplicitlySet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "channel" {
			channelExplicitlySet = true
		}
	})

	// Load the saved channel unless one was given on the command line
	if !channelExplicitlySet {
		if loadedChannel, err := channel.Load(pluginsDir); err == nil {
			channelFlag = loadedChannel
			if !quietFlag && verboseFlag {
				fmt.Printf("Using saved channel: %s\n", channelFlag)
			}
		}
	}

	// An experimental branch may have been deleted since it was saved
	if !offlineFlag && !channel.IsBuiltIn(channelFlag) {
		if !branchExists(client, channelFlag) {
			oldChannel := channelFlag
			channelFlag = "dev"
			if err := channel.Save(pluginsDir, channelFlag); err == nil && !quietFlag {
				fmt.Printf("\nThe experimental branch '%s' no longer exists!\n", oldChannel)
				fmt.Printf("Automatically switching you to the 'dev' channel.\n\n")
			}
		} else if !quietFlag {
			fmt.Printf("WARNING: Using experimental branch: %s\n", channelFlag)
		}
	}

	switch subcommand {
	case "status":
		runStatus(pluginsDir, client)
		return
	case "switch":
		newChannel := ""
		if len(flag.Args()) > 0 {
			newChannel = flag.Args()[0]
		}
		runSwitch(pluginsDir, client, newChannel)
		return
	case "install", "":
		// Continue below
	default:
		fmt.Printf("Unknown subcommand: %s\n", subcommand)
		fmt.Println("\nAvailable subcommands:")
		fmt.Println("  status                   Show the installed plugin version and available updates")
		fmt.Println("  install                  Download and install the plugin (default)")
		fmt.Println("  switch [stable|dev]      Switch release channel (prompts if no channel specified)")
		os.Exit(1)
	}

	// Self-update logic (fails silently with short timeout)
	if !offlineFlag {
		selfupdate.Check(selfupdate.DefaultConfig(installerVersion))
	}

	runInstall(pluginsDir, client, channelExplicitlySet)
}

// resolvePluginsDir applies the flag override, falls back to auto-detection
// and finally to a folder picker on interactive runs
func resolvePluginsDir() string {
	if pluginsDirFlag != "" {
		return pluginsDirFlag
	}

	dir, err := paths.PluginsDir()
	if err == nil {
		return dir
	}

	if nonInteractive {
		fatalError("Could not locate the QGIS plugins directory: %v", err)
	}

	fmt.Printf("Could not locate the QGIS plugins directory: %v\n", err)
	selected, selErr := prompt.SelectFolder("", promptConfig())
	if selErr != nil {
		fatalError("No plugins directory selected: %v", selErr)
	}
	return selected
}

func promptConfig() prompt.Config {
	return prompt.Config{
		NonInteractive:   nonInteractive,
		Sound:            soundPlayer{},
		GetConsoleWindow: console.GetWindow,
	}
}

func branchExists(client *github.Client, name string) bool {
	branches, err := client.GetBranches()
	if err != nil {
		// Network trouble is not a reason to discard the saved channel
		return true
	}
	for _, branch := range branches {
		if branch.Name == name {
			return true
		}
	}
	return false
}

// runStatus prints the installed version and what the current channel offers
func runStatus(pluginsDir string, client *github.Client) {
	locator := locate.New(pluginsDir)
	info := locator.Find()

	if info.Exists {
		fmt.Printf("Installed: PyArchInit v%s (%s)\n", info.Version, info.FolderName)
	} else {
		fmt.Println("PyArchInit is not installed.")
	}
	fmt.Printf("Channel:   %s\n", channelFlag)
	fmt.Printf("Plugins:   %s\n", pluginsDir)

	if offlineFlag {
		return
	}

	branch := channel.Branch(channelFlag)
	remote, err := changelog.FetchRemote(client, branch)
	if err != nil {
		fmt.Printf("Could not check for updates: %v\n", err)
		return
	}

	fmt.Printf("Available: v%s\n", remote.Version)
	if info.Exists && version.IsNewer(remote.Version, info.Version) {
		fmt.Println("\nAn update is available. Run the installer to update.")
	} else if info.Exists {
		fmt.Println("\nYou are up to date.")
		audio.Play(upToDateSound)
	}

	if verboseFlag {
		if summary := changelog.ForBranch(client, branch); summary != "" {
			fmt.Printf("\n%s", summary)
		}
	}
}

// runSwitch changes the saved release channel
func runSwitch(pluginsDir string, client *github.Client, newChannel string) {
	switch {
	case newChannel == "stable" || newChannel == "dev":
		fmt.Printf("Switching to %s channel...\n", newChannel)
	case newChannel == "":
		if nonInteractive {
			fmt.Println("Error: Channel must be specified in non-interactive mode.")
			fmt.Println("Usage: pyarchinit-installer switch <stable|dev>")
			os.Exit(1)
		}
		newChannel = prompt.ChannelMenu(channelDates(client), client.GetBranches, promptConfig())
	default:
		if !branchExists(client, newChannel) {
			fmt.Printf("Error: Invalid channel '%s'. Must be 'stable', 'dev', or an existing branch.\n", newChannel)
			audio.PlayAsync(errorSound, 0.0)
			console.WaitForKey("\nPress Enter to exit...", nonInteractive)
			os.Exit(1)
		}
		fmt.Printf("Switching to experimental branch '%s'...\n", newChannel)
	}

	if err := channel.Save(pluginsDir, newChannel); err != nil {
		fatalError("Failed to save channel preference: %v", err)
	}
	fmt.Printf("\nRelease channel changed to: %s\n", newChannel)
	fmt.Println("Run the installer again to install from the new channel.")
	console.WaitForKey("\nPress Enter to exit...", nonInteractive)
}

// channelDates fetches last-commit dates for the channel menu, degrading to
// an empty menu on network trouble
func channelDates(client *github.Client) prompt.ChannelInfo {
	info := prompt.ChannelInfo{ForFutureUpdates: true}
	if date, err := client.GetLastCommitDate(channel.MasterBranch); err == nil {
		info.StableDate = date
	}
	if date, err := client.GetLastCommitDate(channel.DevBranch); err == nil {
		info.DevDate = date
	}
	return info
}

// runInstall drives the full install workflow
func runInstall(pluginsDir string, client *github.Client, channelExplicitlySet bool) {
	inst := installer.New(installer.Config{
		PluginsDir: pluginsDir,
		Client:     client,
		DownloadProgress: func(bytesComplete, totalBytes int64, percentage int) {
			console.SetTitle(fmt.Sprintf("%s - Downloading: %d%%", title, percentage))
			if !quietFlag && !verboseFlag && totalBytes > 0 {
				fmt.Printf("\r%d%%    ", percentage)
			}
		},
	})

	existing := inst.Locate()

	// First run with no saved channel: let the user pick one
	if !channelExplicitlySet && !nonInteractive && !offlineFlag {
		if _, err := channel.Load(pluginsDir); err != nil {
			channelFlag = prompt.ChannelMenu(channelDates(client), client.GetBranches, promptConfig())
		}
	}

	if existing.Exists {
		console.Log("Found existing installation: PyArchInit v%s (%s)", existing.Version, existing.FolderName)
		if !prompt.Confirm(fmt.Sprintf("PyArchInit v%s is already installed. Replace it?", existing.Version), promptConfig()) {
			fmt.Println("Installation cancelled.")
			return
		}
	}

	if process.IsQGISRunning() {
		fmt.Println("\nQGIS appears to be running.")
		fmt.Println("The plugin can be replaced now, but QGIS must be restarted to load it.")
		if !prompt.Confirm("Continue anyway?", promptConfig()) {
			fmt.Println("Installation cancelled.")
			return
		}
	}

	if verboseFlag && !offlineFlag {
		if summary := changelog.ForBranch(client, channel.Branch(channelFlag)); summary != "" {
			fmt.Printf("\n%s\n", summary)
		}
	}

	audio.PlayAsync(startSound, 0.0)

	done := make(chan struct{})
	var installOK bool
	var installMsg string
	onDone := func(ok bool, msg string) {
		installOK = ok
		installMsg = msg
		close(done)
	}
	onProgress := func(message string) {
		switch message {
		case "Download complete. Installing...":
			if !quietFlag && !verboseFlag {
				fmt.Printf("\n")
			}
			audio.StopAll()
			audio.PlayAsyncLoop(installingSound, -1.5, true)
		case "Cleaning up...":
			audio.StopAll()
		}
		console.Log("%s", message)
		console.SetTitle(fmt.Sprintf("%s - %s", title, message))
	}

	if offlineFlag {
		if !embedded.HasData() {
			fatalError("This build has no embedded plugin snapshot. Rebuild with -tags embedded or run without -offline.")
		}
		console.Log("Installing embedded snapshot v%s...", embedded.GetVersion())
		inst.InstallArchive(context.Background(), embedded.Data(), "embedded", onProgress, onDone)
	} else {
		audio.PlayAsyncLoop(downloadingSound, 0.0, true)
		inst.Install(context.Background(), channelFlag, onProgress, onDone)
	}

	<-done
	audio.StopAll()
	console.SetTitle(title)

	if !installOK {
		fatalError("%s", installMsg)
	}

	// Remember the channel that was just installed
	if !offlineFlag {
		if err := channel.Save(pluginsDir, channelFlag); err != nil && verboseFlag {
			fmt.Printf("Warning: failed to save channel preference: %v\n", err)
		}
	}

	fmt.Printf("\n%s\n", installMsg)
	audio.Play(successSound)
	console.WaitForKey("\nPress Enter to exit...", nonInteractive)
}

// fatalError shows an error, plays a sound, and waits for acknowledgement in
// interactive mode
func fatalError(format string, args ...interface{}) {
	audio.PlayAsync(errorSound, 0.0)

	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	} else {
		fmt.Fprintln(os.Stderr, format)
	}

	console.WaitForKey("\nPress Enter to exit...", nonInteractive)
	os.Exit(1)
}
