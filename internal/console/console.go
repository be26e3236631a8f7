package console

import (
	"bufio"
	"fmt"
	"os"
)

var (
	attached bool
	quiet    bool
)

// Init configures the console package
func Init(quietMode bool) {
	quiet = quietMode
}

// SetQuiet changes quiet mode at runtime
func SetQuiet(q bool) {
	quiet = q
}

// IsAttached returns whether a console is attached
func IsAttached() bool {
	return attached
}

// WaitForKey prompts the user to press Enter. Does nothing in non-interactive mode.
func WaitForKey(prompt string, nonInteractive bool) {
	if nonInteractive {
		return
	}
	fmt.Print(prompt)
	_, _ = bufio.NewReader(os.Stdin).ReadBytes('\n')
}

// Log prints a message if not in quiet mode
func Log(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}
