package main

import (
	"fmt"
	"os"

	"github.com/crytic/stylus-replay/cmd"
	"github.com/crytic/stylus-replay/cmd/exitcodes"
)

func main() {
	// Run our root CLI command, which contains all underlying command logic and will handle parsing/invocation.
	err := cmd.Execute()

	// Obtain the actual error and exit code from the error, if any.
	var exitCode int
	err, exitCode = exitcodes.GetInnerErrorAndExitCode(err)

	// Commands log the errors they handle, so only unhandled errors are printed.
	if err != nil && exitCode == exitcodes.ExitCodeGeneralError {
		fmt.Println(err)
	}

	// If we have a non-success exit code, exit with it.
	if exitCode != exitcodes.ExitCodeSuccess {
		os.Exit(exitCode)
	}
}
