package utils

import (
	"bytes"
	"io"
	"os/exec"
	"sync"
)

// CommandOutput holds what a finished command wrote.
type CommandOutput struct {
	// Stdout is everything written to standard output.
	Stdout []byte
	// Stderr is everything written to standard error.
	Stderr []byte
	// Combined interleaves both streams in the order they were written.
	Combined []byte
}

// RunCommand runs command to completion and captures its output. If echo is non-nil, the combined output is also
// copied to it as it is written. The output is returned even when the command fails.
func RunCommand(command *exec.Cmd, echo io.Writer) (*CommandOutput, error) {
	var stdout, stderr, combined bytes.Buffer

	// Both streams write to the combined buffer from their own goroutines
	var combinedWriter io.Writer = &combined
	if echo != nil {
		combinedWriter = io.MultiWriter(&combined, echo)
	}
	combinedWriter = &synchronizedWriter{writer: combinedWriter}

	command.Stdout = io.MultiWriter(&stdout, combinedWriter)
	command.Stderr = io.MultiWriter(&stderr, combinedWriter)
	err := command.Run()

	return &CommandOutput{Stdout: stdout.Bytes(), Stderr: stderr.Bytes(), Combined: combined.Bytes()}, err
}

// synchronizedWriter serializes writes to the wrapped writer.
type synchronizedWriter struct {
	writer io.Writer
	mutex  sync.Mutex
}

func (s *synchronizedWriter) Write(p []byte) (n int, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.writer.Write(p)
}

// CommandExists returns a boolean indicating whether the named executable can be found in the PATH.
func CommandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
