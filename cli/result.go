package cli

// Exit codes returned through CommandError.
const (
	// ExitProblems means the statement was read but has structural problems.
	ExitProblems = 1

	// ExitUsage means the request could not be served, e.g. an unknown
	// conversion format.
	ExitUsage = 2
)

// CommandError signals a command failure with a specific exit code.
// Commands return this after handling all output (printing errors/warnings to stderr).
// Main centralizes exit handling instead of commands calling os.Exit directly.
type CommandError struct {
	exitCode int
	message  string
}

// NewCommandError creates a new CommandError with the given exit code.
func NewCommandError(exitCode int) *CommandError {
	return &CommandError{exitCode: exitCode}
}

// NewCommandErrorf creates a CommandError with a message for main to print.
func NewCommandErrorf(exitCode int, message string) *CommandError {
	return &CommandError{exitCode: exitCode, message: message}
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.message != "" {
		return e.message
	}
	return "command failed"
}

// ExitCode returns the exit code associated with this error.
func (e *CommandError) ExitCode() int {
	return e.exitCode
}

// Silent reports whether the command already printed everything there is to
// say about the failure.
func (e *CommandError) Silent() bool {
	return e.message == ""
}
