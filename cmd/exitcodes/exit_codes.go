package exitcodes

const (
	// ================================
	// Platform-universal exit codes
	// ================================

	// ExitCodeSuccess indicates no errors or failures had occurred.
	ExitCodeSuccess = 0

	// ExitCodeGeneralError indicates some type of general error occurred.
	ExitCodeGeneralError = 1

	// ================================
	// Application-specific exit codes
	// ================================
	// Note: Despite not being standardized, exit codes 2-5 are often used for common use cases, so we avoid them.

	// ExitCodeHandledError indicates that an error occurred and was already reported to the user, so it should not be
	// printed again. Note that an error with error code ExitCodeGeneralError and ExitCodeHandledError are mutually
	// exclusive errors
	ExitCodeHandledError = 6

	// ExitCodeDivergence indicates the replayed program did not follow the recorded trace: it made a host call the
	// trace does not hold, passed different inputs, or left recorded calls unconsumed.
	ExitCodeDivergence = 7

	// ExitCodeReverted indicates the replayed program reverted or exited with an unknown status.
	ExitCodeReverted = 8
)
