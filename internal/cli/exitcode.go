package cli

// Exit codes returned by Run.
const (
	ExitSuccess = 0

	// ExitUserError covers bad arguments and unknown task ids.
	ExitUserError = 1

	// ExitBackendError covers an unreachable or failing server.
	ExitBackendError = 3
)
