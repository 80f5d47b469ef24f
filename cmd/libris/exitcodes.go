package main

// Exit codes used by all commands.
const (
	ExitSuccess       = 0 // Success
	ExitError         = 1 // General error (bad arguments, I/O failure)
	ExitConfigError   = 2 // Configuration error (no library found, invalid config)
	ExitDataError     = 3 // Data error (malformed collection or graph, failed check)
	ExitOllamaError   = 4 // Ollama endpoint not reachable
	ExitModelNotFound = 5 // Resolved model not installed
)
