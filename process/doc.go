// Package process runs transcription engine binaries as subprocesses with
// process-group cleanup and a SIGTERM-then-SIGKILL grace period. Backends
// that shell out to local engines (vosk, parakeet) are built on it.
package process
