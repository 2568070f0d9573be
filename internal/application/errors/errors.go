// Package apperrors defines application-level error types.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrAccessDenied marks a repository the credentials in use cannot read.
var ErrAccessDenied = errors.New("repository access denied")

// ConfigurationError indicates profile selection or configuration input is
// unusable. It is fatal and never retried.
type ConfigurationError struct {
	Cause   error
	Aspect  string
	Message string
	// Hint tells the user how to fix the problem.
	Hint string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "configuration error (%s): %s", e.Aspect, e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(aspect, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		Aspect:  aspect,
		Message: message,
		Cause:   cause,
	}
}

// WithHint attaches a remediation hint.
func (e *ConfigurationError) WithHint(hint string) *ConfigurationError {
	e.Hint = hint
	return e
}

// SourceFetchError indicates a source tree could not be fetched. Nothing is
// left at the tree's final location.
type SourceFetchError struct {
	Cause      error
	Key        string
	Repository string
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("source fetch failed for %s from %s: %v", e.Key, e.Repository, e.Cause)
}

func (e *SourceFetchError) Unwrap() error {
	return e.Cause
}

// NewSourceFetchError creates a new source fetch error.
func NewSourceFetchError(key, repository string, cause error) *SourceFetchError {
	return &SourceFetchError{Key: key, Repository: repository, Cause: cause}
}

// EnvironmentSetupError indicates an environment could not be created. The
// partial environment has been discarded.
type EnvironmentSetupError struct {
	Cause error
	Key   string
	Hint  string
}

func (e *EnvironmentSetupError) Error() string {
	return fmt.Sprintf("environment setup failed for %s: %v", e.Key, e.Cause)
}

func (e *EnvironmentSetupError) Unwrap() error {
	return e.Cause
}

// NewEnvironmentSetupError creates a new environment setup error.
func NewEnvironmentSetupError(key string, cause error) *EnvironmentSetupError {
	return &EnvironmentSetupError{Key: key, Cause: cause}
}

// ResourceBusyError indicates another process held a key's lock for longer
// than the bounded wait. Retrying is safe.
type ResourceBusyError struct {
	Key    string
	Waited time.Duration
}

func (e *ResourceBusyError) Error() string {
	return fmt.Sprintf("resource busy: %s is locked by another process (waited %s)", e.Key, e.Waited)
}

// NewResourceBusyError creates a new resource busy error.
func NewResourceBusyError(key string, waited time.Duration) *ResourceBusyError {
	return &ResourceBusyError{Key: key, Waited: waited}
}

// EnterpriseAccessError indicates the enterprise repository is not
// configured or not readable with the current credentials.
type EnterpriseAccessError struct {
	Cause      error
	Repository string
}

func (e *EnterpriseAccessError) Error() string {
	if e.Repository == "" {
		return "enterprise access error: no enterprise repository configured"
	}
	if e.Cause != nil {
		return fmt.Sprintf("enterprise access error: cannot read %s: %v", e.Repository, e.Cause)
	}
	return fmt.Sprintf("enterprise access error: cannot read %s", e.Repository)
}

func (e *EnterpriseAccessError) Unwrap() error {
	return e.Cause
}

// NewEnterpriseAccessError creates a new enterprise access error.
func NewEnterpriseAccessError(repository string, cause error) *EnterpriseAccessError {
	return &EnterpriseAccessError{Repository: repository, Cause: cause}
}

// SubprocessError indicates an external command failed.
type SubprocessError struct {
	Command  []string
	Stdout   string
	Stderr   string
	ExitCode int
}

func (e *SubprocessError) Error() string {
	msg := fmt.Sprintf("command %q exited with code %d", strings.Join(e.Command, " "), e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + lastLines(stderr, 5)
	}
	return msg
}

// NewSubprocessError creates a new subprocess error.
func NewSubprocessError(command []string, exitCode int, stdout, stderr string) *SubprocessError {
	return &SubprocessError{
		Command:  command,
		ExitCode: exitCode,
		Stdout:   stdout,
		Stderr:   stderr,
	}
}

func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// Kind names the error kind for top-level reporting.
func Kind(err error) string {
	var (
		cfgErr   *ConfigurationError
		fetchErr *SourceFetchError
		envErr   *EnvironmentSetupError
		busyErr  *ResourceBusyError
		entErr   *EnterpriseAccessError
		subErr   *SubprocessError
	)

	switch {
	case errors.As(err, &entErr):
		return "EnterpriseAccessError"
	case errors.As(err, &busyErr):
		return "ResourceBusyError"
	case errors.As(err, &cfgErr):
		return "ConfigurationError"
	case errors.As(err, &fetchErr):
		return "SourceFetchError"
	case errors.As(err, &envErr):
		return "EnvironmentSetupError"
	case errors.As(err, &subErr):
		return "SubprocessError"
	default:
		return "Error"
	}
}

// Hint returns the remediation hint carried by err, if any.
func Hint(err error) string {
	var (
		cfgErr  *ConfigurationError
		envErr  *EnvironmentSetupError
		busyErr *ResourceBusyError
		entErr  *EnterpriseAccessError
	)

	switch {
	case errors.As(err, &entErr):
		return "set repositories.enterprise in config.yaml and make sure your git credentials can read it"
	case errors.As(err, &busyErr):
		return "another rodoo process is preparing this resource; retry once it finishes"
	case errors.As(err, &cfgErr):
		return cfgErr.Hint
	case errors.As(err, &envErr):
		return envErr.Hint
	default:
		return ""
	}
}
