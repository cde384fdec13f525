// Package envutil provides utilities for reading and validating environment variables.
package envutil

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/usefultrainer/freeze/pkg/console"
	"github.com/usefultrainer/freeze/pkg/logger"
)

// GetIntFromEnv reads an integer value from an environment variable,
// validates it against min/max bounds, and returns a default value if invalid.
//
// Returns the parsed integer value, or defaultValue if:
//   - Environment variable is not set
//   - Value cannot be parsed as an integer
//   - Value is outside the [minValue, maxValue] range
//
// Invalid values trigger warning messages to stderr.
func GetIntFromEnv(envVar string, defaultValue, minValue, maxValue int, log *logger.Logger) int {
	envValue := os.Getenv(envVar)
	if envValue == "" {
		return defaultValue
	}

	val, err := strconv.Atoi(envValue)
	if err != nil {
		fmt.Fprintln(os.Stderr, console.FormatWarningMessage(
			fmt.Sprintf("Invalid %s value '%s' (must be a number), using default %d", envVar, envValue, defaultValue),
		))
		return defaultValue
	}

	if val < minValue || val > maxValue {
		fmt.Fprintln(os.Stderr, console.FormatWarningMessage(
			fmt.Sprintf("%s value %d is out of bounds (must be %d-%d), using default %d", envVar, val, minValue, maxValue, defaultValue),
		))
		return defaultValue
	}

	if log != nil {
		log.Printf("Using %s=%d", envVar, val)
	}
	return val
}

// GetBoolFromEnv reads a boolean from an environment variable. It accepts the
// forms understood by strconv.ParseBool plus "yes"/"no" and "on"/"off".
// Unset or unparsable values yield defaultValue; unparsable ones also warn.
func GetBoolFromEnv(envVar string, defaultValue bool, log *logger.Logger) bool {
	envValue := strings.TrimSpace(os.Getenv(envVar))
	if envValue == "" {
		return defaultValue
	}

	var val bool
	switch strings.ToLower(envValue) {
	case "yes", "on":
		val = true
	case "no", "off":
		val = false
	default:
		parsed, err := strconv.ParseBool(envValue)
		if err != nil {
			fmt.Fprintln(os.Stderr, console.FormatWarningMessage(
				fmt.Sprintf("Invalid %s value '%s' (must be true or false), using default %t", envVar, envValue, defaultValue),
			))
			return defaultValue
		}
		val = parsed
	}

	if log != nil {
		log.Printf("Using %s=%t", envVar, val)
	}
	return val
}

// GetStringFromEnv returns the trimmed value of envVar, or defaultValue when it
// is unset or blank.
func GetStringFromEnv(envVar, defaultValue string, log *logger.Logger) string {
	envValue := strings.TrimSpace(os.Getenv(envVar))
	if envValue == "" {
		return defaultValue
	}
	if log != nil {
		log.Printf("Using %s=%s", envVar, envValue)
	}
	return envValue
}
