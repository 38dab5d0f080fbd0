package config

import (
	"fmt"

	"github.com/bhardwajRahul/krillclaw/pkg/types"
)

// ValidationError names the field that failed validation and why.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Validate checks cfg for the fatal-at-startup conditions of §6/§7: a
// missing API key for a provider that requires one, and out-of-range
// numeric knobs. Ollama takes no key, matching its unauthenticated wire
// dialect.
func Validate(cfg types.Config) []error {
	var errs []error

	if cfg.Provider != types.ProviderOllama && cfg.APIKey == "" {
		errs = append(errs, &ValidationError{
			Field:   "api_key",
			Message: fmt.Sprintf("no API key set for provider %q", cfg.Provider),
		})
	}
	if cfg.MaxTokens <= 0 {
		errs = append(errs, &ValidationError{Field: "max_tokens", Message: "must be positive"})
	}
	if cfg.MaxContextTokens <= 0 {
		errs = append(errs, &ValidationError{Field: "max_context_tokens", Message: "must be positive"})
	}
	if cfg.MaxTurns <= 0 {
		errs = append(errs, &ValidationError{Field: "max_turns", Message: "must be positive"})
	}
	switch cfg.TransportKind {
	case types.TransportHTTP, types.TransportBLE, types.TransportSerial:
	default:
		errs = append(errs, &ValidationError{Field: "transport", Message: fmt.Sprintf("unknown transport %q", cfg.TransportKind)})
	}
	if cfg.TransportKind == types.TransportSerial && cfg.SerialPort == "" {
		errs = append(errs, &ValidationError{Field: "serial_port", Message: "required when transport is serial"})
	}
	if cfg.TransportKind == types.TransportBLE && cfg.BLEDevice == "" {
		errs = append(errs, &ValidationError{Field: "ble_device", Message: "required when transport is ble"})
	}
	switch cfg.ToolProfile {
	case types.ProfileCoding, types.ProfileIoT, types.ProfileRobotics:
	default:
		errs = append(errs, &ValidationError{Field: "tool_profile", Message: fmt.Sprintf("unknown tool profile %q", cfg.ToolProfile)})
	}

	return errs
}
