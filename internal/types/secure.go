package types

// redactedPlaceholder replaces secret values in logs and serialization.
const redactedPlaceholder = "***REDACTED***"

// redactedJSON is the pre-computed JSON encoding of the redacted placeholder.
var redactedJSON = []byte(`"***REDACTED***"`)

// SecretString is a string type that prevents accidental logging or
// serialization of sensitive values (database URLs with credentials, API
// keys). It overrides String() and MarshalJSON() to return a redacted
// placeholder, so secrets never leak through fmt functions, structured log
// attributes, or JSON output.
//
// Use Unmask() to retrieve the raw plaintext value when it is genuinely
// needed, e.g. when handing a connection string to the database driver.
type SecretString string

// String returns a redacted placeholder instead of the raw value. Invoked by
// fmt.Sprintf, slog, and anything else that honors fmt.Stringer.
func (s SecretString) String() string {
	return redactedPlaceholder
}

// MarshalJSON returns the redacted placeholder as a JSON string.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return redactedJSON, nil
}

// Unmask returns the raw plaintext value of the secret. Usage should be
// limited to the points where the actual value crosses into a driver or
// client.
func (s SecretString) Unmask() string {
	return string(s)
}
