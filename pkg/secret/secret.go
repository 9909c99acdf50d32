// Package secret provides a string wrapper whose default renderings are
// redacted. Card numbers and CVVs travel through the codebase as Secrets so
// a stray Printf or log line cannot leak them; the raw value requires an
// explicit Reveal call.
package secret

// Redacted is what every default rendering of a Secret produces.
const Redacted = "**********"

// Secret holds a sensitive string value.
type Secret struct {
	value string
}

// New wraps a raw value.
func New(value string) Secret {
	return Secret{value: value}
}

// Reveal returns the raw value. The only way to get it back out.
func (s Secret) Reveal() string {
	return s.value
}

// IsZero reports whether the secret is empty.
func (s Secret) IsZero() bool {
	return s.value == ""
}

// String implements fmt.Stringer with a redacted rendering.
func (s Secret) String() string {
	return Redacted
}

// GoString keeps %#v from leaking the value.
func (s Secret) GoString() string {
	return "secret.Secret{value:\"" + Redacted + "\"}"
}

// MarshalJSON renders the redacted placeholder, never the value.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + Redacted + `"`), nil
}

// MarshalYAML renders the redacted placeholder, never the value.
func (s Secret) MarshalYAML() (any, error) {
	return Redacted, nil
}
