package secretstore

import (
	"context"
	"unicode/utf8"
)

// SecretStore is the capability a secret backend implements.
//
// Implementations are used sequentially by the sync engine but should still
// be safe to call from multiple goroutines.
type SecretStore interface {
	// Get fetches the current value of the named secret.
	//
	// Returns *NotFoundError when the backend has no such secret and
	// *BackendError for every other failure. When a backend can hold both a
	// text and a binary payload for one secret, the text payload wins. The
	// returned value belongs to the caller.
	Get(ctx context.Context, name string) (Secret, error)

	// Upsert creates the named secret with value and metadata, or updates
	// only its value when it already exists.
	//
	// The caller wipes binary values after Upsert returns, so
	// implementations must not keep a reference to them.
	Upsert(ctx context.Context, name string, value Secret, metadata Metadata) error
}

// Validator is implemented by stores that can check their credentials and
// connectivity without touching any secret.
type Validator interface {
	Validate(ctx context.Context) error
}

// Metadata is attached to a secret when it is created.
//
// It is intentionally not sent when an existing secret is updated.
type Metadata struct {
	// Description of the secret, shown by the backend's own tooling.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Tags attached to the secret (labels on backends that call them that).
	Tags map[string]string `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// IsEmpty reports whether there is nothing to attach.
func (m Metadata) IsEmpty() bool {
	return m.Description == "" && len(m.Tags) == 0
}

// Kind distinguishes the two representations of a Secret.
type Kind int

const (
	// KindText is a UTF-8 string value.
	KindText Kind = iota
	// KindBinary is an opaque byte sequence.
	KindBinary
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Secret is a secret value, either UTF-8 text or raw binary.
//
// The zero value is an empty Text secret.
type Secret struct {
	kind Kind
	text string
	data []byte
}

// Text returns a text secret.
func Text(value string) Secret {
	return Secret{kind: KindText, text: value}
}

// Binary returns a binary secret. The slice is not copied.
func Binary(value []byte) Secret {
	return Secret{kind: KindBinary, data: value}
}

// FromBytes classifies file content: valid UTF-8 becomes Text, anything else
// becomes Binary.
func FromBytes(value []byte) Secret {
	if utf8.Valid(value) {
		return Text(string(value))
	}
	return Binary(value)
}

// Kind returns the representation of the secret.
func (s Secret) Kind() Kind {
	return s.kind
}

// IsBinary reports whether the secret holds binary data.
func (s Secret) IsBinary() bool {
	return s.kind == KindBinary
}

// Text returns the text value. It is empty for binary secrets.
func (s Secret) Text() string {
	if s.kind != KindText {
		return ""
	}
	return s.text
}

// Bytes returns the secret as bytes: the UTF-8 encoding of a text secret or
// the raw data of a binary one.
func (s Secret) Bytes() []byte {
	if s.kind == KindBinary {
		return s.data
	}
	return []byte(s.text)
}

// Len returns the size of the value in bytes.
func (s Secret) Len() int {
	if s.kind == KindBinary {
		return len(s.data)
	}
	return len(s.text)
}

// String implements fmt.Stringer and never reveals the value.
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer for %#v.
func (s Secret) GoString() string {
	return "secretstore.Secret{" + s.kind.String() + ": [REDACTED]}"
}
