package service

// Envelope is the encrypted wrapper persisted to disk when encryption is
// enabled: the serialized document is sealed with a key derived from the
// user secret. All binary fields are base64 in the JSON encoding.
type Envelope struct {
	Version    int    `json:"version"`
	Salt       string `json:"salt"`
	IV         string `json:"iv"`
	Ciphertext string `json:"ciphertext"`
}

// Key is a derived symmetric key. It lives only for the session and is
// never persisted.
type Key []byte

// EnvelopeCodec derives keys and seals/opens document envelopes.
//
// Open failures are split into two distinguishable errors: a wrong key
// (authentication failure, shown as "incorrect password") and a malformed
// envelope (structural damage, shown as corruption). Callers must branch on
// errors.Is against domainerrors.ErrWrongKey / ErrMalformedEnvelope.
type EnvelopeCodec interface {
	// DeriveKey stretches the user secret with the given salt. The secret
	// is normalized to NFC first so the same password always derives the
	// same key regardless of platform string internals.
	DeriveKey(secret string, salt []byte) Key

	// NewSalt returns a fresh random salt of the configured length.
	NewSalt() ([]byte, error)

	// Seal encrypts plaintext under key, minting a fresh IV. The salt is
	// recorded in the envelope so a later session can re-derive the key.
	Seal(plaintext []byte, key Key, salt []byte) (*Envelope, error)

	// Open decrypts the envelope with key.
	Open(env *Envelope, key Key) ([]byte, error)

	// IsEnvelope reports whether raw parses as an encrypted envelope
	// rather than a plaintext document.
	IsEnvelope(raw []byte) bool
}
