// Package keys wraps the cryptographic key object used to identify peers.
// Nothing in this module signs or encrypts with it. The key itself is treated as an opaque
// value by the rest of this module (per spec.md §1): all callers need is
// an identifier and a way to generate a fresh key for a new peer.
package keys

import (
	"crypto/rand"
	"encoding/json"
	"fmt"

	jose "github.com/go-jose/go-jose/v4"
)

// algorithm tags every key generated by this package, matching the
// original implementation's choice of a AES key-wrap algorithm for its
// symmetric keys.
const algorithm = "A256KW"

// octetLength is the key size in bytes (255 octets), matching the
// original implementation's key-generate behavior.
const octetLength = 255

// Key is an opaque symmetric key carrying an identifier. Peers are named
// by their key's identifier (spec.md §3).
type Key struct {
	jwk jose.JSONWebKey
}

// ID returns the key's identifier, which doubles as the owning peer's
// logical name.
func (k Key) ID() string {
	return k.jwk.KeyID
}

// Generate produces a fresh 255-octet symmetric key tagged with the
// A256KW algorithm and the given key id, matching the "key-generate"
// subcommand's contract (spec.md §6).
func Generate(keyID string) (Key, error) {
	secret := make([]byte, octetLength)
	if _, err := rand.Read(secret); err != nil {
		return Key{}, fmt.Errorf("generate key: %w", err)
	}
	return Key{jwk: jose.JSONWebKey{
		Key:       secret,
		KeyID:     keyID,
		Algorithm: algorithm,
		Use:       "enc",
	}}, nil
}

// MarshalYAML serializes the key as its JWK JSON document, embedded as a
// YAML mapping (the config format is YAML-over-JSON-compatible for this
// field, matching the original's serde_yaml-over-JWK handling).
func (k Key) MarshalYAML() (any, error) {
	raw, err := k.jwk.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	return generic, nil
}

// UnmarshalYAML parses a key from its JWK document embedded in the config.
func (k *Key) UnmarshalYAML(unmarshal func(any) error) error {
	var generic map[string]any
	if err := unmarshal(&generic); err != nil {
		return err
	}
	raw, err := json.Marshal(generic)
	if err != nil {
		return fmt.Errorf("unmarshal key: %w", err)
	}
	var jwk jose.JSONWebKey
	if err := jwk.UnmarshalJSON(raw); err != nil {
		return fmt.Errorf("unmarshal key: %w", err)
	}
	if jwk.KeyID == "" {
		return fmt.Errorf("unmarshal key: missing key id")
	}
	k.jwk = jwk
	return nil
}

// String renders the key's identifier, never its secret material.
func (k Key) String() string {
	return fmt.Sprintf("Key{id=%s, alg=%s}", k.jwk.KeyID, k.jwk.Algorithm)
}

// JSON serializes the full JWK document, secret material included. This
// is what "key-generate" prints to stdout for an operator to paste into
// a peer's config (spec.md §6).
func (k Key) JSON() (string, error) {
	raw, err := k.jwk.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("marshal key: %w", err)
	}
	return string(raw), nil
}
