// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package seal encrypts individual comment fields with a public key so
// that personal data can be published alongside a site and only read by
// the key holder.
//
// Supported keys: PEM "RSA PUBLIC KEY" (PKCS#1) and "PUBLIC KEY" (PKIX)
// encrypt with RSA-OAEP; a base64-encoded 32-byte Curve25519 key encrypts
// with NaCl anonymous sealed boxes. Output is base64.
package seal

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/nacl/box"
)

// ErrUnsupportedKey is returned for key material that is not one of the
// supported public key forms.
var ErrUnsupportedKey = errors.New("unsupported public key")

// Encrypter encrypts a single field value.
type Encrypter interface {
	Encrypt(plaintext string) (string, error)
}

// Load reads a public key file and returns its Encrypter.
func Load(path string) (Encrypter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading public key %s: %w", path, err)
	}
	enc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("public key %s: %w", path, err)
	}
	return enc, nil
}

// Parse returns the Encrypter for key.
func Parse(key []byte) (Encrypter, error) {
	if block, _ := pem.Decode(key); block != nil {
		pub, err := parseRSA(block)
		if err != nil {
			return nil, err
		}
		return &RSA{pub: pub}, nil
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(key)))
	if err != nil || len(raw) != 32 {
		return nil, ErrUnsupportedKey
	}
	b := &Box{}
	copy(b.key[:], raw)
	return b, nil
}

func parseRSA(block *pem.Block) (*rsa.PublicKey, error) {
	switch block.Type {
	case "RSA PUBLIC KEY":
		pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parsing PKCS#1 key: %w", err)
		}
		return pub, nil
	case "PUBLIC KEY":
		k, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parsing PKIX key: %w", err)
		}
		pub, ok := k.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedKey, k)
		}
		return pub, nil
	default:
		return nil, fmt.Errorf("%w: PEM block %q", ErrUnsupportedKey, block.Type)
	}
}

// RSA encrypts with RSA-OAEP (SHA-1). Values longer than one OAEP block
// are split into blocks whose ciphertexts are concatenated.
type RSA struct {
	pub *rsa.PublicKey
}

// Encrypt returns the base64 ciphertext of plaintext.
func (e *RSA) Encrypt(plaintext string) (string, error) {
	chunk := e.pub.Size() - 2*sha1.Size - 2
	data := []byte(plaintext)
	var out []byte
	for {
		n := min(chunk, len(data))
		ct, err := rsa.EncryptOAEP(sha1.New(), rand.Reader, e.pub, data[:n], nil)
		if err != nil {
			return "", fmt.Errorf("rsa encrypt: %w", err)
		}
		out = append(out, ct...)
		data = data[n:]
		if len(data) == 0 {
			break
		}
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

// Box encrypts with NaCl anonymous sealed boxes.
type Box struct {
	key [32]byte
}

// Encrypt returns the base64 sealed box of plaintext.
func (e *Box) Encrypt(plaintext string) (string, error) {
	out, err := box.SealAnonymous(nil, []byte(plaintext), &e.key, rand.Reader)
	if err != nil {
		return "", fmt.Errorf("sealed box: %w", err)
	}
	return base64.StdEncoding.EncodeToString(out), nil
}
