// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package seal

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/nacl/box"
)

func rsaKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	return key
}

func decryptRSA(t *testing.T, key *rsa.PrivateKey, ciphertext string) string {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	require.NoError(t, err)
	require.Zero(t, len(raw)%key.Size())

	var out []byte
	for len(raw) > 0 {
		pt, err := rsa.DecryptOAEP(sha1.New(), nil, key, raw[:key.Size()], nil)
		require.NoError(t, err)
		out = append(out, pt...)
		raw = raw[key.Size():]
	}
	return string(out)
}

func TestRSAPKCS1(t *testing.T) {
	key := rsaKey(t)
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "RSA PUBLIC KEY", Bytes: x509.MarshalPKCS1PublicKey(&key.PublicKey)})

	enc, err := Parse(pemKey)
	require.NoError(t, err)

	long := strings.Repeat("a long comment body ", 30)
	for _, msg := range []string{"ann@example.com", long, ""} {
		ct, err := enc.Encrypt(msg)
		require.NoError(t, err)
		assert.NotContains(t, ct, "example.com")
		assert.Equal(t, msg, decryptRSA(t, key, ct))
	}
}

func TestRSAPKIX(t *testing.T) {
	key := rsaKey(t)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	enc, err := Parse(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
	require.NoError(t, err)

	ct, err := enc.Encrypt("Ann")
	require.NoError(t, err)
	assert.Equal(t, "Ann", decryptRSA(t, key, ct))
}

func TestSealedBox(t *testing.T) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	require.NoError(t, err)

	enc, err := Parse([]byte(base64.StdEncoding.EncodeToString(pub[:]) + "\n"))
	require.NoError(t, err)

	ct, err := enc.Encrypt("ann@example.com")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(ct)
	require.NoError(t, err)
	pt, ok := box.OpenAnonymous(nil, raw, pub, priv)
	require.True(t, ok)
	assert.Equal(t, "ann@example.com", string(pt))
}

func TestParseRejectsUnsupported(t *testing.T) {
	tests := []struct {
		name string
		key  []byte
	}{
		{name: "garbage", key: []byte("not a key")},
		{name: "short base64", key: []byte(base64.StdEncoding.EncodeToString([]byte("short")))},
		{name: "private key block", key: pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte{1, 2, 3}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.key)
			assert.ErrorIs(t, err, ErrUnsupportedKey)
		})
	}
}

func TestLoad(t *testing.T) {
	key := rsaKey(t)
	path := filepath.Join(t.TempDir(), "public.pem")
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "RSA PUBLIC KEY", Bytes: x509.MarshalPKCS1PublicKey(&key.PublicKey)})
	require.NoError(t, os.WriteFile(path, pemKey, 0o644))

	enc, err := Load(path)
	require.NoError(t, err)
	assert.IsType(t, &RSA{}, enc)

	_, err = Load(filepath.Join(t.TempDir(), "missing.pem"))
	assert.Error(t, err)
}
