package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

var ErrSecretKey = errors.New("secret key must be 32 bytes (base64)")

// ParseSecretKey decodes a base64 32-byte key.
func ParseSecretKey(b64 string) (*[32]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil || len(raw) != 32 {
		return nil, ErrSecretKey
	}
	var key [32]byte
	copy(key[:], raw)
	return &key, nil
}

// SealString encrypts plain with key; output is base64(nonce || box).
func SealString(key *[32]byte, plain string) (string, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", err
	}
	out := secretbox.Seal(nonce[:], []byte(plain), &nonce, key)
	return base64.StdEncoding.EncodeToString(out), nil
}

func OpenString(key *[32]byte, sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", err
	}
	if len(raw) < 24+secretbox.Overhead {
		return "", errors.New("sealed value too short")
	}
	var nonce [24]byte
	copy(nonce[:], raw[:24])
	plain, ok := secretbox.Open(nil, raw[24:], &nonce, key)
	if !ok {
		return "", errors.New("sealed value could not be opened")
	}
	return string(plain), nil
}
