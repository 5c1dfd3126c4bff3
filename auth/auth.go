// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidSessionKey = errors.New("invalid session key")
	ErrInvalidDevice     = errors.New("invalid device id")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewSessionID returns a random UUID for a swipe session
func NewSessionID() string {
	return uuid.NewString()
}

// GenerateSessionKey creates an HMAC-based key for a swipe session
// This is deterministic and verifiable
func GenerateSessionKey(sessionID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(sessionID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateSessionKey checks if the provided key is valid for the session
func ValidateSessionKey(sessionID, key, salt string) error {
	expected := GenerateSessionKey(sessionID, salt)
	if !hmac.Equal([]byte(key), []byte(expected)) {
		return ErrInvalidSessionKey
	}
	return nil
}

// ParseDeviceID validates a client-supplied device UUID and returns its
// canonical lowercase form
func ParseDeviceID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDevice, err)
	}
	return id.String(), nil
}

// HashDevice creates a one-way hash of a device id for storage keys
// Includes salt so stored keys cannot be mapped back to devices
func HashDevice(deviceID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(deviceID))
	sum := h.Sum(nil)
	// First 16 bytes (32 hex chars)
	return hex.EncodeToString(sum[:16])
}

// LikedKey is the storage key of a device's liked set
func LikedKey(deviceHash string) string {
	return "liked:" + deviceHash
}

// AnalysisKey is the storage key of a device's cached analysis label
func AnalysisKey(deviceHash string) string {
	return "analysis:" + deviceHash
}
