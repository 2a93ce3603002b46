package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// GenerateID generates a random ID with prefix.
func GenerateID(prefix string) string {
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b))
}

// GenerateUserID generates a unique user ID.
func GenerateUserID() string {
	return GenerateID("user")
}

// GenerateRequestID generates a unique request ID.
func GenerateRequestID() string {
	timestamp := time.Now().UnixNano()
	b := make([]byte, 4)
	rand.Read(b)
	return fmt.Sprintf("req_%d_%s", timestamp, hex.EncodeToString(b))
}

// GenerateMediaName produces a collision-free on-disk name for an
// uploaded payload, preserving the original extension.
func GenerateMediaName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), hex.EncodeToString(b), ext)
}
