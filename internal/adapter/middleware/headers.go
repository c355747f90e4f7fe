package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"
)

var reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

// validRequestID accepts a lowercase hyphenated RFC 4122 UUID (v1..v7) or 32 lowercase hex characters.
func validRequestID(id string) bool {
	if id == "" || id != strings.ToLower(id) {
		return false
	}
	if reHex32.MatchString(id) {
		return true
	}
	if len(id) != 36 {
		return false
	}
	u, err := uuid.Parse(id)
	return err == nil && u.Variant() == uuid.RFC4122 && u.Version() >= 1 && u.Version() <= 7
}

// parseRequestAt reads epoch seconds, epoch milliseconds, or RFC 3339 with an explicit zone.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
}

// requestMeta is what a mutating request must declare to be deduplicated.
type requestMeta struct {
	RequestID string
	RequestAt time.Time
	UserID    int64
}

func readRequestMeta(h http.Header, now time.Time, maxSkew time.Duration) (requestMeta, error) {
	var m requestMeta

	m.RequestID = strings.TrimSpace(h.Get(HeaderRequestID))
	if m.RequestID == "" {
		return m, errors.New("missing " + HeaderRequestID)
	}
	if !validRequestID(m.RequestID) {
		return m, errors.New("invalid " + HeaderRequestID + " format")
	}

	at, err := parseRequestAt(h.Get(HeaderRequestAt))
	if err != nil {
		return m, err
	}
	if d := at.Sub(now); d < -maxSkew || d > maxSkew {
		return m, fmt.Errorf("%s is %s away from server time", HeaderRequestAt, d.Round(time.Second))
	}
	m.RequestAt = at

	raw := strings.TrimSpace(h.Get(HeaderUserID))
	if raw == "" {
		return m, errors.New("missing " + HeaderUserID)
	}
	id, ok := parseUserID(raw)
	if !ok {
		return m, errors.New("invalid " + HeaderUserID)
	}
	m.UserID = id
	return m, nil
}

func digest(b []byte) string {
	s := sha256.Sum256(b)
	return hex.EncodeToString(s[:])
}
