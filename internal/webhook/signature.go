package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidSignature = errors.New("webhook: invalid signature")
	ErrSignatureExpired = errors.New("webhook: signature timestamp outside tolerance")
)

// Sign returns the X-Vigia-Signature value "t=<unix>,v1=<hex>". The MAC
// covers "<unix>.<payload>" so a captured delivery cannot be replayed
// later with a fresh timestamp.
func Sign(secret string, at time.Time, payload []byte) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	return "t=" + ts + ",v1=" + mac(secret, ts, payload)
}

// Verify checks a signature header against payload. A non-positive
// tolerance skips the timestamp age check.
func Verify(secret string, payload []byte, header string, tolerance time.Duration, now time.Time) error {
	var ts, sig string
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			ts = value
		case "v1":
			sig = value
		}
	}
	if ts == "" || sig == "" {
		return ErrInvalidSignature
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	if !hmac.Equal([]byte(sig), []byte(mac(secret, ts, payload))) {
		return ErrInvalidSignature
	}

	if tolerance > 0 {
		age := now.Sub(time.Unix(unix, 0))
		if age < 0 {
			age = -age
		}
		if age > tolerance {
			return ErrSignatureExpired
		}
	}
	return nil
}

func mac(secret, ts string, payload []byte) string {
	m := hmac.New(sha256.New, []byte(secret))
	m.Write([]byte(ts))
	m.Write([]byte{'.'})
	m.Write(payload)
	return hex.EncodeToString(m.Sum(nil))
}
