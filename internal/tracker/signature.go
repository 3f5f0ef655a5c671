package tracker

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/campushq/notification-engine/internal/types"
)

// replayWindow bounds how old a timestamped signature may be.
const replayWindow = 5 * time.Minute

// verifySignature checks the webhook signature header against the raw
// request body. Two header schemes are supported:
//
//	t=<unix>,v1=<hex>   HMAC-SHA256 over "<unix>.<body>", rejected when
//	                    the timestamp falls outside the replay window
//	sha256=<hex>        HMAC-SHA256 over the raw body
//
// Comparison is constant-time in both schemes.
func verifySignature(secret string, body []byte, header string, now time.Time) error {
	header = strings.TrimSpace(header)
	if header == "" {
		return types.ErrInvalidSignature
	}

	if strings.HasPrefix(header, "t=") {
		return verifyTimestamped(secret, body, header, now)
	}

	expected := computeHMAC(secret, body)
	supplied := strings.TrimPrefix(header, "sha256=")
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(supplied))) {
		return types.ErrInvalidSignature
	}
	return nil
}

func verifyTimestamped(secret string, body []byte, header string, now time.Time) error {
	var ts int64
	var supplied string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return types.ErrInvalidSignature
			}
			ts = parsed
		case "v1":
			supplied = value
		}
	}
	if ts == 0 || supplied == "" {
		return types.ErrInvalidSignature
	}

	age := now.Sub(time.Unix(ts, 0))
	if age > replayWindow || age < -replayWindow {
		return types.ErrStaleSignature
	}

	signed := append([]byte(strconv.FormatInt(ts, 10)+"."), body...)
	expected := computeHMAC(secret, signed)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(supplied))) {
		return types.ErrInvalidSignature
	}
	return nil
}

func computeHMAC(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
