package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidSignature is returned for any malformed, missing, stale or
// mismatching webhook signature. Details are logged, not reported.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// DefaultTolerance bounds how old a signed timestamp may be before the
// notification is treated as a replay.
const DefaultTolerance = 5 * time.Minute

// Event is a processor webhook payload. Only fields the fulfillment handler
// needs are mapped; everything else is ignored.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// EventCheckoutCompleted is the only event kind that triggers fulfillment.
const EventCheckoutCompleted = "checkout.session.completed"

// SignPayload computes the signature header value for a payload, used by the
// processor (and by tests standing in for it). The scheme is
// "t=<unix>,v1=<hex hmac-sha256 over '<unix>.<payload>'>".
func SignPayload(secret, payload []byte, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

// VerifySignature checks a webhook signature header against the raw body.
// It must run before the body is parsed; a tampered payload never reaches the
// JSON decoder. Comparison is constant time.
func VerifySignature(secret, payload []byte, header string, tolerance time.Duration, now time.Time) error {
	if header == "" {
		return ErrInvalidSignature
	}

	var ts string
	var sigs [][]byte
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts = v
		case "v1":
			sig, err := hex.DecodeString(v)
			if err == nil {
				sigs = append(sigs, sig)
			}
		}
	}
	if ts == "" || len(sigs) == 0 {
		return ErrInvalidSignature
	}

	tsUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	age := now.Sub(time.Unix(tsUnix, 0))
	if age > tolerance || age < -tolerance {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, sig := range sigs {
		if hmac.Equal(expected, sig) {
			return nil
		}
	}
	return ErrInvalidSignature
}
