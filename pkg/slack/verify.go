package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// maxSignatureAge rejects replayed requests with stale timestamps
const maxSignatureAge = 5 * time.Minute

// VerifySignature checks a request signature produced with the app signing secret.
// The signature covers the string "v0:<timestamp>:<body>" and is compared in
// constant time. Requests older than five minutes are rejected.
func VerifySignature(signingSecret, timestamp, signature string, body []byte) error {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid request timestamp: %w", err)
	}

	age := time.Since(time.Unix(ts, 0))
	if age > maxSignatureAge || age < -maxSignatureAge {
		return fmt.Errorf("request timestamp out of tolerance")
	}

	mac := hmac.New(sha256.New, []byte(signingSecret))
	fmt.Fprintf(mac, "v0:%s:", timestamp)
	mac.Write(body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("signature mismatch")
	}

	return nil
}
