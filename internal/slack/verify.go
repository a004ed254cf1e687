package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// maxSignatureAge is the accepted clock skew between Slack's request
// timestamp and the server, guarding against replayed requests.
const maxSignatureAge = 5 * time.Minute

// Sign computes the v0 request signature for a body and timestamp.
func Sign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:", timestamp)
	mac.Write(body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a request against Slack's signing scheme: the
// timestamp must be within the replay window of now and the signature must
// match the HMAC of "v0:<timestamp>:<body>" under the signing secret.
func VerifySignature(secret, timestamp, signature string, body []byte, now time.Time) error {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid request timestamp")
	}

	age := now.Sub(time.Unix(ts, 0))
	if age > maxSignatureAge || age < -maxSignatureAge {
		return fmt.Errorf("request timestamp outside replay window")
	}

	expected := Sign(secret, timestamp, body)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}
