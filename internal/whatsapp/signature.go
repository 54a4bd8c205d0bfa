package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// SignatureHeader is the header Meta signs webhook deliveries with.
const SignatureHeader = "X-Hub-Signature-256"

// ErrBadSignature is returned when the webhook signature does not match the body.
var ErrBadSignature = errors.New("webhook signature mismatch")

// VerifySignature checks the X-Hub-Signature-256 value ("sha256=<hex>")
// against HMAC-SHA256(secret, body). An empty secret disables verification;
// this is an explicit operational choice for deployments without an app
// secret configured.
func VerifySignature(secret string, body []byte, signature string) error {
	if secret == "" {
		return nil
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return ErrBadSignature
	}
	return nil
}
