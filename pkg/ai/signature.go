package ai

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// ProviderSignatureHeader carries the HMAC signature on transcription
// provider callbacks.
const ProviderSignatureHeader = "X-Signature"

// SignHMAC computes the sha256 HMAC hex signature of payload with secret
func SignHMAC(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMAC verifies a sha256 HMAC hex signature against payload and secret
func VerifyHMAC(secret string, payload []byte, signatureHex string) bool {
	if secret == "" || signatureHex == "" {
		return false
	}
	expected := SignHMAC(secret, payload)
	return hmac.Equal([]byte(expected), []byte(signatureHex))
}
