package ai

import "testing"

func TestSignAndVerifyHMAC(t *testing.T) {
	secret := "super-secret"
	payload := []byte(`{"event_type":"client.created"}`)

	sig := SignHMAC(secret, payload)
	if sig == "" {
		t.Fatal("expected non-empty signature")
	}
	if !VerifyHMAC(secret, payload, sig) {
		t.Fatal("signature should verify with the same secret and payload")
	}
}

func TestVerifyHMAC_WrongSecret(t *testing.T) {
	payload := []byte(`{"event_type":"task.updated"}`)
	sig := SignHMAC("secret-a", payload)
	if VerifyHMAC("secret-b", payload, sig) {
		t.Fatal("signature must not verify with a different secret")
	}
}

func TestVerifyHMAC_TamperedPayload(t *testing.T) {
	secret := "super-secret"
	sig := SignHMAC(secret, []byte(`{"amount":100}`))
	if VerifyHMAC(secret, []byte(`{"amount":999}`), sig) {
		t.Fatal("signature must not verify for a modified payload")
	}
}

func TestVerifyHMAC_EmptyInputs(t *testing.T) {
	if VerifyHMAC("", []byte("x"), "deadbeef") {
		t.Fatal("empty secret must not verify")
	}
	if VerifyHMAC("secret", []byte("x"), "") {
		t.Fatal("empty signature must not verify")
	}
}
