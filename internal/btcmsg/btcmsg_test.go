package btcmsg

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/rein-network/rein-node/internal/armor"
)

func testKey(t *testing.T, b byte) *secp256k1.PrivateKey {
	t.Helper()
	raw := make([]byte, 32)
	raw[31] = b
	return secp256k1.PrivKeyFromBytes(raw)
}

func TestAddress(t *testing.T) {
	key := testKey(t, 1)
	v := NewVerifier(false)

	if got := v.Address(key.PubKey(), true); got != "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH" {
		t.Errorf("compressed address: got %s", got)
	}
	if got := v.Address(key.PubKey(), false); got != "1EHNa6Q4Jz2uvNExL497mE43ikXhwF6kZm" {
		t.Errorf("uncompressed address: got %s", got)
	}

	testnet := NewVerifier(true).Address(key.PubKey(), true)
	if !strings.HasPrefix(testnet, "m") && !strings.HasPrefix(testnet, "n") {
		t.Errorf("testnet address should start with m or n, got %s", testnet)
	}
}

func TestVerify(t *testing.T) {
	signer := NewSigner(testKey(t, 7), false)
	other := NewSigner(testKey(t, 8), false)
	message := "Rein User Public Key\nUser: Alice\nMaster signing address: " + signer.Address()
	signature := signer.SignMessage(message)

	tests := []struct {
		name      string
		address   string
		message   string
		signature string
		want      bool
	}{
		{
			name:      "valid signature",
			address:   signer.Address(),
			message:   message,
			signature: signature,
			want:      true,
		},
		{
			name:      "modified message",
			address:   signer.Address(),
			message:   strings.Replace(message, "Alice", "Alicf", 1),
			signature: signature,
			want:      false,
		},
		{
			name:      "wrong address",
			address:   other.Address(),
			message:   message,
			signature: signature,
			want:      false,
		},
		{
			name:      "signature by another key",
			address:   signer.Address(),
			message:   message,
			signature: other.SignMessage(message),
			want:      false,
		},
	}

	v := NewVerifier(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Verify(tt.address, tt.message, tt.signature)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Verify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerify_Malformed(t *testing.T) {
	v := NewVerifier(false)

	tests := []struct {
		name      string
		signature string
		wantErr   error
	}{
		{"not base64", "not base64!", ErrInvalidSignatureEncoding},
		{"too short", base64.StdEncoding.EncodeToString([]byte("short")), ErrInvalidSignatureLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := v.Verify("1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH", "message", tt.signature)
			if ok {
				t.Error("expected malformed signature to be invalid")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestVerify_TestnetAddressDoesNotVerifyOnMainnet(t *testing.T) {
	signer := NewSigner(testKey(t, 3), true)
	signature := signer.SignMessage("hello")

	ok, err := NewVerifier(true).Verify(signer.Address(), "hello", signature)
	if err != nil || !ok {
		t.Fatalf("expected testnet signature to verify on testnet, got %v %v", ok, err)
	}

	ok, err = NewVerifier(false).Verify(signer.Address(), "hello", signature)
	if err != nil || ok {
		t.Errorf("expected testnet address to fail on mainnet, got %v %v", ok, err)
	}
}

func TestSignArmored(t *testing.T) {
	signer := NewSigner(testKey(t, 9), false)
	body := "Rein Job\nName: Logo\nDescription: A logo for my company"

	signed := signer.SignArmored(body)

	p, ok := armor.ParseSig(signed)
	if !ok {
		t.Fatalf("signed message did not parse:\n%s", signed)
	}
	if p.SignatureAddress != signer.Address() {
		t.Errorf("expected address %s, got %s", signer.Address(), p.SignatureAddress)
	}

	payload := armor.StripArmor(signed, false)
	if payload != body {
		t.Errorf("expected payload %q, got %q", body, payload)
	}

	valid, err := NewVerifier(false).Verify(p.SignatureAddress, payload, p.Signature)
	if err != nil || !valid {
		t.Errorf("expected armored signature to verify, got %v %v", valid, err)
	}
}

func TestMessageHash_LongMessage(t *testing.T) {
	// messages of 253 bytes or more use the 3 byte length prefix
	short := MessageHash(strings.Repeat("a", 252))
	long := MessageHash(strings.Repeat("a", 253))
	if len(short) != 32 || len(long) != 32 {
		t.Fatalf("expected 32 byte digests")
	}

	signer := NewSigner(testKey(t, 5), false)
	message := strings.Repeat("Rein ", 100)
	ok, err := NewVerifier(false).Verify(signer.Address(), message, signer.SignMessage(message))
	if err != nil || !ok {
		t.Errorf("expected long message to verify, got %v %v", ok, err)
	}
}

// A message signed with a standard bitcoin wallet, so the digest and the recovery header byte
// are not only checked against Signer.
func TestVerify_KnownSignature(t *testing.T) {
	const (
		address   = "1CptxARjqcfkVwGFSjR82zmPT8YtRMubub"
		signature = "H59sadjpiAgK6LaoiLEuZ3sSoFo6S2dSIjmETszVRGI6lccEgCaEgy7na1waF8TxHiVrV6qjha3m2Ih6ynAvGps="
		message   = "Name/handle: Test Person\n" +
			"Contact: tester@example.com\n" +
			"Master signing address: 1CptxARjqcfkVwGFSjR82zmPT8YtRMubub\n" +
			"Delegate signing address: 1Djp4Siv5iLJUgXq5peWCDcHVWV1Mv3opc"
	)
	v := NewVerifier(false)

	ok, err := v.Verify(address, message, signature)
	if err != nil || !ok {
		t.Fatalf("Verify() = %v, %v; want true", ok, err)
	}

	if ok, _ := v.Verify(address, message+"\n", signature); ok {
		t.Error("a trailing newline changes the signed message")
	}
	if ok, _ := v.Verify("1Djp4Siv5iLJUgXq5peWCDcHVWV1Mv3opc", message, signature); ok {
		t.Error("signature must not verify for another address")
	}
}
