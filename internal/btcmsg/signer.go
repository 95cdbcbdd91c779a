package btcmsg

import (
	"encoding/base64"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/rein-network/rein-node/internal/armor"
)

// Signer signs messages with a private key.
// Signatures are always made for the compressed public key.
type Signer struct {
	key      *secp256k1.PrivateKey
	verifier *Verifier
}

// NewSigner returns a Signer for key on mainnet or, if testnet is set, testnet.
func NewSigner(key *secp256k1.PrivateKey, testnet bool) *Signer {
	return &Signer{key: key, verifier: NewVerifier(testnet)}
}

// Address returns the address of the signing key.
func (s *Signer) Address() string {
	return s.verifier.Address(s.key.PubKey(), true)
}

// SignMessage returns the base64 compact signature of message.
func (s *Signer) SignMessage(message string) string {
	sig := ecdsa.SignCompact(s.key, MessageHash(message), true)
	return base64.StdEncoding.EncodeToString(sig)
}

// SignArmored signs body and returns the armored signed message.
//
// The signature covers the payload recovered by armor.StripArmor, which is what verifiers check,
// so body must not rely on blank lines (they are not part of the signed payload).
func (s *Signer) SignArmored(body string) string {
	// the placeholder has the shape of a real signature so that StripArmor recognises the block
	placeholder := base64.StdEncoding.EncodeToString(make([]byte, compactSignatureLen))
	payload := armor.StripArmor(armor.Armor(body, s.Address(), placeholder), false)

	return armor.Armor(body, s.Address(), s.SignMessage(payload))
}
