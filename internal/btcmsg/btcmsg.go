// Package btcmsg verifies and creates bitcoin signed messages ("Sign Message" in bitcoin wallets).
//
// The message digest is the double SHA-256 of
//
//	varstr("Bitcoin Signed Message:\n") || varstr(message)
//
// and the signature is a base64 encoded 65 byte compact signature from which the signing public
// key can be recovered. A signature is valid for an address when the P2PKH address of the
// recovered key equals the address.
//
// secp256k1 recovery uses github.com/decred/dcrd/dcrec/secp256k1/v4.
package btcmsg

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // RIPEMD-160 is required by the address format
)

const messageMagic = "Bitcoin Signed Message:\n"

// P2PKH address version bytes
const (
	MainNetPubKeyHashID byte = 0x00
	TestNetPubKeyHashID byte = 0x6f
)

const compactSignatureLen = 65

var (
	ErrInvalidSignatureEncoding = errors.New("signature is not valid base64")
	ErrInvalidSignatureLength   = errors.New("signature must be 65 bytes")
)

// Verifier checks bitcoin message signatures for one network.
type Verifier struct {
	pubKeyHashID byte
}

// NewVerifier returns a Verifier for mainnet addresses or, if testnet is set, testnet addresses.
func NewVerifier(testnet bool) *Verifier {
	if testnet {
		return &Verifier{pubKeyHashID: TestNetPubKeyHashID}
	}
	return &Verifier{pubKeyHashID: MainNetPubKeyHashID}
}

// Verify reports whether signature is a valid signature of message by the key behind address.
//
// An error is returned only when the signature is malformed; a well formed signature by another
// key returns false.
func (v *Verifier) Verify(address, message, signature string) (bool, error) {
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidSignatureEncoding, err)
	}
	if len(sig) != compactSignatureLen {
		return false, fmt.Errorf("%w: got %d", ErrInvalidSignatureLength, len(sig))
	}

	pubKey, compressed, err := ecdsa.RecoverCompact(sig, MessageHash(message))
	if err != nil {
		// recovery fails for signatures that were not produced for this digest
		return false, nil
	}

	return v.Address(pubKey, compressed) == address, nil
}

// Address returns the base58check P2PKH address of a public key.
func (v *Verifier) Address(pubKey *secp256k1.PublicKey, compressed bool) string {
	var serialized []byte
	if compressed {
		serialized = pubKey.SerializeCompressed()
	} else {
		serialized = pubKey.SerializeUncompressed()
	}
	return base58.CheckEncode(hash160(serialized), v.pubKeyHashID)
}

// MessageHash returns the digest that is signed for message.
func MessageHash(message string) []byte {
	var buf bytes.Buffer
	writeVarString(&buf, messageMagic)
	writeVarString(&buf, message)

	first := sha256.Sum256(buf.Bytes())
	second := sha256.Sum256(first[:])
	return second[:]
}

func hash160(b []byte) []byte {
	sum := sha256.Sum256(b)
	h := ripemd160.New()
	h.Write(sum[:])
	return h.Sum(nil)
}

// writeVarString writes s prefixed with its length as a bitcoin variable length integer.
func writeVarString(buf *bytes.Buffer, s string) {
	n := uint64(len(s))
	switch {
	case n < 0xfd:
		buf.WriteByte(byte(n))
	case n <= 0xffff:
		buf.WriteByte(0xfd)
		_ = binary.Write(buf, binary.LittleEndian, uint16(n))
	case n <= 0xffffffff:
		buf.WriteByte(0xfe)
		_ = binary.Write(buf, binary.LittleEndian, uint32(n))
	default:
		buf.WriteByte(0xff)
		_ = binary.Write(buf, binary.LittleEndian, n)
	}
	buf.WriteString(s)
}
