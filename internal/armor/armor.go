// Package armor parses and strips the ASCII armor of bitcoin signed messages.
//
// A signed message has the form:
//
//	-----BEGIN BITCOIN SIGNED MESSAGE-----
//	<field lines>
//	-----BEGIN SIGNATURE-----
//	<address>
//	<signature>
//	-----END BITCOIN SIGNED MESSAGE-----
//
// When a signed message is embedded in another one (an endorsement), its marker lines are
// dash-escaped: the leading "-----" becomes "- ----". The same escape is used at every nesting
// depth, so peeling a layer relies on counting the markers already seen (see PeelLayer).
//
// The transformations in this package are load-bearing: the payload that was signed is recovered
// with StripArmor, so any change to the output breaks verification of existing documents.
package armor

import (
	"regexp"
	"strings"
)

// Marker lines
const (
	BeginMessage   = "-----BEGIN BITCOIN SIGNED MESSAGE-----"
	BeginSignature = "-----BEGIN SIGNATURE-----"
	EndMessage     = "-----END BITCOIN SIGNED MESSAGE-----"
)

// TitleToken is the product name that starts a document title line (e.g. "Rein Job").
const TitleToken = "Rein"

const (
	escapedDashes = "- ----"
	dashes        = "-----"
)

var (
	beginMessageRe   = regexp.MustCompile(`-{5}BEGIN BITCOIN SIGNED MESSAGE-{5}`)
	signatureBlockRe = regexp.MustCompile(`\n+-{5}BEGIN SIGNATURE-{5}[\n\dA-z+=/]+-{5}END BITCOIN SIGNED MESSAGE-{5}\n*`)

	sigTitleRe = regexp.MustCompile(`\n(` + TitleToken + ` .*)\n`)
	sigFieldRe = regexp.MustCompile(`(.+?):\s(.+)\n`)
	sigFrameRe = regexp.MustCompile(`-{5}BEGIN SIGNATURE-{5}\n([A-z\d=+/]+)\n([A-z\d=+/]+)\n-{5}END BITCOIN SIGNED MESSAGE-{5}`)

	docTitleRe = regexp.MustCompile(`(` + TitleToken + ` .*)\n`)
	docFieldRe = regexp.MustCompile(`(.+?):\s(.+)(?:\n|$)`)
)

// StripArmor removes the armor from a signed message and returns the message body that was signed.
//
// The begin marker and the trailing signature block are removed, then one leading newline and
// every blank-line doublet. When dashSpaceRepair is set, dash-escaped markers ("- ----") are
// restored first so that embedded messages are stripped as well.
func StripArmor(text string, dashSpaceRepair bool) string {
	if dashSpaceRepair {
		text = RepairDashes(text)
	}
	text = beginMessageRe.ReplaceAllLiteralString(text, "")
	text = signatureBlockRe.ReplaceAllLiteralString(text, "")
	text = strings.TrimPrefix(text, "\n")
	return strings.ReplaceAll(text, "\n\n", "")
}

// RepairDashes restores every dash-escaped marker in text.
func RepairDashes(text string) string {
	return strings.ReplaceAll(text, escapedDashes, dashes)
}

// ParsedSignature holds the fields of a signed message.
type ParsedSignature struct {
	// Title is the first "Rein ..." line following a line break (empty if there is none)
	Title string

	// Fields holds every "Key: Value" line; when a key repeats the last occurrence wins.
	// Fields of embedded messages are included.
	Fields map[string]string

	// SignatureAddress is the address in the outermost signature block
	SignatureAddress string

	// Signature is the base64 signature in the outermost signature block
	Signature string
}

// Field returns the value of a declared field.
func (p *ParsedSignature) Field(key string) (string, bool) {
	v, ok := p.Fields[key]
	return v, ok
}

// ParseSig extracts the title, fields and signature block of a signed message.
// It returns false when the signature framing is absent; callers must check before reading fields.
func ParseSig(text string) (*ParsedSignature, bool) {
	m := sigFrameRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}

	p := &ParsedSignature{
		Fields:           make(map[string]string),
		SignatureAddress: m[1],
		Signature:        m[2],
	}
	if t := sigTitleRe.FindStringSubmatch(text); t != nil {
		p.Title = t[1]
	}
	for _, f := range sigFieldRe.FindAllStringSubmatch(text, -1) {
		p.Fields[f[1]] = f[2]
	}
	return p, true
}

// ParseDocument extracts the title and fields of a document without requiring a signature.
// The title is returned under the "Title" key.
func ParseDocument(text string) map[string]string {
	ret := make(map[string]string)
	if t := docTitleRe.FindStringSubmatch(text); t != nil {
		ret["Title"] = t[1]
	}
	for _, f := range docFieldRe.FindAllStringSubmatch(text, -1) {
		ret[f[1]] = f[2]
	}
	return ret
}
