// Package validate verifies signed documents and endorsement chains.
//
// A signed document is valid when the address in its signature block signed the payload that
// armor.StripArmor recovers from it. On top of that:
//
//   - an enrollment is valid when it is signed by the "Master signing address" it declares
//   - a review embeds an enrollment; validating it returns the reviewer and the embedded enrollment
//   - an audit embeds a review; validating it returns the auditor and the embedded review with the
//     enrollment inside it still escaped
//
// ValidateChain composes the three steps. Signature verification is delegated to a Verifier
// (see internal/btcmsg); the package does no other I/O and a Validator is safe for concurrent use.
package validate
