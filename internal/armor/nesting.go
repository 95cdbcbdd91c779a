package armor

import "strings"

// escaped forms of the marker lines
var (
	escapedBeginMessage   = escapedDashes + BeginMessage[len(dashes):]
	escapedBeginSignature = escapedDashes + BeginSignature[len(dashes):]
	escapedEndMessage     = escapedDashes + EndMessage[len(dashes):]
)

// PeelLayer restores the markers of the outermost message embedded in body, leaving deeper
// messages escaped for the next verifier.
//
// body is the stripped payload of a message that embeds another signed message. Each line is
// copied to the output; an escaped marker line is restored only when the output so far contains:
//   - no begin-message marker (escaped or not), for the begin-message marker
//   - exactly one begin-signature marker, for the begin-signature marker
//   - exactly one end-message marker, for the end-message marker
//
// The counts include escaped markers already copied, which is what skips the markers of deeper
// messages. Every output line is terminated with "\n".
func PeelLayer(body string) string {
	var (
		out             strings.Builder
		beginMessages   int
		beginSignatures int
		endMessages     int
	)

	for _, line := range splitLines(body) {
		switch {
		case line == escapedBeginMessage && beginMessages == 0:
			line = RepairDashes(line)
		case line == escapedBeginSignature && beginSignatures == 1:
			line = RepairDashes(line)
		case line == escapedEndMessage && endMessages == 1:
			line = RepairDashes(line)
		}

		// the escaped and bare forms both contain the marker without its first two characters
		beginMessages += strings.Count(line, escapedBeginMessage[2:])
		beginSignatures += strings.Count(line, escapedBeginSignature[2:])
		endMessages += strings.Count(line, escapedEndMessage[2:])

		out.WriteString(line)
		out.WriteByte('\n')
	}
	return out.String()
}

// DashEscape escapes every marker line in text so that it can be embedded in another signed message.
// Lines that are already escaped are left unchanged.
func DashEscape(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, dashes) {
			lines[i] = escapedDashes + line[len(dashes):]
		}
	}
	return strings.Join(lines, "\n")
}

// Armor wraps body in the signed message armor with the given address and signature.
func Armor(body, address, signature string) string {
	return BeginMessage + "\n" +
		body + "\n" +
		BeginSignature + "\n" +
		address + "\n" +
		signature + "\n" +
		EndMessage
}

// splitLines splits text on "\n"; a trailing line break does not produce an empty last line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
