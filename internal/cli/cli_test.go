package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rein-network/rein-node/internal/validate"
)

// run executes rein-cli with args and returns its stdout
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// flags keep their values between executions
	verifyEnrollment, signEndorse = false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--env-file", ""))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSignAndVerify(t *testing.T) {
	t.Setenv("LOG_LEVEL", "none")
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "key.hex")

	out, err := run(t, "keygen", "--output", keyPath)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	address := strings.TrimPrefix(strings.SplitN(out, "\n", 2)[0], "address: ")

	body := writeFile(t, dir, "body.txt", "Rein User Public Key\nName/handle: tester\nMaster signing address: "+address+"\n")
	signed, err := run(t, "sign", body, "--key", keyPath)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	enrollment := writeFile(t, dir, "enrollment.txt", signed)

	out, err = run(t, "verify", enrollment, "--enrollment")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	var res validate.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("verify output is not JSON: %v", err)
	}
	if !res.Valid || res.SignatureAddress != address {
		t.Errorf("unexpected result %+v", res)
	}

	tampered := writeFile(t, dir, "tampered.txt", strings.Replace(signed, "tester", "Tester", 1))
	if _, err := run(t, "verify", tampered); !errors.Is(err, errInvalid) {
		t.Errorf("expected errInvalid for a tampered document, got %v", err)
	}

	t.Run("chain", func(t *testing.T) {
		review, err := run(t, "sign", enrollment, "--key", keyPath, "--endorse")
		if err != nil {
			t.Fatalf("sign review: %v", err)
		}
		reviewPath := writeFile(t, dir, "review.txt", review)

		audit, err := run(t, "sign", reviewPath, "--key", keyPath, "--endorse")
		if err != nil {
			t.Fatalf("sign audit: %v", err)
		}
		auditPath := writeFile(t, dir, "audit.txt", audit)

		out, err := run(t, "chain", auditPath)
		if err != nil {
			t.Fatalf("chain: %v\n%s", err, out)
		}
		var res validate.ChainResult
		if err := json.Unmarshal([]byte(out), &res); err != nil {
			t.Fatalf("chain output is not JSON: %v", err)
		}
		if !res.Valid || res.Enrollee != address {
			t.Errorf("unexpected chain result %+v", res)
		}
	})
}

func TestBlockRejectsInvalidHash(t *testing.T) {
	t.Setenv("LOG_LEVEL", "none")
	if _, err := run(t, "block", "not-a-hash"); err == nil {
		t.Fatal("expected an error")
	}
}
