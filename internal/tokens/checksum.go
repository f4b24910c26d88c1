package tokens

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// ToChecksumAddress returns the EIP-55 mixed-case form of a 20-byte hex address.
func ToChecksumAddress(addr string) (string, error) {
	a := strings.TrimSpace(addr)
	if a == "" {
		return "", fmt.Errorf("empty address")
	}
	if strings.HasPrefix(a, "0x") || strings.HasPrefix(a, "0X") {
		a = a[2:]
	}
	if len(a) != 40 {
		return "", fmt.Errorf("bad hex length: %d", len(a))
	}
	if _, err := hex.DecodeString(a); err != nil {
		return "", fmt.Errorf("not hex: %w", err)
	}

	lower := strings.ToLower(a)
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	hexhash := hex.EncodeToString(h.Sum(nil))

	out := []byte(lower)
	for i, ch := range out {
		if ch < 'a' || ch > 'f' {
			continue
		}
		// upper-case when the matching hash nibble is >= 8
		if hexhash[i] >= '8' {
			out[i] = ch - ('a' - 'A')
		}
	}
	return "0x" + string(out), nil
}

// ValidateAddress accepts all-lower or all-upper hex, and mixed case only when
// it matches the EIP-55 checksum.
func ValidateAddress(addr string) error {
	sum, err := ToChecksumAddress(addr)
	if err != nil {
		return err
	}
	body := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(addr), "0x"), "0X")
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return nil
	}
	if "0x"+body != sum {
		return fmt.Errorf("bad checksum for %s (want %s)", addr, sum)
	}
	return nil
}
