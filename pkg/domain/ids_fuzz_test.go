//go:build go1.18

package domain

import (
	"testing"
)

// FuzzParseVerificationCode checks that parsing never panics and that
// accepted codes are stable under re-parsing.
func FuzzParseVerificationCode(f *testing.F) {
	f.Add("")
	f.Add("A1B2C3D4E5F6")
	f.Add("a1b2c3d4e5f6")
	f.Add("'; DROP TABLE verification_records;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("A1B2C3D4E5F6\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		code, err := ParseVerificationCode(input)
		if err != nil {
			return
		}
		if len(code) != VerificationCodeLength {
			t.Errorf("accepted code has length %d", len(code))
		}
		again, err := ParseVerificationCode(code)
		if err != nil || again != code {
			t.Errorf("accepted code %q failed round-trip", code)
		}
	})
}

func FuzzParseSessionID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseSessionID(input)
		if err != nil {
			return
		}
		roundTrip, err := ParseSessionID(id.String())
		if err != nil || roundTrip != id {
			t.Errorf("valid id %q failed round-trip", input)
		}
	})
}
