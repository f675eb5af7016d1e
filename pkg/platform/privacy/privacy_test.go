package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "ipv4 last octet zeroed", in: "203.0.113.77", want: "203.0.113.0"},
		{name: "ipv6 truncated to /48", in: "2001:db8:abcd:12::1", want: "2001:db8:abcd::"},
		{name: "empty stays empty", in: "", want: ""},
		{name: "garbage replaced", in: "not-an-ip", want: "invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnonymizeIP(tt.in))
		})
	}
}

func TestHashIdentifier(t *testing.T) {
	assert.Equal(t, "", HashIdentifier(""))
	assert.Len(t, HashIdentifier("A1B2C3D4E5F6"), 16)
	assert.Equal(t, HashIdentifier("x"), HashIdentifier("x"))
	assert.NotEqual(t, HashIdentifier("x"), HashIdentifier("y"))
}
