package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []string{}, expected: []string{}},
		{
			name:     "trims and removes repeats in order",
			input:    []string{"  renewal ", "urgent", "renewal", "", "  "},
			expected: []string{"renewal", "urgent"},
		},
		{
			name:     "preserves case",
			input:    []string{"Foo", "foo"},
			expected: []string{"Foo", "foo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestDedupeAndTrimUpper(t *testing.T) {
	assert.Equal(t, []string{"GB", "US"}, DedupeAndTrimUpper([]string{" gb", "GB", "us ", ""}))
	assert.Nil(t, DedupeAndTrimUpper(nil))
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		raw      string
		expected []string
	}{
		{raw: "", expected: nil},
		{raw: "  ", expected: nil},
		{raw: "kafka-1:9092, kafka-2:9092,,kafka-1:9092", expected: []string{"kafka-1:9092", "kafka-2:9092"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitList(tt.raw))
		})
	}
}
