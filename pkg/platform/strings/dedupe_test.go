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
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty slice",
			input:    []string{},
			expected: []string{},
		},
		{
			name:     "single element",
			input:    []string{"broker-1:9092"},
			expected: []string{"broker-1:9092"},
		},
		{
			name:     "trims whitespace",
			input:    []string{"  broker-1:9092  ", "broker-2:9092  ", "  broker-3:9092"},
			expected: []string{"broker-1:9092", "broker-2:9092", "broker-3:9092"},
		},
		{
			name:     "removes duplicates preserving order",
			input:    []string{"a:9092", "b:9092", "a:9092", "c:9092", "b:9092"},
			expected: []string{"a:9092", "b:9092", "c:9092"},
		},
		{
			name:     "removes empty strings",
			input:    []string{"a:9092", "", "  ", "b:9092"},
			expected: []string{"a:9092", "b:9092"},
		},
		{
			name:     "combined: trim, dedupe, remove empty",
			input:    []string{"  a:9092 ", "b:9092", "a:9092", "", "  ", "b:9092"},
			expected: []string{"a:9092", "b:9092"},
		},
		{
			name:     "preserves case",
			input:    []string{"Broker", "broker", "BROKER"},
			expected: []string{"Broker", "broker", "BROKER"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DedupeAndTrim(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}
