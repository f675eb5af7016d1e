package codegen

import (
	"strings"

	dErrors "docverify/pkg/domain-errors"
)

var mrzWeights = [3]int{7, 3, 1}

// MRZCheckDigit computes the ICAO 9303 check digit of a machine readable
// zone field. Digits count as their value, A-Z as 10-35 and the filler '<'
// as zero.
func MRZCheckDigit(field string) (int, error) {
	if field == "" {
		return 0, dErrors.New(dErrors.CodeValidation, "MRZ field is required")
	}
	sum := 0
	for i := 0; i < len(field); i++ {
		v, ok := mrzValue(field[i])
		if !ok {
			return 0, dErrors.New(dErrors.CodeValidation, "MRZ field contains invalid character")
		}
		sum += v * mrzWeights[i%3]
	}
	return sum % 10, nil
}

func mrzValue(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10, true
	case c == '<':
		return 0, true
	}
	return 0, false
}

// ComposeMRZField pads value with '<' to width and appends its check digit.
func ComposeMRZField(value string, width int) (string, error) {
	value = strings.ToUpper(strings.TrimSpace(value))
	if width <= 0 || len(value) > width {
		return "", dErrors.New(dErrors.CodeValidation, "MRZ value does not fit the field width")
	}
	padded := value + strings.Repeat("<", width-len(value))
	digit, err := MRZCheckDigit(padded)
	if err != nil {
		return "", err
	}
	return padded + string(rune('0'+digit)), nil
}

// ValidateMRZField checks a field whose last character is its check digit.
func ValidateMRZField(fieldWithDigit string) bool {
	n := len(fieldWithDigit)
	if n < 2 {
		return false
	}
	last := fieldWithDigit[n-1]
	if last < '0' || last > '9' {
		return false
	}
	digit, err := MRZCheckDigit(fieldWithDigit[:n-1])
	if err != nil {
		return false
	}
	return digit == int(last-'0')
}

// LuhnCheckDigit returns the digit that makes number+digit pass the Luhn
// check.
func LuhnCheckDigit(number string) (int, error) {
	if number == "" {
		return 0, dErrors.New(dErrors.CodeValidation, "number is required")
	}
	sum := 0
	double := true
	for i := len(number) - 1; i >= 0; i-- {
		c := number[i]
		if c < '0' || c > '9' {
			return 0, dErrors.New(dErrors.CodeValidation, "number must contain only digits")
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return (10 - sum%10) % 10, nil
}

// ValidLuhn reports whether the trailing digit is the Luhn check digit of
// the rest.
func ValidLuhn(numberWithDigit string) bool {
	n := len(numberWithDigit)
	if n < 2 {
		return false
	}
	last := numberWithDigit[n-1]
	if last < '0' || last > '9' {
		return false
	}
	digit, err := LuhnCheckDigit(numberWithDigit[:n-1])
	return err == nil && digit == int(last-'0')
}
