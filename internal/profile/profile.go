// Package profile parses the one-line reader profile "Name(Interest, Age, Country)".
package profile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Grammar is shown to users whenever their input cannot be parsed.
const Grammar = "Name(Profession/Interest, Age, Country)"

// Example is a valid profile line used in help texts.
const Example = "Alex Parker(Software Engineer, 35, India)"

var profilePattern = regexp.MustCompile(`^\s*(.+?)\((.+?),\s*(\d+)\s*,\s*(.+?)\)`)

// Profile is a parsed reader profile. Country is lowercased for catalog lookups.
type Profile struct {
	Name     string
	Interest string
	Age      int
	Country  string
}

// FormatError reports input that does not follow Grammar.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid input format %q: %s (expected: %s)", e.Input, e.Reason, Grammar)
}

// Parse extracts a Profile from raw. Text after the first closing parenthesis
// of a valid match is ignored.
func Parse(raw string) (Profile, error) {
	m := profilePattern.FindStringSubmatch(raw)
	if m == nil {
		return Profile{}, &FormatError{Input: raw, Reason: "does not match pattern"}
	}

	name := strings.TrimSpace(m[1])
	interest := strings.TrimSpace(m[2])
	country := strings.ToLower(strings.TrimSpace(m[4]))

	switch {
	case name == "":
		return Profile{}, &FormatError{Input: raw, Reason: "name is empty"}
	case interest == "":
		return Profile{}, &FormatError{Input: raw, Reason: "interest is empty"}
	case country == "":
		return Profile{}, &FormatError{Input: raw, Reason: "country is empty"}
	}

	age, err := strconv.Atoi(m[3])
	if err != nil {
		return Profile{}, &FormatError{Input: raw, Reason: "age is out of range"}
	}

	return Profile{
		Name:     name,
		Interest: interest,
		Age:      age,
		Country:  country,
	}, nil
}

// DisplayCountry returns the country with its first letter upper-cased.
func (p Profile) DisplayCountry() string {
	if p.Country == "" {
		return ""
	}
	r := []rune(p.Country)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
