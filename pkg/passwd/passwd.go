// Package passwd checks that a new password is strong enough to accept.
package passwd

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const MinLength = 8

var (
	ErrTooShort      = fmt.Errorf("password must contain at least %d characters", MinLength)
	ErrNumeric       = errors.New("password is entirely numeric")
	ErrCommon        = errors.New("password is too common")
	ErrTooSimilar    = errors.New("password is too similar to the user's attributes")
	ErrEmptyPassword = errors.New("password is empty")
)

type Validator interface {
	// Validate reports why password is unacceptable; attrs are user-supplied
	// values (email and the like) the password must not resemble.
	Validate(password string, attrs ...string) error
}

//go:embed common.txt
var commonList string

type Policy struct {
	MinLength int
	common    map[string]struct{}
}

func Default() *Policy {
	p := &Policy{MinLength: MinLength, common: map[string]struct{}{}}
	for _, line := range strings.Split(commonList, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			p.common[strings.ToLower(line)] = struct{}{}
		}
	}
	return p
}

func (p *Policy) Validate(password string, attrs ...string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	if len([]rune(password)) < p.MinLength {
		return ErrTooShort
	}
	if isNumeric(password) {
		return ErrNumeric
	}
	if _, ok := p.common[strings.ToLower(password)]; ok {
		return ErrCommon
	}
	for _, a := range attrs {
		if similar(password, a) {
			return ErrTooSimilar
		}
	}
	return nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// similar compares against the attribute and, for emails, its local part.
func similar(password, attr string) bool {
	pw := strings.ToLower(password)
	attr = strings.ToLower(strings.TrimSpace(attr))
	if attr == "" {
		return false
	}
	parts := []string{attr}
	if at := strings.LastIndex(attr, "@"); at > 0 {
		parts = append(parts, attr[:at])
	}
	for _, part := range parts {
		if len(part) < 3 {
			continue
		}
		if pw == part || strings.Contains(pw, part) || strings.Contains(part, pw) {
			return true
		}
	}
	return false
}
