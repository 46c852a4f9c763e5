package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Authority is the role tag an account is registered under.
type Authority string

const (
	AuthorityPatient   Authority = "ROLE_PATIENT"
	AuthorityCounselor Authority = "ROLE_COUNSELOR"
	AuthorityDoctor    Authority = "ROLE_DOCTOR"
)

// Privileged authorities must carry a unique registration number.
func (a Authority) Privileged() bool {
	return a == AuthorityCounselor || a == AuthorityDoctor
}

// Name returns the lower-case transport name ("patient", "doctor", ...).
func (a Authority) Name() string {
	return strings.ToLower(strings.TrimPrefix(string(a), "ROLE_"))
}

// ParseAuthority accepts either the transport name or the ROLE_ form.
func ParseAuthority(s string) (Authority, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(name, "ROLE_") {
		name = "ROLE_" + name
	}
	switch a := Authority(name); a {
	case AuthorityPatient, AuthorityCounselor, AuthorityDoctor:
		return a, nil
	}
	return "", fmt.Errorf("unknown authority %q", s)
}

// Authorities is an immutable set of authority tags. The zero value is empty.
type Authorities struct {
	tags []Authority
}

// NewAuthorities builds a set from the given tags, dropping duplicates.
func NewAuthorities(tags ...Authority) Authorities {
	out := make([]Authority, 0, len(tags))
	for _, t := range tags {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return Authorities{tags: out}
}

func (a Authorities) Contains(t Authority) bool {
	return slices.Contains(a.tags, t)
}

func (a Authorities) Len() int {
	return len(a.tags)
}

// List returns a copy of the tags in sorted order.
func (a Authorities) List() []Authority {
	return slices.Clone(a.tags)
}

// Strings returns the tags as plain strings, for storage and token claims.
func (a Authorities) Strings() []string {
	out := make([]string, len(a.tags))
	for i, t := range a.tags {
		out[i] = string(t)
	}
	return out
}

// AuthoritiesFromStrings is the inverse of Strings. Unknown tags are kept
// verbatim so stored data is never silently rewritten.
func AuthoritiesFromStrings(ss []string) Authorities {
	tags := make([]Authority, len(ss))
	for i, s := range ss {
		tags[i] = Authority(s)
	}
	return NewAuthorities(tags...)
}

func (a Authorities) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Strings())
}
