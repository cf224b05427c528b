// Package validator decides which URLs may be shortened.
//
// A URL must be absolute with a non-empty host, and when an allow-list is
// configured its host must equal the host of one of the entries. An empty
// allow-list admits every domain.
package validator

import (
	"fmt"
	"net/url"
	"strings"
)

// Reason is the machine-readable cause of a rejected URL.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonInvalidRequest   Reason = "Invalid-Request"
	ReasonInvalidFormat    Reason = "Invalid-Format"
	ReasonDomainNotAllowed Reason = "Domain-Not-Allowed"
)

// Result reports both checks separately. Reason holds the first failing check.
type Result struct {
	Valid    bool
	Reason   Reason
	FormatOK bool
	DomainOK bool
}

// DomainValidator validates URLs against an immutable allow-list.
type DomainValidator struct {
	hosts []string
}

// New builds a validator from allow-list entries. Entries may be URLs
// ("https://example.com") or bare hosts ("example.com"). Blank entries are
// ignored, so an all-blank list allows every domain.
func New(allowed []string) (*DomainValidator, error) {
	hosts := make([]string, 0, len(allowed))

	for _, entry := range allowed {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		host, err := entryHost(entry)
		if err != nil {
			return nil, err
		}

		hosts = append(hosts, host)
	}

	return &DomainValidator{hosts: hosts}, nil
}

// ParseList splits a comma-separated allow-list option.
func ParseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	return strings.Split(raw, ",")
}

// AllowsAll reports whether the allow-list is empty.
func (v *DomainValidator) AllowsAll() bool {
	return len(v.hosts) == 0
}

// Hosts returns a copy of the configured hosts.
func (v *DomainValidator) Hosts() []string {
	return append([]string(nil), v.hosts...)
}

// Validate checks raw as submitted. Surrounding whitespace is a format error
// since the stored URL must match the input exactly.
func (v *DomainValidator) Validate(raw string) Result {
	res := Result{}

	u, err := url.Parse(raw)
	res.FormatOK = err == nil && raw == strings.TrimSpace(raw) && u.Scheme != "" && u.Hostname() != ""

	switch {
	case v.AllowsAll():
		res.DomainOK = true
	case res.FormatOK:
		res.DomainOK = v.allowed(u.Host)
	}

	switch {
	case !res.FormatOK:
		res.Reason = ReasonInvalidFormat
	case !res.DomainOK:
		res.Reason = ReasonDomainNotAllowed
	default:
		res.Valid = true
	}

	return res
}

// Exact, case-sensitive comparison. Subdomains and suffixes do not match.
func (v *DomainValidator) allowed(host string) bool {
	for _, h := range v.hosts {
		if h == host {
			return true
		}
	}

	return false
}

func entryHost(entry string) (string, error) {
	if !strings.Contains(entry, "://") {
		return entry, nil
	}

	u, err := url.Parse(entry)
	if err != nil {
		return "", fmt.Errorf("invalid allow-list entry %q: %w", entry, err)
	}

	if u.Hostname() == "" {
		return "", fmt.Errorf("invalid allow-list entry %q: missing host", entry)
	}

	return u.Host, nil
}
