// Copyright 2017 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package composite

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// OriginSnippet is the regular expression that matches a valid
	// package origin.
	OriginSnippet = "[a-z0-9][a-z0-9_-]*"

	// NameSnippet is the regular expression that matches a valid
	// package name.
	NameSnippet = "[a-z0-9][a-z0-9_-]*"
)

var (
	validOrigin = regexp.MustCompile("^" + OriginSnippet + "$")
	validName   = regexp.MustCompile("^" + NameSnippet + "$")
)

// ServiceRef is a parsed, possibly partial, service package reference of
// the form "origin/name[/version[/release]]". The origin segment is
// always required. A reference with all four segments is fully
// qualified and identifies exactly one installed artifact.
//
// Note that the literal string as declared by the composite author, not
// the parsed form, is the identity used for map keys throughout this
// package; ServiceRef never normalizes its input.
type ServiceRef struct {
	Origin  string
	Name    string
	Version string
	Release string
}

// ParseServiceRef parses a service reference string. A reference
// missing its origin or name, or with malformed segments, yields a
// ResolutionError.
func ParseServiceRef(s string) (ServiceRef, error) {
	segments := strings.Split(s, "/")
	if len(segments) < 2 || len(segments) > 4 {
		return ServiceRef{}, &ResolutionError{
			Ref:    s,
			Reason: "reference must be origin/name[/version[/release]]",
		}
	}
	for i, segment := range segments {
		if segment == "" {
			return ServiceRef{}, &ResolutionError{
				Ref:    s,
				Reason: fmt.Sprintf("empty segment at position %d", i),
			}
		}
	}
	if !validOrigin.MatchString(segments[0]) {
		return ServiceRef{}, &ResolutionError{
			Ref:    s,
			Reason: fmt.Sprintf("invalid origin %q", segments[0]),
		}
	}
	if !validName.MatchString(segments[1]) {
		return ServiceRef{}, &ResolutionError{
			Ref:    s,
			Reason: fmt.Sprintf("invalid name %q", segments[1]),
		}
	}
	ref := ServiceRef{Origin: segments[0], Name: segments[1]}
	if len(segments) > 2 {
		ref.Version = segments[2]
	}
	if len(segments) > 3 {
		ref.Release = segments[3]
	}
	return ref, nil
}

// MustParseServiceRef parses a service reference string, panicking on
// failure. For use with hard-coded references only.
func MustParseServiceRef(s string) ServiceRef {
	ref, err := ParseServiceRef(s)
	if err != nil {
		panic(fmt.Sprintf("%q is not a valid service reference", s))
	}
	return ref
}

// String returns the reference in its declared form,
// origin/name[/version[/release]].
func (r ServiceRef) String() string {
	segments := []string{r.Origin, r.Name}
	if r.Version != "" {
		segments = append(segments, r.Version)
		if r.Release != "" {
			segments = append(segments, r.Release)
		}
	}
	return strings.Join(segments, "/")
}

// FullyQualified reports whether the reference names exactly one
// artifact, i.e. carries all of origin, name, version and release.
func (r ServiceRef) FullyQualified() bool {
	return r.Origin != "" && r.Name != "" && r.Version != "" && r.Release != ""
}

// Satisfies reports whether a package with the fully qualified
// identifier other is an acceptable match for this, possibly partial,
// reference.
func (r ServiceRef) Satisfies(other ServiceRef) bool {
	if r.Origin != other.Origin || r.Name != other.Name {
		return false
	}
	if r.Version != "" && r.Version != other.Version {
		return false
	}
	if r.Release != "" && r.Release != other.Release {
		return false
	}
	return true
}
