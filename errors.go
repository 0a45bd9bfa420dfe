// Copyright 2017 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package composite

import (
	"fmt"

	"github.com/juju/errors"
)

// Every error defined here is fatal to the composite build: a composite
// either fully validates or the build is aborted. Errors from the
// PackageStore collaborator are propagated wrapped but otherwise
// unchanged; nothing in this package retries them.

// InsufficientServiceCountError indicates that a composite declares
// fewer than two services. A one-service composite is meaningless.
type InsufficientServiceCountError struct {
	Count int
}

func (e *InsufficientServiceCountError) Error() string {
	return fmt.Sprintf("composite requires at least 2 services, got %d", e.Count)
}

// IsInsufficientServiceCountError reports whether err was caused by an
// InsufficientServiceCountError.
func IsInsufficientServiceCountError(err error) bool {
	_, ok := errors.Cause(err).(*InsufficientServiceCountError)
	return ok
}

// ResolutionError indicates that a declared service reference could not
// be resolved to an installed package.
type ResolutionError struct {
	Ref    string
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve service %q: %s", e.Ref, e.Reason)
}

// IsResolutionError reports whether err was caused by a ResolutionError.
func IsResolutionError(err error) bool {
	_, ok := errors.Cause(err).(*ResolutionError)
	return ok
}

// NotAServiceError indicates that a resolved package has no run entry
// point in its package layout. Composites may only contain services,
// never plain libraries.
type NotAServiceError struct {
	Ref string
}

func (e *NotAServiceError) Error() string {
	return fmt.Sprintf("package %q is not a service: no run entry point", e.Ref)
}

// IsNotAServiceError reports whether err was caused by a
// NotAServiceError.
func IsNotAServiceError(err error) bool {
	_, ok := errors.Cause(err).(*NotAServiceError)
	return ok
}

// FullyQualifiedRequiredError indicates that a reference required to be
// fully qualified (such as a composite's own identifier) is not.
type FullyQualifiedRequiredError struct {
	Ref string
}

func (e *FullyQualifiedRequiredError) Error() string {
	return fmt.Sprintf("fully qualified package identifier required, got %q", e.Ref)
}

// IsFullyQualifiedRequiredError reports whether err was caused by a
// FullyQualifiedRequiredError.
func IsFullyQualifiedRequiredError(err error) bool {
	_, ok := errors.Cause(err).(*FullyQualifiedRequiredError)
	return ok
}

// UnknownBindError indicates that the composite author supplied a
// satisfier for a bind the declaring service never declared.
type UnknownBindError struct {
	Service string
	Bind    string
}

func (e *UnknownBindError) Error() string {
	return fmt.Sprintf("service %q declares no bind named %q", e.Service, e.Bind)
}

// IsUnknownBindError reports whether err was caused by an
// UnknownBindError.
func IsUnknownBindError(err error) bool {
	_, ok := errors.Cause(err).(*UnknownBindError)
	return ok
}

// UnresolvedSatisfierError indicates that a bind is mapped to a
// reference that is neither a service of this composite nor an
// explicitly allowed external reference.
type UnresolvedSatisfierError struct {
	Service   string
	Bind      string
	Satisfier string
}

func (e *UnresolvedSatisfierError) Error() string {
	return fmt.Sprintf(
		"bind %q of service %q maps to %q, which is not a service in this composite",
		e.Bind, e.Service, e.Satisfier,
	)
}

// IsUnresolvedSatisfierError reports whether err was caused by an
// UnresolvedSatisfierError.
func IsUnresolvedSatisfierError(err error) bool {
	_, ok := errors.Cause(err).(*UnresolvedSatisfierError)
	return ok
}

// UnsatisfiedExportError indicates that the service mapped to satisfy a
// bind does not export a key the bind requires. This is the central
// correctness contract of the whole composition.
type UnsatisfiedExportError struct {
	Service   string
	Bind      string
	Satisfier string
	Key       string
}

func (e *UnsatisfiedExportError) Error() string {
	return fmt.Sprintf(
		"bind %q of service %q requires export %q, which %q does not export",
		e.Bind, e.Service, e.Key, e.Satisfier,
	)
}

// IsUnsatisfiedExportError reports whether err was caused by an
// UnsatisfiedExportError.
func IsUnsatisfiedExportError(err error) bool {
	_, ok := errors.Cause(err).(*UnsatisfiedExportError)
	return ok
}

// InvalidSetMemberError indicates that a named service set references a
// service not declared by the composite.
type InvalidSetMemberError struct {
	Set    string
	Member string
}

func (e *InvalidSetMemberError) Error() string {
	return fmt.Sprintf(
		"service set %q member %q is not a service in this composite",
		e.Set, e.Member,
	)
}

// IsInvalidSetMemberError reports whether err was caused by an
// InvalidSetMemberError.
func IsInvalidSetMemberError(err error) bool {
	_, ok := errors.Cause(err).(*InvalidSetMemberError)
	return ok
}
