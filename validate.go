// Copyright 2017 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package composite

import (
	"sort"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
)

// BindPair is one entry of a service's bind mapping: the named bind is
// to be satisfied by the exports of the referenced service.
type BindPair struct {
	Bind      string
	Satisfier string
}

// BindMap is the composite author's declared wiring: for each declaring
// service, keyed by its literal declared reference, the list of binds
// mapped to satisfying services.
type BindMap map[string][]BindPair

// BindValidator checks that a declared bind map is legal and
// satisfiable against an immutable snapshot of the resolved composite.
// Validation is pure set membership, so its outcome does not depend on
// order; services and binds are still processed in sorted order so that
// the first reported failure is reproducible.
type BindValidator struct {
	resolved  map[string]*ResolvedPackage
	catalog   *ExportCatalog
	externals set.Strings
}

// NewBindValidator returns a validator over the given resolution map
// and export catalog. References in externals are permitted as bind
// satisfiers without being members of the composite; their exports
// cannot be checked at build time.
func NewBindValidator(resolved map[string]*ResolvedPackage, catalog *ExportCatalog, externals set.Strings) *BindValidator {
	return &BindValidator{
		resolved:  resolved,
		catalog:   catalog,
		externals: externals,
	}
}

// Validate confirms the composite is wireable: every mapped bind is
// declared by its service, every satisfier is resolvable, and every
// export key a bind requires is supplied by its satisfier. It stops at
// the first violation.
//
// A required bind left unmapped is not a violation here; whether that
// should fail the build is an open question, and the observed behavior
// of deferring it to runtime wiring is preserved. Callers that want to
// surface the gap can use UnmappedRequiredBinds.
func (v *BindValidator) Validate(binds BindMap) error {
	services := make([]string, 0, len(binds))
	for service := range binds {
		services = append(services, service)
	}
	sort.Strings(services)

	for _, service := range services {
		pkg, ok := v.resolved[service]
		if !ok {
			return errors.Errorf("bind mapping for undeclared service %q", service)
		}
		if err := v.validateService(pkg, binds[service]); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func (v *BindValidator) validateService(pkg *ResolvedPackage, pairs []BindPair) error {
	declared, err := pkg.Binds()
	if err != nil {
		return errors.Trace(err)
	}
	optional, err := pkg.OptionalBinds()
	if err != nil {
		return errors.Trace(err)
	}

	sorted := make([]BindPair, len(pairs))
	copy(sorted, pairs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Bind < sorted[j].Bind })

	for _, pair := range sorted {
		required, ok := declared[pair.Bind]
		if !ok {
			// Mapped optional binds are validated like
			// required ones.
			if required, ok = optional[pair.Bind]; !ok {
				return &UnknownBindError{
					Service: pkg.DeclaredRef,
					Bind:    pair.Bind,
				}
			}
		}
		if err := v.validatePair(pkg.DeclaredRef, pair, required); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func (v *BindValidator) validatePair(service string, pair BindPair, required set.Strings) error {
	exports, member := v.catalog.Exports(pair.Satisfier)
	if !member {
		if v.externals.Contains(pair.Satisfier) {
			// External satisfiers are taken on trust; their
			// exports are not visible at build time.
			return nil
		}
		return &UnresolvedSatisfierError{
			Service:   service,
			Bind:      pair.Bind,
			Satisfier: pair.Satisfier,
		}
	}
	for _, key := range required.SortedValues() {
		if !exports.Contains(key) {
			return &UnsatisfiedExportError{
				Service:   service,
				Bind:      pair.Bind,
				Satisfier: pair.Satisfier,
				Key:       key,
			}
		}
	}
	return nil
}

// UnmappedRequiredBinds reports, per declaring service, the required
// binds the composite author left unmapped and not declared optional.
// The result is informational: see Validate for why these do not fail
// the build.
func (v *BindValidator) UnmappedRequiredBinds(binds BindMap) (map[string][]string, error) {
	unmapped := make(map[string][]string)
	for _, service := range sortedKeys(v.resolved) {
		pkg := v.resolved[service]
		declared, err := pkg.Binds()
		if err != nil {
			return nil, errors.Trace(err)
		}
		mapped := set.NewStrings()
		for _, pair := range binds[service] {
			mapped.Add(pair.Bind)
		}
		var missing []string
		for name := range declared {
			if !mapped.Contains(name) {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			unmapped[service] = missing
		}
	}
	return unmapped, nil
}

// ValidateSets checks that every member of every named service set is a
// declared service of the composite, by exact string match. Named sets
// exist for selective startup and must always be subsets of the full
// service list.
func ValidateSets(sets map[string][]string, services []string) error {
	declared := set.NewStrings(services...)
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		members := make([]string, len(sets[name]))
		copy(members, sets[name])
		sort.Strings(members)
		for _, member := range members {
			if !declared.Contains(member) {
				return &InvalidSetMemberError{Set: name, Member: member}
			}
		}
	}
	return nil
}
