// Copyright 2017 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package composite

import (
	"sort"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
)

// Build runs the whole composite build pipeline over a declaration:
// resolution, export aggregation, bind validation, set validation and,
// when outDir is non-empty, metadata rendering. Each stage completes
// fully before the next begins, since later stages assume earlier
// stages' invariants hold; the first fatal error aborts the build and
// nothing is rendered.
func Build(decl *Declaration, store PackageStore, outDir string) (*CompositeMetadata, error) {
	if err := decl.Validate(); err != nil {
		return nil, errors.Trace(err)
	}

	resolver := NewServiceResolver(store)
	resolved, err := resolver.Resolve(decl.Services)
	if err != nil {
		return nil, errors.Trace(err)
	}

	catalog, err := BuildExportCatalog(resolved)
	if err != nil {
		return nil, errors.Trace(err)
	}

	validator := NewBindValidator(resolved, catalog, set.NewStrings(decl.Externals...))
	if err := validator.Validate(decl.Binds); err != nil {
		return nil, errors.Trace(err)
	}
	unmapped, err := validator.UnmappedRequiredBinds(decl.Binds)
	if err != nil {
		return nil, errors.Trace(err)
	}
	for _, service := range sortedSetNames(unmapped) {
		logger.Warningf("service %q leaves required binds unmapped: %v", service, unmapped[service])
	}

	if err := ValidateSets(decl.Sets, decl.Services); err != nil {
		return nil, errors.Trace(err)
	}

	meta := &CompositeMetadata{
		Ident:    decl.Ident,
		Target:   decl.Target,
		Services: decl.Services,
		Resolved: resolved,
		Binds:    decl.Binds,
		Sets:     decl.Sets,
	}
	if outDir != "" {
		if err := meta.Render(outDir); err != nil {
			return nil, errors.Trace(err)
		}
	}
	logger.Infof("built composite %s with %d services", meta.Ident, len(meta.Services))
	return meta, nil
}

func sortedSetNames(m map[string][]string) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	// Stable warning order, nothing more.
	sort.Strings(names)
	return names
}
