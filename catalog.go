// Copyright 2017 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package composite

import (
	"sort"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
)

// ExportCatalog aggregates the exported configuration keys of every
// resolved package in a composite. It is built once, after resolution
// completes, and read-only thereafter.
type ExportCatalog struct {
	exports map[string]set.Strings
}

// BuildExportCatalog reads the export metadata of every resolved
// package. Packages with no export metadata contribute an empty set,
// not an error; a failure to read an export file that exists aborts the
// build.
func BuildExportCatalog(resolved map[string]*ResolvedPackage) (*ExportCatalog, error) {
	catalog := &ExportCatalog{
		exports: make(map[string]set.Strings, len(resolved)),
	}
	for _, declared := range sortedKeys(resolved) {
		exports, err := resolved[declared].Exports()
		if err != nil {
			return nil, errors.Trace(err)
		}
		catalog.exports[declared] = exports
	}
	return catalog, nil
}

// Exports returns the exported key set of the service with the given
// declared reference, and whether the catalog knows that service.
func (c *ExportCatalog) Exports(declared string) (set.Strings, bool) {
	exports, ok := c.exports[declared]
	return exports, ok
}

func sortedKeys(resolved map[string]*ResolvedPackage) []string {
	keys := make([]string, 0, len(resolved))
	for key := range resolved {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
