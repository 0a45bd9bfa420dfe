// Copyright 2017 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package composite

import (
	"strings"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
)

// Metadata files read from each installed member package. All are
// line-oriented plain text.
const (
	// bindsFile maps bind names to the export keys the bind
	// requires, one "name=key1,key2,..." entry per line.
	bindsFile = "BINDS"

	// bindsOptionalFile has the same shape as bindsFile but its
	// binds need not be mapped by the composite author.
	bindsOptionalFile = "BINDS_OPTIONAL"

	// exportsFile holds "key=value" lines; only the key before the
	// first "=" matters to validation.
	exportsFile = "EXPORTS"

	// svcRunFile names the service's run command, when the package
	// provides one directly rather than through a run hook.
	svcRunFile = "SVC_RUN"

	// runHookFile is the run hook within the package layout.
	runHookFile = "hooks/run"
)

// ResolvedPackage is one declared service reference resolved to a
// concrete installed artifact. It is created by the resolver and
// immutable thereafter; the bind and export metadata is read lazily
// from the package path on first use and then cached.
type ResolvedPackage struct {
	// DeclaredRef is the literal reference string as declared by the
	// composite author. It is the identity of this package in every
	// map the build carries.
	DeclaredRef string

	// Ident is the fully qualified identifier of the installed
	// artifact the reference resolved to.
	Ident ServiceRef

	// Path is the package's installed filesystem path.
	Path string

	store PackageStore

	binds         map[string]set.Strings
	optionalBinds map[string]set.Strings
	exports       set.Strings
}

// Binds returns the binds the package itself declares it requires,
// mapping each bind name to the set of export keys a satisfier must
// supply.
func (p *ResolvedPackage) Binds() (map[string]set.Strings, error) {
	if p.binds == nil {
		content, err := p.store.ReadMetadataFile(p.Path, bindsFile)
		if err != nil {
			return nil, errors.Annotatef(err, "reading %s of %q", bindsFile, p.DeclaredRef)
		}
		p.binds = parseBinds(content)
	}
	return p.binds, nil
}

// OptionalBinds returns the package's optional binds in the same shape
// as Binds. Optional binds may be left unmapped by the composite
// author; when mapped they are validated like required ones.
func (p *ResolvedPackage) OptionalBinds() (map[string]set.Strings, error) {
	if p.optionalBinds == nil {
		content, err := p.store.ReadMetadataFile(p.Path, bindsOptionalFile)
		if err != nil {
			return nil, errors.Annotatef(err, "reading %s of %q", bindsOptionalFile, p.DeclaredRef)
		}
		p.optionalBinds = parseBinds(content)
	}
	return p.optionalBinds, nil
}

// Exports returns the set of configuration keys the package exports for
// other services to bind against. A package with no export metadata
// exports the empty set.
func (p *ResolvedPackage) Exports() (set.Strings, error) {
	if p.exports == nil {
		content, err := p.store.ReadMetadataFile(p.Path, exportsFile)
		if err != nil {
			return nil, errors.Annotatef(err, "reading %s of %q", exportsFile, p.DeclaredRef)
		}
		p.exports = parseExports(content)
	}
	return p.exports, nil
}

// runnable reports whether the package exposes a run entry point,
// either a SVC_RUN metadata entry or a run hook in its layout.
func (p *ResolvedPackage) runnable() (bool, error) {
	svcRun, err := p.store.ReadMetadataFile(p.Path, svcRunFile)
	if err != nil {
		return false, errors.Annotatef(err, "reading %s of %q", svcRunFile, p.DeclaredRef)
	}
	if strings.TrimSpace(svcRun) != "" {
		return true, nil
	}
	hook, err := p.store.ReadMetadataFile(p.Path, runHookFile)
	if err != nil {
		return false, errors.Annotatef(err, "reading run hook of %q", p.DeclaredRef)
	}
	return hook != "", nil
}

// parseBinds parses BINDS-shaped content ("name=key1,key2,..." per
// line) into a map of typed key sets.
func parseBinds(content string) map[string]set.Strings {
	binds := make(map[string]set.Strings)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, keys, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		required := set.NewStrings()
		for _, key := range strings.Split(keys, ",") {
			if key = strings.TrimSpace(key); key != "" {
				required.Add(key)
			}
		}
		binds[strings.TrimSpace(name)] = required
	}
	return binds
}

// parseExports parses EXPORTS-shaped content ("key=value" per line),
// retaining only the keys.
func parseExports(content string) set.Strings {
	exports := set.NewStrings()
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, _, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if key = strings.TrimSpace(key); key != "" {
			exports.Add(key)
		}
	}
	return exports
}
