// Copyright 2017 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package composite

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("composite")

// ServiceResolver turns declared service references into resolved
// installed package records, using a PackageStore to ensure each
// reference is installed and to select the latest installed candidate.
type ServiceResolver struct {
	store PackageStore
}

// NewServiceResolver returns a resolver backed by the given store.
func NewServiceResolver(store PackageStore) *ServiceResolver {
	return &ServiceResolver{store: store}
}

// Resolve resolves every declared reference to an installed package,
// asserting along the way that each resolved package is actually
// runnable as a service. The returned map is keyed by the literal
// declared reference strings. Resolution is sequential and stops at the
// first failure; a composite with any unresolvable member cannot be
// built.
func (r *ServiceResolver) Resolve(refs []string) (map[string]*ResolvedPackage, error) {
	resolved := make(map[string]*ResolvedPackage, len(refs))
	for _, declared := range refs {
		pkg, err := r.resolveOne(declared)
		if err != nil {
			return nil, errors.Trace(err)
		}
		resolved[declared] = pkg
	}
	logger.Infof("resolved %d services", len(resolved))
	return resolved, nil
}

func (r *ServiceResolver) resolveOne(declared string) (*ResolvedPackage, error) {
	ref, err := ParseServiceRef(declared)
	if err != nil {
		return nil, errors.Trace(err)
	}
	logger.Debugf("installing %q", declared)
	if err := r.store.Install(ref); err != nil {
		return nil, errors.Annotatef(err, "installing %q", declared)
	}
	pkgPath, err := r.store.LatestInstalled(ref)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, &ResolutionError{
				Ref:    declared,
				Reason: "no installed package matches",
			}
		}
		return nil, errors.Annotatef(err, "resolving %q", declared)
	}
	ident, err := identFromPath(pkgPath)
	if err != nil {
		return nil, errors.Annotatef(err, "resolving %q", declared)
	}
	logger.Debugf("resolved %q to %s", declared, ident)
	pkg := &ResolvedPackage{
		DeclaredRef: declared,
		Ident:       ident,
		Path:        pkgPath,
		store:       r.store,
	}
	runnable, err := pkg.runnable()
	if err != nil {
		return nil, errors.Trace(err)
	}
	if !runnable {
		return nil, &NotAServiceError{Ref: declared}
	}
	return pkg, nil
}

// identFromPath recovers the fully qualified identifier of an installed
// package from its path, whose final four segments are always
// origin/name/version/release.
func identFromPath(pkgPath string) (ServiceRef, error) {
	segments := strings.Split(path.Clean(filepath.ToSlash(pkgPath)), "/")
	if len(segments) < 4 {
		return ServiceRef{}, errors.Errorf("package path %q too short to carry an identifier", pkgPath)
	}
	segments = segments[len(segments)-4:]
	ident, err := ParseServiceRef(strings.Join(segments, "/"))
	if err != nil {
		return ServiceRef{}, errors.Trace(err)
	}
	return ident, nil
}
