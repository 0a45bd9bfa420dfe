// Copyright 2017 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package composite

// PackageStore is the external collaborator that knows how packages are
// installed on this system. The composite build never installs over the
// network itself; all artifact acquisition and channel fallback policy
// belongs behind this interface.
type PackageStore interface {
	// Install ensures a package matching ref is installed. It must
	// be idempotent: a pre-existing match satisfies the call without
	// reinstalling. Installation failure is the store's own policy
	// to surface or swallow; the build only cares whether a
	// candidate can subsequently be resolved.
	Install(ref ServiceRef) error

	// LatestInstalled returns the filesystem path of the most recent
	// installed package matching ref, choosing among candidates by
	// version-aware descending order. It returns an error satisfying
	// errors.IsNotFound when no installed candidate matches.
	LatestInstalled(ref ServiceRef) (string, error)

	// ReadMetadataFile returns the content of the named metadata
	// file of the package installed at path. A missing file is not
	// an error: the content is empty. Any other read failure is.
	ReadMetadataFile(path, name string) (string, error)
}
