// Copyright 2017 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package fsstore implements composite.PackageStore over a local
// install tree laid out as <root>/<origin>/<name>/<version>/<release>.
package fsstore

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/juju/composite"
)

var logger = loggo.GetLogger("composite.fsstore")

// InstallFunc installs the package matching ref below root. The store
// itself never talks to the network; callers wire in whatever
// acquisition policy they have.
type InstallFunc func(ref composite.ServiceRef, root string) error

// Store is a filesystem-backed PackageStore.
type Store struct {
	root    string
	install InstallFunc
}

// New returns a store over the install tree rooted at root. The store
// can resolve and read what is already installed but installs nothing.
func New(root string) *Store {
	return &Store{root: root}
}

// NewWithInstaller returns a store that delegates installation of
// missing packages to install.
func NewWithInstaller(root string, install InstallFunc) *Store {
	return &Store{root: root, install: install}
}

// Install implements composite.PackageStore. A pre-existing installed
// match satisfies the call without reinstalling. An installer failure
// is logged and swallowed: whether the package is usable is decided by
// the resolution that follows, not by the acquisition attempt.
func (s *Store) Install(ref composite.ServiceRef) error {
	if _, err := s.LatestInstalled(ref); err == nil {
		logger.Debugf("%q already installed", ref)
		return nil
	} else if !errors.IsNotFound(err) {
		return errors.Trace(err)
	}
	if s.install == nil {
		return nil
	}
	if err := s.install(ref, s.root); err != nil {
		logger.Warningf("installing %q: %v", ref, err)
	}
	return nil
}

// LatestInstalled implements composite.PackageStore. The reference's
// specificity determines how many path segments below the install root
// form one candidate: an origin/name reference walks versions and
// releases, a versioned one walks releases only, and a fully qualified
// one matches exactly. Candidates order by version-aware descending
// sort, version before release.
func (s *Store) LatestInstalled(ref composite.ServiceRef) (string, error) {
	base := filepath.Join(s.root, ref.Origin, ref.Name)
	if ref.Version != "" {
		base = filepath.Join(base, ref.Version)
		if ref.Release != "" {
			// Fully qualified: the path either exists or it doesn't.
			full := filepath.Join(base, ref.Release)
			if fi, err := os.Stat(full); err == nil && fi.IsDir() {
				return full, nil
			}
			return "", errors.NotFoundf("installed package matching %q", ref)
		}
		release, err := latestEntry(base)
		if err != nil {
			return "", errors.Trace(err)
		}
		if release == "" {
			return "", errors.NotFoundf("installed package matching %q", ref)
		}
		return filepath.Join(base, release), nil
	}

	versions, err := sortedEntries(base)
	if err != nil {
		return "", errors.Trace(err)
	}
	// Versions descending; within the newest version holding any
	// release, releases descending.
	for _, version := range versions {
		release, err := latestEntry(filepath.Join(base, version))
		if err != nil {
			return "", errors.Trace(err)
		}
		if release != "" {
			return filepath.Join(base, version, release), nil
		}
	}
	return "", errors.NotFoundf("installed package matching %q", ref)
}

// ReadMetadataFile implements composite.PackageStore. The name may be a
// relative path within the package, such as "hooks/run". A missing file
// reads as empty content.
func (s *Store) ReadMetadataFile(path, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(path, name))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.Trace(err)
	}
	return string(data), nil
}

// latestEntry returns the entry of dir that sorts last under natural
// version order, or "" when dir is missing or empty.
func latestEntry(dir string) (string, error) {
	entries, err := sortedEntries(dir)
	if err != nil {
		return "", errors.Trace(err)
	}
	if len(entries) == 0 {
		return "", nil
	}
	return entries[0], nil
}

// sortedEntries lists dir's subdirectories in version-aware descending
// order. A missing dir is an empty list, not an error.
func sortedEntries(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return composite.CompareVersions(names[i], names[j]) > 0
	})
	return names, nil
}
