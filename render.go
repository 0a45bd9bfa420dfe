// Copyright 2017 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package composite

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/utils/v4"
)

// Metadata files rendered for the composite package itself. All output
// is plain text, line oriented, sorted, UTF-8 and newline terminated,
// so identical validated input always renders identical bytes.
const (
	identFile            = "IDENT"
	typeFile             = "TYPE"
	targetFile           = "TARGET"
	servicesFile         = "SERVICES"
	resolvedServicesFile = "RESOLVED_SERVICES"
	bindMapFile          = "BIND_MAP"
	serviceSetsFile      = "SERVICE_SETS"
)

// compositeType is the package type recorded for every rendered
// composite, distinguishing it from standalone packages.
const compositeType = "composite"

// CompositeMetadata is the validated model of a composite, created only
// after resolution and every validation pass succeed. It is write-once:
// rendering is a pure function of this value and re-reads no external
// state.
type CompositeMetadata struct {
	// Ident is the composite's own fully qualified identifier.
	Ident ServiceRef

	// Target is the platform target, possibly empty.
	Target string

	// Services are the member references in declared literal form.
	Services []string

	// Resolved maps each declared reference to its resolved package.
	Resolved map[string]*ResolvedPackage

	// Binds is the validated bind map.
	Binds BindMap

	// Sets are the validated named service sets.
	Sets map[string][]string
}

// Render writes the composite's metadata files into dir, which must
// exist. Files for empty structures are not written at all, and any
// stale one from a previous render is removed: absence, not an empty
// file, signals "no data".
func (m *CompositeMetadata) Render(dir string) error {
	if err := writeMetadataFile(dir, identFile, m.Ident.String()+"\n"); err != nil {
		return errors.Trace(err)
	}
	if err := writeMetadataFile(dir, typeFile, compositeType+"\n"); err != nil {
		return errors.Trace(err)
	}
	if err := renderOptional(dir, targetFile, m.renderTarget()); err != nil {
		return errors.Trace(err)
	}
	if err := writeMetadataFile(dir, servicesFile, m.renderServices()); err != nil {
		return errors.Trace(err)
	}
	if err := writeMetadataFile(dir, resolvedServicesFile, m.renderResolved()); err != nil {
		return errors.Trace(err)
	}
	if err := renderOptional(dir, bindMapFile, m.renderBinds()); err != nil {
		return errors.Trace(err)
	}
	if err := renderOptional(dir, serviceSetsFile, m.renderSets()); err != nil {
		return errors.Trace(err)
	}
	return nil
}

func (m *CompositeMetadata) renderTarget() string {
	if m.Target == "" {
		return ""
	}
	return m.Target + "\n"
}

func (m *CompositeMetadata) renderServices() string {
	services := make([]string, len(m.Services))
	copy(services, m.Services)
	sort.Strings(services)
	return strings.Join(services, "\n") + "\n"
}

func (m *CompositeMetadata) renderResolved() string {
	idents := make([]string, 0, len(m.Resolved))
	for _, pkg := range m.Resolved {
		idents = append(idents, pkg.Ident.String())
	}
	sort.Strings(idents)
	return strings.Join(idents, "\n") + "\n"
}

func (m *CompositeMetadata) renderBinds() string {
	if len(m.Binds) == 0 {
		return ""
	}
	services := make([]string, 0, len(m.Binds))
	for service := range m.Binds {
		services = append(services, service)
	}
	sort.Strings(services)
	var lines []string
	for _, service := range services {
		pairs := make([]BindPair, len(m.Binds[service]))
		copy(pairs, m.Binds[service])
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].Bind < pairs[j].Bind })
		entries := make([]string, len(pairs))
		for i, pair := range pairs {
			entries[i] = pair.Bind + ":" + pair.Satisfier
		}
		lines = append(lines, service+"="+strings.Join(entries, ","))
	}
	return strings.Join(lines, "\n") + "\n"
}

func (m *CompositeMetadata) renderSets() string {
	if len(m.Sets) == 0 {
		return ""
	}
	names := make([]string, 0, len(m.Sets))
	for name := range m.Sets {
		names = append(names, name)
	}
	sort.Strings(names)
	var lines []string
	for _, name := range names {
		members := make([]string, len(m.Sets[name]))
		copy(members, m.Sets[name])
		sort.Strings(members)
		lines = append(lines, name+"="+strings.Join(members, " "))
	}
	return strings.Join(lines, "\n") + "\n"
}

// renderOptional writes the file when content is non-empty and removes
// it otherwise.
func renderOptional(dir, name, content string) error {
	if content == "" {
		err := os.Remove(filepath.Join(dir, name))
		if err != nil && !os.IsNotExist(err) {
			return errors.Trace(err)
		}
		return nil
	}
	return writeMetadataFile(dir, name, content)
}

func writeMetadataFile(dir, name, content string) error {
	path := filepath.Join(dir, name)
	if err := utils.AtomicWriteFile(path, []byte(content), 0644); err != nil {
		return errors.Annotatef(err, "writing %s", name)
	}
	return nil
}
