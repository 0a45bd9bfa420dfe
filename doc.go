// Copyright 2017 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package composite validates and renders composite service packages.
//
// A composite bundles two or more independently packaged services into a
// single deployable unit. At build time the package guarantees that the
// composition is internally consistent: every bind (a named interface a
// service requires) is mapped to another service in the composite, or to
// an explicitly external reference, whose exports supply every
// configuration key the bind needs.
//
// The pipeline is a single synchronous pass: declared service references
// are resolved against a PackageStore to concrete installed packages,
// their export metadata is aggregated, the declared bind map and named
// service sets are validated against the resolved model, and the result
// is rendered deterministically to the composite's metadata files. Any
// failure aborts the whole build; a partial composite is never produced.
package composite
