// Copyright 2017 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package composite

import (
	"io"
	"strings"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/schema"
	"gopkg.in/yaml.v2"
)

// Declaration is the composite author's input: the composite's own
// identity, its member services, the bind wiring between them, any
// references allowed as external satisfiers, and named service sets
// for selective startup.
type Declaration struct {
	// Ident is the composite's own fully qualified identifier.
	Ident ServiceRef

	// Target is the platform target the composite is built for. It
	// may be empty.
	Target string

	// Services lists the member service references in their literal
	// declared form.
	Services []string

	// Binds is the declared bind wiring, keyed by declaring service.
	Binds BindMap

	// Externals lists references permitted as bind satisfiers
	// without being members of the composite.
	Externals []string

	// Sets maps set names to subsets of Services.
	Sets map[string][]string
}

var declarationSchema = schema.FieldMap(
	schema.Fields{
		"ident":     schema.String(),
		"target":    schema.String(),
		"services":  schema.List(schema.String()),
		"binds":     schema.StringMap(schema.List(schema.String())),
		"externals": schema.List(schema.String()),
		"sets":      schema.StringMap(schema.List(schema.String())),
	},
	schema.Defaults{
		"target":    "",
		"binds":     schema.Omit,
		"externals": schema.Omit,
		"sets":      schema.Omit,
	},
)

// ReadDeclaration reads and validates a YAML composite declaration.
func ReadDeclaration(r io.Reader) (*Declaration, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Trace(err)
	}
	raw := make(map[interface{}]interface{})
	if err := yaml.Unmarshal(data, raw); err != nil {
		return nil, errors.Annotate(err, "parsing composite declaration")
	}
	v, err := declarationSchema.Coerce(raw, nil)
	if err != nil {
		return nil, errors.Annotate(err, "composite declaration")
	}
	m := v.(map[string]interface{})

	decl := &Declaration{
		Target: m["target"].(string),
	}
	ident, err := ParseServiceRef(m["ident"].(string))
	if err != nil {
		return nil, errors.Annotate(err, "composite declaration ident")
	}
	decl.Ident = ident
	decl.Services = stringList(m["services"])
	decl.Externals = stringList(m["externals"])
	decl.Sets = stringListMap(m["sets"])
	decl.Binds, err = parseBindMap(m["binds"])
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err := decl.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return decl, nil
}

// Validate checks the declaration's internal consistency: the
// composite's identifier is fully qualified, at least two services are
// declared, no service is declared twice, every reference parses, and
// the bind map only wires declared services. Whether binds are
// satisfiable needs the resolved packages and is the bind validator's
// business, not the declaration's.
func (d *Declaration) Validate() error {
	if !d.Ident.FullyQualified() {
		return &FullyQualifiedRequiredError{Ref: d.Ident.String()}
	}
	if len(d.Services) < 2 {
		return &InsufficientServiceCountError{Count: len(d.Services)}
	}
	seen := set.NewStrings()
	for _, declared := range d.Services {
		if _, err := ParseServiceRef(declared); err != nil {
			return errors.Trace(err)
		}
		if seen.Contains(declared) {
			return errors.Errorf("service %q declared twice", declared)
		}
		seen.Add(declared)
	}
	for _, external := range d.Externals {
		if _, err := ParseServiceRef(external); err != nil {
			return errors.Trace(err)
		}
	}
	for service := range d.Binds {
		if !seen.Contains(service) {
			return errors.Errorf("bind mapping for undeclared service %q", service)
		}
	}
	return nil
}

// parseBindMap parses the coerced bind section, whose entries have the
// form "bind_name:satisfier_reference".
func parseBindMap(value interface{}) (BindMap, error) {
	if value == nil {
		return nil, nil
	}
	binds := make(BindMap)
	for service, entries := range value.(map[string]interface{}) {
		var pairs []BindPair
		for _, entry := range entries.([]interface{}) {
			s := entry.(string)
			bind, satisfier, ok := strings.Cut(s, ":")
			if !ok || bind == "" || satisfier == "" {
				return nil, errors.Errorf(
					"malformed bind %q for service %q: expected \"bind:satisfier\"", s, service)
			}
			pairs = append(pairs, BindPair{Bind: bind, Satisfier: satisfier})
		}
		binds[service] = pairs
	}
	return binds, nil
}

func stringList(value interface{}) []string {
	if value == nil {
		return nil
	}
	items := value.([]interface{})
	result := make([]string, len(items))
	for i, item := range items {
		result[i] = item.(string)
	}
	return result
}

func stringListMap(value interface{}) map[string][]string {
	if value == nil {
		return nil
	}
	result := make(map[string][]string)
	for name, items := range value.(map[string]interface{}) {
		result[name] = stringList(items)
	}
	return result
}
