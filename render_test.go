// Copyright 2017 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package composite_test

import (
	"os"
	"path/filepath"

	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/composite"
)

type renderSuite struct{}

var _ = gc.Suite(&renderSuite{})

func (s *renderSuite) metadata() *composite.CompositeMetadata {
	return &composite.CompositeMetadata{
		Ident:    composite.MustParseServiceRef("acme/full-stack/1.0.0/20170101120000"),
		Target:   "x86_64-linux",
		Services: []string{"core/router", "core/api"},
		Resolved: map[string]*composite.ResolvedPackage{
			"core/router": {
				DeclaredRef: "core/router",
				Ident:       composite.MustParseServiceRef("core/router/2.1/20170202130000"),
			},
			"core/api": {
				DeclaredRef: "core/api",
				Ident:       composite.MustParseServiceRef("core/api/1.0.0/20170101120000"),
			},
		},
		Binds: composite.BindMap{
			"core/api": {{Bind: "router", Satisfier: "core/router"}},
		},
		Sets: map[string][]string{
			"migrations": {"core/api"},
			"all":        {"core/router", "core/api"},
		},
	}
}

func (s *renderSuite) readFile(c *gc.C, dir, name string) string {
	data, err := os.ReadFile(filepath.Join(dir, name))
	c.Assert(err, jc.ErrorIsNil)
	return string(data)
}

func (s *renderSuite) TestRender(c *gc.C) {
	dir := c.MkDir()
	meta := s.metadata()
	c.Assert(meta.Render(dir), jc.ErrorIsNil)

	c.Check(s.readFile(c, dir, "IDENT"), gc.Equals, "acme/full-stack/1.0.0/20170101120000\n")
	c.Check(s.readFile(c, dir, "TYPE"), gc.Equals, "composite\n")
	c.Check(s.readFile(c, dir, "TARGET"), gc.Equals, "x86_64-linux\n")
	c.Check(s.readFile(c, dir, "SERVICES"), gc.Equals, "core/api\ncore/router\n")
	c.Check(s.readFile(c, dir, "RESOLVED_SERVICES"), gc.Equals,
		"core/api/1.0.0/20170101120000\ncore/router/2.1/20170202130000\n")
	c.Check(s.readFile(c, dir, "BIND_MAP"), gc.Equals, "core/api=router:core/router\n")
	c.Check(s.readFile(c, dir, "SERVICE_SETS"), gc.Equals,
		"all=core/api core/router\nmigrations=core/api\n")
}

func (s *renderSuite) TestRenderEmptyStructuresRenderNoFile(c *gc.C) {
	dir := c.MkDir()
	meta := s.metadata()
	meta.Target = ""
	meta.Binds = nil
	meta.Sets = nil
	c.Assert(meta.Render(dir), jc.ErrorIsNil)

	for _, name := range []string{"TARGET", "BIND_MAP", "SERVICE_SETS"} {
		_, err := os.Stat(filepath.Join(dir, name))
		c.Check(os.IsNotExist(err), jc.IsTrue, gc.Commentf("%s should not exist", name))
	}
}

func (s *renderSuite) TestRenderRemovesStaleOptionalFiles(c *gc.C) {
	dir := c.MkDir()
	meta := s.metadata()
	c.Assert(meta.Render(dir), jc.ErrorIsNil)

	meta.Binds = nil
	meta.Sets = nil
	c.Assert(meta.Render(dir), jc.ErrorIsNil)
	for _, name := range []string{"BIND_MAP", "SERVICE_SETS"} {
		_, err := os.Stat(filepath.Join(dir, name))
		c.Check(os.IsNotExist(err), jc.IsTrue)
	}
}

func (s *renderSuite) TestRenderIsDeterministic(c *gc.C) {
	// Permuting declaration order changes nothing: rendered output
	// is a pure, sorted function of the validated model.
	first := c.MkDir()
	meta := s.metadata()
	c.Assert(meta.Render(first), jc.ErrorIsNil)

	permuted := s.metadata()
	permuted.Services = []string{"core/api", "core/router"}
	permuted.Sets = map[string][]string{
		"all":        {"core/api", "core/router"},
		"migrations": {"core/api"},
	}
	second := c.MkDir()
	c.Assert(permuted.Render(second), jc.ErrorIsNil)

	for _, name := range []string{
		"IDENT", "TYPE", "TARGET", "SERVICES",
		"RESOLVED_SERVICES", "BIND_MAP", "SERVICE_SETS",
	} {
		c.Check(s.readFile(c, first, name), gc.Equals, s.readFile(c, second, name),
			gc.Commentf("%s differs", name))
	}
}

func (s *renderSuite) TestRenderIsIdempotent(c *gc.C) {
	dir := c.MkDir()
	meta := s.metadata()
	c.Assert(meta.Render(dir), jc.ErrorIsNil)
	before := s.readFile(c, dir, "SERVICES")
	c.Assert(meta.Render(dir), jc.ErrorIsNil)
	c.Check(s.readFile(c, dir, "SERVICES"), gc.Equals, before)
}

func (s *renderSuite) TestRenderMultipleBindsSortedWithinLine(c *gc.C) {
	dir := c.MkDir()
	meta := s.metadata()
	meta.Binds = composite.BindMap{
		"core/api": {
			{Bind: "router", Satisfier: "core/router"},
			{Bind: "database", Satisfier: "core/router"},
		},
	}
	c.Assert(meta.Render(dir), jc.ErrorIsNil)
	c.Check(s.readFile(c, dir, "BIND_MAP"), gc.Equals,
		"core/api=database:core/router,router:core/router\n")
}
