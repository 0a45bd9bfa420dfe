// Copyright 2017 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package composite_test

import (
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/composite"
)

type metadataSuite struct{}

var _ = gc.Suite(&metadataSuite{})

func (s *metadataSuite) resolveOne(c *gc.C, store *fakeStore, ref string) *composite.ResolvedPackage {
	resolved, err := composite.NewServiceResolver(store).Resolve([]string{ref})
	c.Assert(err, jc.ErrorIsNil)
	return resolved[ref]
}

func (s *metadataSuite) TestBinds(c *gc.C) {
	store := newFakeStore()
	store.addService("core/api", "/hab/pkgs/core/api/1.0.0/20170101120000", map[string]string{
		"BINDS": "router=listen_addr,listen_port\ndatabase=dsn\n",
	})
	pkg := s.resolveOne(c, store, "core/api")

	binds, err := pkg.Binds()
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(binds, gc.HasLen, 2)
	c.Check(binds["router"].SortedValues(), jc.DeepEquals, []string{"listen_addr", "listen_port"})
	c.Check(binds["database"].SortedValues(), jc.DeepEquals, []string{"dsn"})
}

func (s *metadataSuite) TestOptionalBinds(c *gc.C) {
	store := newFakeStore()
	store.addService("core/api", "/hab/pkgs/core/api/1.0.0/20170101120000", map[string]string{
		"BINDS_OPTIONAL": "cache=host,port\n",
	})
	pkg := s.resolveOne(c, store, "core/api")

	optional, err := pkg.OptionalBinds()
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(optional, gc.HasLen, 1)
	c.Check(optional["cache"].SortedValues(), jc.DeepEquals, []string{"host", "port"})
}

func (s *metadataSuite) TestExportsKeysOnly(c *gc.C) {
	store := newFakeStore()
	store.addService("core/router", "/hab/pkgs/core/router/2.1/20170202130000", map[string]string{
		"EXPORTS": "listen_addr=0.0.0.0:9631\nlisten_port=9631\nnote=key=value lines keep the first split\n",
	})
	pkg := s.resolveOne(c, store, "core/router")

	exports, err := pkg.Exports()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(exports.SortedValues(), jc.DeepEquals, []string{"listen_addr", "listen_port", "note"})
}

func (s *metadataSuite) TestNoMetadataFilesIsEmptyNotError(c *gc.C) {
	store := newFakeStore()
	store.addService("core/api", "/hab/pkgs/core/api/1.0.0/20170101120000", nil)
	pkg := s.resolveOne(c, store, "core/api")

	binds, err := pkg.Binds()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(binds, gc.HasLen, 0)
	exports, err := pkg.Exports()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(exports.IsEmpty(), jc.IsTrue)
}

func (s *metadataSuite) TestMetadataReadOnce(c *gc.C) {
	store := newFakeStore()
	store.addService("core/api", "/hab/pkgs/core/api/1.0.0/20170101120000", map[string]string{
		"EXPORTS": "port=80\n",
	})
	pkg := s.resolveOne(c, store, "core/api")
	store.stub.ResetCalls()

	for i := 0; i < 3; i++ {
		exports, err := pkg.Exports()
		c.Assert(err, jc.ErrorIsNil)
		c.Check(exports.Contains("port"), jc.IsTrue)
	}
	// The EXPORTS file was read lazily, exactly once.
	c.Check(store.stub.Calls(), gc.HasLen, 1)
}

func (s *metadataSuite) TestBlankAndMalformedLinesIgnored(c *gc.C) {
	store := newFakeStore()
	store.addService("core/api", "/hab/pkgs/core/api/1.0.0/20170101120000", map[string]string{
		"BINDS":   "\nrouter=ip\n\nnot a bind line\n",
		"EXPORTS": "\nip=10.0.0.1\nnoequals\n",
	})
	pkg := s.resolveOne(c, store, "core/api")

	binds, err := pkg.Binds()
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(binds, gc.HasLen, 1)
	c.Check(binds["router"].SortedValues(), jc.DeepEquals, []string{"ip"})

	exports, err := pkg.Exports()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(exports.SortedValues(), jc.DeepEquals, []string{"ip"})
}
