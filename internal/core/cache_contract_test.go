package core

import (
	"go/types"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestRecordCacheImplementationsHardening ensures only sanctioned packages
// provide concrete implementations of the core.RecordCache interface. This
// guards architectural drift from introducing additional cache backends
// outside the vetted location without an explicit test update.
func TestRecordCacheImplementationsHardening(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedTypes}
	pkgs, err := packages.Load(cfg, "inventoryclient/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	var recordCache *types.Interface
	for _, p := range pkgs {
		if p.PkgPath == "inventoryclient/internal/core" {
			obj := p.Types.Scope().Lookup("RecordCache")
			if obj == nil {
				t.Fatalf("core.RecordCache not found")
			}
			iface, ok := obj.Type().Underlying().(*types.Interface)
			if !ok {
				t.Fatalf("core.RecordCache is not an interface")
			}
			recordCache = iface
		}
	}
	if recordCache == nil {
		t.Fatalf("failed to resolve RecordCache interface")
	}
	allowed := map[string]struct{}{
		"inventoryclient/internal/infra/cache/sqlite": {},
	}
	var unexpected []string
	for _, p := range pkgs {
		if p.Types == nil || p.Types.Scope() == nil {
			continue
		}
		for _, name := range p.Types.Scope().Names() {
			obj := p.Types.Scope().Lookup(name)
			named, ok := obj.Type().(*types.Named)
			if !ok {
				continue
			}
			if _, ok := named.Underlying().(*types.Struct); !ok {
				continue
			}
			if types.Implements(types.NewPointer(named), recordCache) {
				if _, ok := allowed[p.PkgPath]; !ok {
					unexpected = append(unexpected, p.PkgPath+"."+name)
				}
			}
		}
	}
	if len(unexpected) > 0 {
		t.Fatalf("unexpected RecordCache implementations (update the allowed list intentionally if adding a new backend):\n%v", unexpected)
	}
}
