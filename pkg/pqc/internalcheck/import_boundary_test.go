package internalcheck

import (
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// purego may only be touched by the loading and symbol-binding layers;
// everything above them works with byte slices and typed errors.
var pureGoAllowed = map[string]bool{
	"github.com/QudsLab/pqchub-go/internal/loader": true,
	"github.com/QudsLab/pqchub-go/internal/native": true,
}

func loadModulePackages(t *testing.T) []*packages.Package {
	t.Helper()
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedImports | packages.NeedFiles,
	}
	pkgs, err := packages.Load(cfg, "github.com/QudsLab/pqchub-go/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	return pkgs
}

func TestPuregoConfinedToFFILayers(t *testing.T) {
	for _, pkg := range loadModulePackages(t) {
		for imp := range pkg.Imports {
			if strings.HasPrefix(imp, "github.com/ebitengine/purego") && !pureGoAllowed[pkg.PkgPath] {
				t.Errorf("%s imports %s; FFI access belongs in internal/loader and internal/native", pkg.PkgPath, imp)
			}
		}
	}
}

func TestNoUnsafeAnywhere(t *testing.T) {
	// The point of the typed binding layer is that no package in this
	// module needs raw pointer arithmetic.
	for _, pkg := range loadModulePackages(t) {
		if _, ok := pkg.Imports["unsafe"]; ok {
			t.Errorf("%s imports unsafe", pkg.PkgPath)
		}
	}
}

func TestInternalsNotImportedByCommands(t *testing.T) {
	// Commands go through pkg/pqc; reaching into internal resolution
	// packages from main would bypass the error taxonomy.
	for _, pkg := range loadModulePackages(t) {
		if !strings.HasPrefix(pkg.PkgPath, "github.com/QudsLab/pqchub-go/cmd/") {
			continue
		}
		for imp := range pkg.Imports {
			if strings.HasPrefix(imp, "github.com/QudsLab/pqchub-go/internal/") &&
				imp != "github.com/QudsLab/pqchub-go/internal/config" {
				t.Errorf("%s imports %s; commands should use pkg/pqc", pkg.PkgPath, imp)
			}
		}
	}
}
