// Command checksize is a build-time assertion that MessageEnvelope
// stays exactly one cache line (64 bytes) at its natural alignment. It
// loads and type-checks internal/envelope without running it, the same
// way the codable generator type-checks a package before emitting code.
//
// Go has no way to pin a value type's alignment to the cache line size,
// so the alignment this checks is the type's actual alignment (8, from
// its widest field) rather than 64 — drifting off 8 would mean a field
// of a wider type snuck into the envelope, which is the failure this
// check can actually catch.
package main

import (
	"flag"
	"fmt"
	"go/types"
	"os"
	"runtime"

	"golang.org/x/tools/go/packages"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "checksize: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	pkgPath := flag.String("pkg", "github.com/sagehft/sage/internal/envelope", "package to inspect")
	typeName := flag.String("type", "MessageEnvelope", "type whose size/alignment to check")
	wantSize := flag.Int("size", 64, "expected size in bytes")
	wantAlign := flag.Int("align", 8, "expected alignment in bytes (the type's natural alignment, not the cache line size)")
	flag.Parse()

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedDeps,
	}
	pkgs, err := packages.Load(cfg, *pkgPath)
	if err != nil {
		return err
	}
	if len(pkgs) == 0 {
		return fmt.Errorf("package not found: %s", *pkgPath)
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return fmt.Errorf("type check failed: %s", pkg.Errors[0])
	}

	obj := pkg.Types.Scope().Lookup(*typeName)
	if obj == nil {
		return fmt.Errorf("type %s not found in %s", *typeName, *pkgPath)
	}
	named, ok := obj.Type().(*types.Named)
	if !ok {
		return fmt.Errorf("%s is not a named type", *typeName)
	}

	sizes := types.SizesFor("gc", runtime.GOARCH)
	if sizes == nil {
		sizes = types.SizesFor("gc", "amd64")
	}

	gotSize := sizes.Sizeof(named)
	gotAlign := sizes.Alignof(named)

	if int(gotSize) != *wantSize {
		return fmt.Errorf("%s.%s size = %d bytes, want %d", *pkgPath, *typeName, gotSize, *wantSize)
	}
	if int(gotAlign) != *wantAlign {
		return fmt.Errorf("%s.%s alignment = %d bytes, want %d", *pkgPath, *typeName, gotAlign, *wantAlign)
	}

	fmt.Printf("%s.%s: size=%d align=%d OK\n", *pkgPath, *typeName, gotSize, gotAlign)
	return nil
}
