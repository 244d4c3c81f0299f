package gowrap

import (
	"fmt"
	"go/constant"
	"go/types"
	"runtime"

	"github.com/tliron/commonlog"
	"golang.org/x/tools/go/packages"
)

var log = commonlog.GetLogger("udrefl.gowrap")

// Options control IntrospectPackage.
type Options struct {
	// Include, if non-nil, restricts which exported names are included.
	Include map[string]bool
	// Arch is the GOARCH layouts are computed for. Defaults to runtime.GOARCH.
	Arch string
	// Dir is the directory packages are resolved from. Defaults to the
	// current directory.
	Dir string
}

// IntrospectPackage loads a Go package by import path and returns its API
// model, including the size, alignment and field offsets of every exported
// type as the gc compiler lays them out for opts.Arch.
func IntrospectPackage(importPath string, opts Options) (*PackageModel, error) {
	arch := opts.Arch
	if arch == "" {
		arch = runtime.GOARCH
	}
	sizes := types.SizesFor("gc", arch)
	if sizes == nil {
		return nil, fmt.Errorf("gowrap: unknown architecture %q", arch)
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedSyntax,
		Dir:  opts.Dir,
	}

	pkgs, err := packages.Load(cfg, importPath)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", importPath, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found for %s", importPath)
	}
	if len(pkgs[0].Errors) > 0 {
		return nil, fmt.Errorf("package errors: %v", pkgs[0].Errors)
	}

	pkg := pkgs[0]
	if pkg.Types == nil {
		return nil, fmt.Errorf("type information not available for %s", importPath)
	}

	model := &PackageModel{
		ImportPath: pkg.PkgPath,
		Name:       pkg.Name,
		Arch:       arch,
	}

	scope := pkg.Types.Scope()

	for _, name := range scope.Names() {
		if opts.Include != nil && !opts.Include[name] {
			continue
		}

		obj := scope.Lookup(name)
		if !obj.Exported() {
			continue
		}

		switch o := obj.(type) {
		case *types.Func:
			model.Functions = append(model.Functions, extractFunction(o, pkg.Types))

		case *types.TypeName:
			if tm := extractType(o, pkg.Types, sizes); tm != nil {
				model.Types = append(model.Types, *tm)
			}

		case *types.Const:
			model.Constants = append(model.Constants, extractConstant(o))
		}
	}

	log.Debugf("%s: %d types, %d functions (%s)", model.ImportPath, len(model.Types), len(model.Functions), arch)
	return model, nil
}

func extractFunction(fn *types.Func, pkg *types.Package) FunctionModel {
	sig := fn.Type().(*types.Signature)
	return functionModelFromSig(fn.Name(), sig, "", pkg)
}

func extractType(tn *types.TypeName, pkg *types.Package, sizes types.Sizes) *TypeModel {
	if tn.IsAlias() {
		return nil
	}
	named, ok := tn.Type().(*types.Named)
	if !ok {
		return nil
	}
	if named.TypeParams().Len() > 0 {
		log.Warningf("%s.%s: generic types have no single layout, skipping", pkg.Path(), tn.Name())
		return nil
	}
	if _, ok := named.Underlying().(*types.Interface); ok {
		return nil
	}

	tm := &TypeModel{
		Name:   tn.Name(),
		GoType: named,
		Size:   sizes.Sizeof(named),
		Align:  sizes.Alignof(named),
	}

	if st, ok := named.Underlying().(*types.Struct); ok {
		tm.IsStruct = true
		vars := make([]*types.Var, st.NumFields())
		for i := range vars {
			vars[i] = st.Field(i)
		}
		offsets := sizes.Offsetsof(vars)
		for i, f := range vars {
			fm := FieldModel{
				Name:     f.Name(),
				GoType:   f.Type(),
				TypeStr:  types.TypeString(f.Type(), qualifier(pkg)),
				Offset:   offsets[i],
				Size:     sizes.Sizeof(f.Type()),
				Exported: f.Exported(),
			}
			switch {
			case f.Embedded():
				if _, ok := f.Type().Underlying().(*types.Struct); ok && f.Exported() {
					tm.Embedded = append(tm.Embedded, fm)
				}
			case f.Exported():
				tm.Fields = append(tm.Fields, fm)
			}
		}
	}

	// Collect pointer-receiver methods
	ptrType := types.NewPointer(named)
	mset := types.NewMethodSet(ptrType)
	for i := 0; i < mset.Len(); i++ {
		sel := mset.At(i)
		fn, ok := sel.Obj().(*types.Func)
		if !ok || !fn.Exported() {
			continue
		}
		// Only include methods directly defined on this type (not promoted)
		if len(sel.Index()) > 1 {
			continue
		}
		sig := fn.Type().(*types.Signature)
		tm.Methods = append(tm.Methods, functionModelFromSig(fn.Name(), sig, "*"+tn.Name(), pkg))
	}

	return tm
}

func extractConstant(c *types.Const) ConstantModel {
	val := c.Val()
	valStr := ""
	if val.Kind() == constant.String {
		valStr = constant.StringVal(val)
	} else {
		valStr = val.ExactString()
	}
	return ConstantModel{
		Name:    c.Name(),
		TypeStr: c.Type().String(),
		Value:   valStr,
	}
}

func functionModelFromSig(name string, sig *types.Signature, recvType string, pkg *types.Package) FunctionModel {
	fm := FunctionModel{
		Name:     name,
		IsMethod: recvType != "",
		RecvType: recvType,
		Variadic: sig.Variadic(),
	}

	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		p := params.At(i)
		fm.Params = append(fm.Params, ParamModel{
			Name:    p.Name(),
			GoType:  p.Type(),
			TypeStr: types.TypeString(p.Type(), qualifier(pkg)),
		})
	}

	results := sig.Results()
	for i := 0; i < results.Len(); i++ {
		r := results.At(i)
		fm.Results = append(fm.Results, ParamModel{
			Name:    r.Name(),
			GoType:  r.Type(),
			TypeStr: types.TypeString(r.Type(), qualifier(pkg)),
		})
	}

	if results.Len() > 0 && isErrorType(results.At(results.Len()-1).Type()) {
		fm.ReturnsErr = true
	}

	return fm
}

func isErrorType(t types.Type) bool {
	return types.Identical(t, types.Universe.Lookup("error").Type())
}

func qualifier(pkg *types.Package) types.Qualifier {
	return func(other *types.Package) string {
		if other == pkg {
			return ""
		}
		return other.Name()
	}
}
