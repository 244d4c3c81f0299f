package gowrap

import (
	"bytes"
	"fmt"
	"go/types"

	"github.com/dave/jennifer/jen"
)

const (
	reflPath = "github.com/chazu/udrefl/refl"
	bindPath = "github.com/chazu/udrefl/bind"
)

// GenerateRegistration emits the Go source of a package named pkgName whose
// Register function adds every type in model to a refl.Registry. Sizes,
// alignments and offsets come from unsafe at compile time, so the generated
// code stays correct on every architecture. pkgName defaults to
// OutputPackageName(model.ImportPath).
func GenerateRegistration(model *PackageModel, pkgName string) ([]byte, error) {
	if pkgName == "" {
		pkgName = OutputPackageName(model.ImportPath)
	}

	f := jen.NewFile(pkgName)
	f.HeaderComment("Code generated by refl gen. DO NOT EDIT.")
	f.PackageComment(fmt.Sprintf("Package %s registers the types of %s with a refl.Registry.", pkgName, model.ImportPath))

	var funcs []jen.Code
	for i := range model.Types {
		funcs = append(funcs, jen.Id(RegisterFuncName(model.Types[i].Name)))
	}

	f.Comment(fmt.Sprintf("Register adds the exported types of %s to reg. Types already", model.ImportPath))
	f.Comment("registered are left untouched.")
	f.Func().Id("Register").Params(jen.Id("reg").Op("*").Qual(reflPath, "Registry")).Error().Block(
		jen.For(jen.List(jen.Id("_"), jen.Id("register")).Op(":=").Range().Index().Func().Params(jen.Op("*").Qual(reflPath, "Registry")).Error().Values(funcs...)).Block(
			jen.If(jen.Err().Op(":=").Id("register").Call(jen.Id("reg")), jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Err()),
			),
		),
		jen.Return(jen.Nil()),
	)

	for i := range model.Types {
		f.Line()
		genType(f, model, &model.Types[i])
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("gowrap: rendering %s: %w", model.ImportPath, err)
	}
	return buf.Bytes(), nil
}

func genType(f *jen.File, model *PackageModel, tm *TypeModel) {
	self := jen.Qual(model.ImportPath, tm.Name)
	name := CanonicalTypeName(model.ImportPath, tm.Name)

	body := []jen.Code{
		jen.Id("ti").Op(":=").Id("reg").Dot("GetTypeInfo").Call(
			jen.Qual(bindPath, "TypeIDOf").Index(self.Clone()).Call(),
		),
		jen.If(jen.Id("ti").Dot("GoType").Op("!=").Nil()).Block(jen.Return(jen.Nil())),
		jen.Var().Id("zero").Add(self.Clone()),
		jen.Id("ti").Dot("Name").Op("=").Lit(name),
		jen.Id("ti").Dot("Size").Op("=").Qual("unsafe", "Sizeof").Call(jen.Id("zero")),
		jen.Id("ti").Dot("Alignment").Op("=").Qual("unsafe", "Alignof").Call(jen.Id("zero")),
		jen.Id("ti").Dot("GoType").Op("=").Qual("reflect", "TypeFor").Index(self.Clone()).Call(),
	}

	for _, e := range tm.Embedded {
		typ, ok := typeCode(e.GoType)
		if !ok {
			log.Warningf("%s: skipping base %s of type %s", name, e.Name, e.TypeStr)
			continue
		}
		offset := jen.Qual("unsafe", "Offsetof").Call(jen.Id("zero").Dot(e.Name))
		if n, ok := types.Unalias(e.GoType).(*types.Named); ok && n.Obj().Pkg() != nil && n.Obj().Pkg().Path() == model.ImportPath {
			body = append(body, jen.Id("ti").Dot("AddBase").Call(
				jen.Lit(e.Name),
				jen.Id("reg").Dot("GetTypeInfo").Call(jen.Qual(bindPath, "TypeIDOf").Index(typ).Call()),
				offset,
				jen.False(),
			))
			continue
		}
		base := "base" + toPascal(e.Name)
		body = append(body,
			jen.List(jen.Id(base), jen.Err()).Op(":=").Qual(bindPath, "Struct").Index(typ).Call(jen.Id("reg")),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
			jen.Id("ti").Dot("AddBase").Call(jen.Lit(e.Name), jen.Id(base), offset, jen.False()),
		)
	}

	for _, fm := range tm.Fields {
		typ, ok := typeCode(fm.GoType)
		if !ok {
			log.Warningf("%s: skipping field %s of type %s", name, fm.Name, fm.TypeStr)
			continue
		}
		body = append(body, checked(
			jen.Qual(reflPath, "AddVar").Index(typ).Call(
				jen.Id("ti"),
				jen.Lit(fm.Name),
				jen.Qual("unsafe", "Offsetof").Call(jen.Id("zero").Dot(fm.Name)),
			),
		))
	}

	body = append(body, checked(jen.Qual(bindPath, "Lifecycle").Index(self.Clone()).Call(jen.Id("ti"))))

	for _, m := range tm.Methods {
		fn, ok := methodCode(self, m)
		if !ok {
			log.Warningf("%s: skipping method %s", name, m.Name)
			continue
		}
		body = append(body, checked(jen.Id("ti").Dot("AddFunc").Call(jen.Lit(m.Name), fn)))
	}

	body = append(body, jen.Return(jen.Nil()))

	f.Func().Id(RegisterFuncName(tm.Name)).Params(jen.Id("reg").Op("*").Qual(reflPath, "Registry")).Error().Block(body...)
}

// checked wraps a call returning error in an early return.
func checked(call jen.Code) jen.Code {
	return jen.If(jen.Err().Op(":=").Add(call), jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
}

// methodCode renders a closure taking the receiver as a refl.Object and
// forwarding to m.
func methodCode(self *jen.Statement, m FunctionModel) (jen.Code, bool) {
	if !m.Callable() {
		return nil, false
	}
	params := []jen.Code{jen.Id("o").Qual(reflPath, "Object")}
	var args []jen.Code
	for i, p := range m.Params {
		typ, ok := typeCode(p.GoType)
		if !ok {
			return nil, false
		}
		arg := fmt.Sprintf("p%d", i)
		params = append(params, jen.Id(arg).Add(typ))
		args = append(args, jen.Id(arg))
	}
	var results []jen.Code
	for _, r := range m.Results {
		typ, ok := typeCode(r.GoType)
		if !ok {
			return nil, false
		}
		results = append(results, typ)
	}

	call := jen.Parens(jen.Op("*").Add(self.Clone())).Call(jen.Id("o").Dot("Pointer").Call()).Dot(m.Name).Call(args...)
	fn := jen.Func().Params(params...)
	switch len(results) {
	case 0:
		return fn.Block(call), true
	case 1:
		return fn.Add(results[0]).Block(jen.Return(call)), true
	default:
		return fn.Params(results...).Block(jen.Return(call)), true
	}
}

// typeCode renders t as a type expression usable outside its package.
// Unexported named types and anonymous types with members cannot be, and
// report false.
func typeCode(t types.Type) (*jen.Statement, bool) {
	switch t := types.Unalias(t).(type) {
	case *types.Basic:
		switch {
		case t.Kind() == types.UnsafePointer:
			return jen.Qual("unsafe", "Pointer"), true
		case t.Kind() == types.Invalid || t.Info()&types.IsUntyped != 0:
			return nil, false
		}
		return jen.Id(t.Name()), true

	case *types.Named:
		obj := t.Obj()
		if obj.Pkg() == nil {
			return jen.Id(obj.Name()), true
		}
		if !obj.Exported() {
			return nil, false
		}
		s := jen.Qual(obj.Pkg().Path(), obj.Name())
		if args := t.TypeArgs(); args.Len() > 0 {
			var list []jen.Code
			for i := range args.Len() {
				a, ok := typeCode(args.At(i))
				if !ok {
					return nil, false
				}
				list = append(list, a)
			}
			s = s.Index(list...)
		}
		return s, true

	case *types.Pointer:
		return elem(t.Elem(), func(e *jen.Statement) *jen.Statement { return jen.Op("*").Add(e) })

	case *types.Slice:
		return elem(t.Elem(), func(e *jen.Statement) *jen.Statement { return jen.Index().Add(e) })

	case *types.Array:
		return elem(t.Elem(), func(e *jen.Statement) *jen.Statement { return jen.Index(jen.Lit(int(t.Len()))).Add(e) })

	case *types.Map:
		k, ok := typeCode(t.Key())
		if !ok {
			return nil, false
		}
		return elem(t.Elem(), func(e *jen.Statement) *jen.Statement { return jen.Map(k).Add(e) })

	case *types.Chan:
		return elem(t.Elem(), func(e *jen.Statement) *jen.Statement {
			switch t.Dir() {
			case types.SendOnly:
				return jen.Chan().Op("<-").Add(e)
			case types.RecvOnly:
				return jen.Op("<-").Chan().Add(e)
			}
			return jen.Chan().Add(e)
		})

	case *types.Signature:
		if t.Variadic() {
			return nil, false
		}
		var params, results []jen.Code
		for i := range t.Params().Len() {
			p, ok := typeCode(t.Params().At(i).Type())
			if !ok {
				return nil, false
			}
			params = append(params, p)
		}
		for i := range t.Results().Len() {
			r, ok := typeCode(t.Results().At(i).Type())
			if !ok {
				return nil, false
			}
			results = append(results, r)
		}
		fn := jen.Func().Params(params...)
		switch len(results) {
		case 0:
		case 1:
			fn.Add(results[0])
		default:
			fn.Params(results...)
		}
		return fn, true

	case *types.Interface:
		if t.Empty() {
			return jen.Any(), true
		}

	case *types.Struct:
		if t.NumFields() == 0 {
			return jen.Struct(), true
		}
	}
	return nil, false
}

func elem(t types.Type, wrap func(*jen.Statement) *jen.Statement) (*jen.Statement, bool) {
	e, ok := typeCode(t)
	if !ok {
		return nil, false
	}
	return wrap(e), true
}
