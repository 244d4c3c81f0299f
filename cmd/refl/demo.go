package main

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/udrefl/bind"
	"github.com/chazu/udrefl/ident"
	"github.com/chazu/udrefl/refl"
	"github.com/chazu/udrefl/snapshot"
)

type named struct {
	Name string
}

type vec3 struct {
	named
	X, Y, Z float64
}

func (v *vec3) Norm() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

func (v *vec3) Scale(k float64) { v.X, v.Y, v.Z = v.X*k, v.Y*k, v.Z*k }

// handleDemoCommand processes the `refl demo` subcommand: it binds a sample
// type into a registry configured from refl.toml, then drives an instance
// purely through the descriptor.
func handleDemoCommand(opts *options) (err error) {
	reg := opts.manifest.NewRegistry()

	ti, err := bind.Struct[vec3](reg)
	if err != nil {
		return err
	}
	err = bind.Method[vec3](ti, ident.Meta.Add, func(a *vec3, b vec3) vec3 {
		return vec3{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z}
	})
	if err != nil {
		return err
	}
	bind.Static(ti, "Dims", 3)

	obj, err := ti.New()
	if err != nil {
		return err
	}
	defer deleteInstance(ti, obj, &err)

	for name, v := range map[string]float64{"X": 1, "Y": 2, "Z": 2} {
		if err := refl.Set(ti.Fields, name, obj, v); err != nil {
			return err
		}
	}
	base, err := ti.UpCast(obj, bind.TypeIDOf[named]())
	if err != nil {
		return err
	}
	baseInfo, _ := reg.Lookup(base.ID())
	if err := refl.Set(baseInfo.Fields, "Name", base, "v"); err != nil {
		return err
	}

	norm, err := refl.Invoke[float64](ti.Fields, "Norm", obj)
	if err != nil {
		return err
	}
	fmt.Printf("Norm() = %g\n", norm)

	if _, err := refl.Invoke[refl.Void](ti.Fields, "Scale", obj, 2.0); err != nil {
		return err
	}
	sum, err := refl.Invoke[vec3](ti.Fields, ident.Meta.Add, obj, vec3{X: 1, Y: 1, Z: 1})
	if err != nil {
		return err
	}
	fmt.Printf("%s(v, {1 1 1}) = {%g %g %g}\n", ident.Meta.Add, sum.X, sum.Y, sum.Z)

	fmt.Println()
	fmt.Print(refl.Inspect(ti, obj))

	s := snapshot.FromRegistry(reg, "demo")
	fmt.Printf("\nregistry holds %d types (snapshot %s)\n", len(s.Types), s.ID)
	return nil
}

// deleteInstance deletes obj and joins any failure into *err.
func deleteInstance(ti *refl.TypeInfo, obj refl.Object, err *error) {
	if derr := ti.Delete(obj); derr != nil {
		*err = errors.Join(*err, fmt.Errorf("delete %s instance: %w", ti.Name, derr))
	}
}
