package codegen

import (
	"fmt"
	"strings"

	"github.com/pyrs-lang/pyrs/internal/hir"
)

// derivesFor returns the auto-derive set implied by a class's flavour
// (spec.md §4.6: "Auto-derive the set implied by the class flavour
// (equality, ordering where total, clone, debug)").
func derivesFor(cls *hir.Class) []string {
	switch cls.Kind {
	case hir.ClassDataclass:
		return []string{"Debug", "Clone", "PartialEq"}
	case hir.ClassEnumLike:
		return []string{"Debug", "Clone", "Copy", "PartialEq", "Eq"}
	default:
		return []string{"Debug", "Clone"}
	}
}

// emitClass emits a class per its kind (spec.md §4.6): plain/dataclass
// become a record type plus an impl block, protocol becomes a trait
// declaration, enum-like becomes a Rust enum.
func (e *Emitter) emitClass(out *strings.Builder, cls *hir.Class) {
	switch cls.Kind {
	case hir.ClassProtocol:
		e.emitProtocol(out, cls)
	case hir.ClassEnumLike:
		e.emitEnumLike(out, cls)
	default:
		e.emitRecord(out, cls)
	}
}

func (e *Emitter) emitProtocol(out *strings.Builder, cls *hir.Class) {
	fmt.Fprintf(out, "pub trait %s {\n", cls.Name)
	for _, m := range cls.Methods {
		fmt.Fprintf(out, "    %s;\n", e.signature(m))
	}
	out.WriteString("}\n\n")
}

func (e *Emitter) emitEnumLike(out *strings.Builder, cls *hir.Class) {
	derives := derivesFor(cls)
	fmt.Fprintf(out, "#[derive(%s)]\n", strings.Join(derives, ", "))
	fmt.Fprintf(out, "pub enum %s {\n", cls.Name)
	for i, f := range cls.Fields {
		if i < len(cls.EnumValues) {
			fmt.Fprintf(out, "    %s = %s,\n", f.Name, e.emitExpr(cls.EnumValues[i]))
			continue
		}
		fmt.Fprintf(out, "    %s,\n", f.Name)
	}
	out.WriteString("}\n\n")
}

func (e *Emitter) emitRecord(out *strings.Builder, cls *hir.Class) {
	derives := derivesFor(cls)
	fmt.Fprintf(out, "#[derive(%s)]\n", strings.Join(derives, ", "))
	fmt.Fprintf(out, "pub struct %s {\n", cls.Name)
	for _, f := range cls.Fields {
		fmt.Fprintf(out, "    pub %s: %s,\n", f.Name, e.rustType(f.Type))
	}
	out.WriteString("}\n\n")

	if len(cls.Bases) > 0 {
		for _, base := range cls.Bases {
			fmt.Fprintf(out, "impl %s for %s {}\n\n", base, cls.Name)
		}
	}

	if len(cls.Methods) == 0 {
		return
	}
	fmt.Fprintf(out, "impl %s {\n", cls.Name)
	for _, m := range cls.Methods {
		e.emitFunction(out, m, 1)
	}
	out.WriteString("}\n\n")
}
