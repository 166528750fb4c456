package registry

import (
	"testing"

	"shaderscope/internal/shader"
)

func TestRegisterAndCandidates(t *testing.T) {
	mi := NewMemberIndex()

	mi.RegisterMember("Compute", "Mid", shader.MemberDeclaration{Name: "Compute", Kind: shader.KindMethod, Owner: "Mid"})
	mi.RegisterMember("Compute", "Leaf", shader.MemberDeclaration{Name: "Compute", Kind: shader.KindMethod, Owner: "Leaf", IsOverride: true})

	if !mi.Has("Compute") {
		t.Error("Has(Compute) = false")
	}
	if mi.Has("Missing") {
		t.Error("Has(Missing) = true")
	}

	cands := mi.Candidates("Compute")
	if len(cands) != 2 {
		t.Fatalf("Candidates(Compute) has %d owners, want 2", len(cands))
	}
	if len(cands["Mid"]) != 1 || cands["Mid"][0].Owner != "Mid" {
		t.Errorf("Mid candidate list wrong: %+v", cands["Mid"])
	}
}

func TestOverloadSetsAccumulate(t *testing.T) {
	mi := NewMemberIndex()
	mi.RegisterMember("Compute", "Mid", shader.MemberDeclaration{Name: "Compute", TypeName: "void", Kind: shader.KindMethod, Owner: "Mid"})
	mi.RegisterMember("Compute", "Mid", shader.MemberDeclaration{Name: "Compute", TypeName: "float4", Kind: shader.KindMethod, Owner: "Mid"})

	decls := mi.DeclaredBy("Compute", "Mid")
	if len(decls) != 2 {
		t.Fatalf("overload set size = %d, want 2", len(decls))
	}
	if decls[0].TypeName != "void" || decls[1].TypeName != "float4" {
		t.Error("overload set should preserve declaration order")
	}
}

func TestOwnersPreserveRegistrationOrder(t *testing.T) {
	mi := NewMemberIndex()
	for _, owner := range []string{"C", "A", "B", "A"} {
		mi.RegisterMember("Color", owner, shader.MemberDeclaration{Name: "Color", Kind: shader.KindVariable, Owner: owner})
	}
	owners := mi.Owners("Color")
	want := []string{"C", "A", "B"}
	if len(owners) != len(want) {
		t.Fatalf("Owners = %v, want %v", owners, want)
	}
	for i := range want {
		if owners[i] != want[i] {
			t.Errorf("Owners[%d] = %s, want %s", i, owners[i], want[i])
		}
	}
}

func TestDeclaredByUnknown(t *testing.T) {
	mi := NewMemberIndex()
	if got := mi.DeclaredBy("Nope", "A"); got != nil {
		t.Errorf("DeclaredBy for unknown member = %v, want nil", got)
	}
}
