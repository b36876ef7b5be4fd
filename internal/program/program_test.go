package program

import "testing"

func TestLookupOpcodeCaseInsensitive(t *testing.T) {
	for _, name := range []string{"move", "MOVE", "Move"} {
		op, ok := LookupOpcode(name)
		if !ok || op != MOVE {
			t.Errorf("LookupOpcode(%q) = (%v, %v), want (MOVE, true)", name, op, ok)
		}
	}
	if _, ok := LookupOpcode("NOSUCHOP"); ok {
		t.Error("expected ok=false for unknown opcode")
	}
}

func TestArgCountStackFormsTakeNoXMLArgs(t *testing.T) {
	for _, op := range []Opcode{ADDS, SUBS, MULS, DIVS, IDIVS, LTS, GTS, EQS, ANDS, ORS, STRI2INTS,
		NOTS, INT2CHARS, INT2FLOATS, FLOAT2INTS} {
		if got := op.ArgCount(); got != 0 {
			t.Errorf("%s.ArgCount() = %d, want 0", op, got)
		}
	}
}

func TestArgCountRegisterForms(t *testing.T) {
	cases := map[Opcode]int{
		CREATEFRAME: 0, PUSHFRAME: 0, POPFRAME: 0, RETURN: 0, BREAK: 0, CLEARS: 0,
		DEFVAR: 1, LABEL: 1, JUMP: 1, WRITE: 1, TYPE: 1, JUMPIFEQS: 1, JUMPIFNEQS: 1,
		MOVE: 2, READ: 2,
		ADD: 3, JUMPIFEQ: 3, SETCHAR: 3,
	}
	for op, want := range cases {
		if got := op.ArgCount(); got != want {
			t.Errorf("%s.ArgCount() = %d, want %d", op, got, want)
		}
	}
}

func TestBuildSortsByOrderAndIndexesLabels(t *testing.T) {
	instrs := []Instruction{
		{Order: 3, Op: WRITE},
		{Order: 1, Op: LABEL, Args: []Arg{{Type: ArgLabel, Label: "start"}}},
		{Order: 2, Op: JUMP, Args: []Arg{{Type: ArgLabel, Label: "start"}}},
	}
	p, err := Build(instrs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(p.Instructions) != 3 || p.Instructions[0].Order != 1 {
		t.Fatalf("instructions not sorted by order: %+v", p.Instructions)
	}
	if idx, ok := p.Labels["start"]; !ok || idx != 0 {
		t.Errorf("labels[start] = (%d, %v), want (0, true)", idx, ok)
	}
}

func TestBuildRejectsDuplicateOrder(t *testing.T) {
	instrs := []Instruction{{Order: 1, Op: WRITE}, {Order: 1, Op: WRITE}}
	if _, err := Build(instrs); err == nil {
		t.Error("expected error for duplicate order")
	}
}

func TestBuildRejectsZeroOrder(t *testing.T) {
	instrs := []Instruction{{Order: 0, Op: WRITE}}
	if _, err := Build(instrs); err == nil {
		t.Error("expected error for zero order")
	}
}

func TestBuildRejectsDuplicateLabel(t *testing.T) {
	instrs := []Instruction{
		{Order: 1, Op: LABEL, Args: []Arg{{Type: ArgLabel, Label: "l"}}},
		{Order: 2, Op: LABEL, Args: []Arg{{Type: ArgLabel, Label: "l"}}},
	}
	if _, err := Build(instrs); err == nil {
		t.Error("expected error for duplicate label")
	}
}
