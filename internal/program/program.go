package program

import (
	"sort"

	"ippvm/internal/errors"
	"ippvm/internal/frame"
	"ippvm/internal/value"
)

// ArgType is the XML argument-type vocabulary: var, label, type, or one of
// the literal value tags.
type ArgType uint8

const (
	ArgVar ArgType = iota
	ArgLabel
	ArgType_ // a first-class type token (the payload of READ's 2nd arg)
	ArgInt
	ArgFloat
	ArgBool
	ArgString
	ArgNil
)

// Arg is one instruction operand as produced by ingestion. Exactly one of
// the payload fields is meaningful, selected by Type.
type Arg struct {
	Type ArgType

	// ArgVar
	Frame frame.Kind
	Name  string

	// ArgLabel
	Label string

	// ArgType_ — one of the primitive value kinds as a first-class token
	TypeTag value.Kind

	// literal payloads (ArgInt/ArgFloat/ArgBool/ArgString/ArgNil)
	Lit value.Value
}

// Instruction is one program step: a positive, program-unique order key, an
// opcode, and 0-3 arguments.
type Instruction struct {
	Order int
	Op    Opcode
	Args  []Arg
}

// Program is the ordered, label-indexed instruction stream the interpreter
// loop walks.
type Program struct {
	Instructions []Instruction
	Labels       map[string]int
}

// Build sorts raw instructions by Order, rejects duplicate or zero orders,
// and resolves the label index. Grounded on interpret.py's
// check_duplicit_instruction_order_value + label-extraction pass.
func Build(instrs []Instruction) (*Program, error) {
	seen := make(map[int]bool, len(instrs))
	for _, in := range instrs {
		if in.Order <= 0 {
			return nil, errors.New(errors.XMLBadStructure, "instruction order must be a positive integer, got %d", in.Order)
		}
		if seen[in.Order] {
			return nil, errors.New(errors.XMLBadStructure, "duplicate instruction order %d", in.Order)
		}
		seen[in.Order] = true
	}

	sorted := make([]Instruction, len(instrs))
	copy(sorted, instrs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	labels := make(map[string]int)
	for idx, in := range sorted {
		if in.Op == LABEL {
			name := in.Args[0].Label
			if _, dup := labels[name]; dup {
				return nil, errors.New(errors.SemanticError, "label %q is already defined", name)
			}
			labels[name] = idx
		}
	}

	return &Program{Instructions: sorted, Labels: labels}, nil
}
