package svfg

// InstrKind classifies an IR instruction for the purposes the detector
// cares about: is it a pointer read, a pointer write, or a call.
type InstrKind string

const (
	InstrLoad  InstrKind = "load"
	InstrStore InstrKind = "store"
	InstrCall  InstrKind = "call"
	InstrOther InstrKind = "other"
)

// Instruction is the anchor for a Statement node: the underlying IR value
// the detector reports locations, snippets and def-use chains against.
type Instruction struct {
	ID       string
	Kind     InstrKind
	Function string
	Block    string
	Index    int // position within Block, in program order
	Text     string
	File     string
	Line     int

	// PointerOperand is the pointer read (Load) or written through (Store).
	PointerOperand string

	// CallTarget/CallArgs are set when Kind == InstrCall.
	CallTarget string
	CallArgs   []string

	// Users holds the def-use edges out of this instruction: every
	// instruction that consumes the value this one produces. The candidate
	// filter (C6) walks this to find the uses of a freed pointer.
	Users []*Instruction
}

// Before reports whether i precedes or is at the same position as other in
// program order within the same basic block (it is reflexive). Both
// instructions must belong to the same block.
func (i *Instruction) Before(other *Instruction) bool {
	return i.Index <= other.Index
}
