package ast

// Kind discriminates the closed set of node types.
// Evaluation and formatting switch over it (or over the concrete types) exhaustively.
type Kind int

const (
	KindProgram Kind = iota

	// statements
	KindVarDecl
	KindConstDecl
	KindFuncDecl
	KindObjectDecl
	KindBlock
	KindExpressionStmt
	KindReturn
	KindBreak
	KindContinue
	KindIf
	KindLoop

	// expressions
	KindIdentifier
	KindIntegerLiteral
	KindFloatLiteral
	KindCharLiteral
	KindStringLiteral
	KindBooleanLiteral
	KindNilLiteral
	KindArrayLiteral
	KindFuncLiteral
	KindObjectInit
	KindInlineObjectInit
	KindGroup
	KindUnary
	KindBinary
	KindLogical
	KindAssign
	KindUpdate
	KindConditional
	KindCast
	KindCall
	KindArrayMember
	KindObjectMember
)

var kindNames = [...]string{
	KindProgram:          "Program",
	KindVarDecl:          "VarDecl",
	KindConstDecl:        "ConstDecl",
	KindFuncDecl:         "FuncDecl",
	KindObjectDecl:       "ObjectDecl",
	KindBlock:            "Block",
	KindExpressionStmt:   "ExpressionStatement",
	KindReturn:           "Return",
	KindBreak:            "Break",
	KindContinue:         "Continue",
	KindIf:               "If",
	KindLoop:             "Loop",
	KindIdentifier:       "Identifier",
	KindIntegerLiteral:   "IntegerLiteral",
	KindFloatLiteral:     "FloatLiteral",
	KindCharLiteral:      "CharLiteral",
	KindStringLiteral:    "StringLiteral",
	KindBooleanLiteral:   "BooleanLiteral",
	KindNilLiteral:       "NilLiteral",
	KindArrayLiteral:     "ArrayLiteral",
	KindFuncLiteral:      "FuncLiteral",
	KindObjectInit:       "ObjectInit",
	KindInlineObjectInit: "InlineObjectInit",
	KindGroup:            "Group",
	KindUnary:            "Unary",
	KindBinary:           "Binary",
	KindLogical:          "Logical",
	KindAssign:           "Assign",
	KindUpdate:           "Update",
	KindConditional:      "Conditional",
	KindCast:             "Cast",
	KindCall:             "Call",
	KindArrayMember:      "ArrayMember",
	KindObjectMember:     "ObjectMember",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// LoopKind selects the shape of a loop statement.
type LoopKind int

const (
	LoopUndef LoopKind = iota // loop { }
	LoopWhile                 // loop (cond) { }
	LoopFor                   // loop (init; cond; post) { }
)

func (k LoopKind) String() string {
	switch k {
	case LoopWhile:
		return "while"
	case LoopFor:
		return "for"
	}
	return "undef"
}
