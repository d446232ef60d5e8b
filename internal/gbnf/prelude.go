package gbnf

// Names of the prelude rules. Generated rules always carry a structural
// prefix, so they cannot collide with these.
const (
	RuleWS     = "ws"
	RuleString = "string"
	RuleInt    = "int"
	RuleNumber = "number"
)

// Prelude is emitted verbatim after the root line of every grammar.
var Prelude = []Rule{
	{Name: RuleWS, Body: `[ \t\n\r]*`},
	{Name: RuleString, Body: `"\"" ( [^"\\\x7F\x00-\x1F] | "\\" ( ["\\/bfnrt] | "u" [0-9a-fA-F] [0-9a-fA-F] [0-9a-fA-F] [0-9a-fA-F] ) )* "\""`},
	{Name: RuleInt, Body: `"-"? ( "0" | [1-9] [0-9]* )`},
	{Name: RuleNumber, Body: `"-"? ( "0" | [1-9] [0-9]* ) ( "." [0-9]+ )? ( [eE] [-+]? [0-9]+ )?`},
}
