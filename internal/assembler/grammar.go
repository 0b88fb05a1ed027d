package assembler

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	asmLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "comment", Pattern: `;[^\n]*`},
		{Name: "EOL", Pattern: `\r?\n`},
		{Name: "whitespace", Pattern: `[ \t]+`},
		{Name: "Directive", Pattern: `\.[a-zA-Z]+`},
		{Name: "Hex", Pattern: `\$[0-9a-fA-F]+|0[xX][0-9a-fA-F]+`},
		{Name: "Int", Pattern: `\d+`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Punct", Pattern: `[,:\[\]]`},
	})

	parser = participle.MustBuild[source](
		participle.Lexer(asmLexer),
		participle.UseLookahead(2),
	)
)

type source struct {
	Statements []*statement `@@*`
}

type statement struct {
	Pos lexer.Position

	Label       *string      `  @Ident ":"`
	Directive   *directive   `| @@`
	Instruction *instruction `| @@`
	EOL         bool         `| @EOL`
}

type directive struct {
	Pos lexer.Position

	Name string     `@Directive`
	Args []*operand `( @@ ( "," @@ )* )?`
}

type instruction struct {
	Pos lexer.Position

	Mnemonic string     `@Ident`
	Operands []*operand `( @@ ( "," @@ )* )?`
}

type operand struct {
	Pos lexer.Position

	Indirect *string `  "[" @Ident "]"`
	Number   *string `| @(Hex | Int)`
	Name     *string `| @Ident`
}
