package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var sqlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `\b(?i:CREATE|TABLES|TABLE|PRIMARY|KEY|UNIQUE|NOT|NULL|INSERT|INTO|VALUES|SELECT|FROM|WHERE|INNER|JOIN|ON|UPDATE|SET|DELETE|SHOW|DESCRIBE|TRUE|FALSE)\b`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Number", Pattern: `-?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`},
	{Name: "String", Pattern: `'(?:[^']|'')*'`},
	{Name: "Operator", Pattern: `!=|<>|==|<=|>=|=|<|>`},
	{Name: "Punct", Pattern: `[(),;*.]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var (
	scriptParser = participle.MustBuild[script](
		participle.Lexer(sqlLexer),
		participle.Elide("Whitespace"),
		participle.CaseInsensitive("Keyword"),
	)
	literalParser = participle.MustBuild[literal](
		participle.Lexer(sqlLexer),
		participle.Elide("Whitespace"),
		participle.CaseInsensitive("Keyword"),
	)
)

type script struct {
	Stmt *statement `parser:"@@ ';'?"`
}

type statement struct {
	Create   *createStmt   `parser:"  @@"`
	Insert   *insertStmt   `parser:"| @@"`
	Select   *selectStmt   `parser:"| @@"`
	Update   *updateStmt   `parser:"| @@"`
	Delete   *deleteStmt   `parser:"| @@"`
	Show     *showStmt     `parser:"| @@"`
	Describe *describeStmt `parser:"| @@"`
}

type createStmt struct {
	Table   string       `parser:"'CREATE' 'TABLE' @Ident"`
	Columns []*columnDef `parser:"'(' @@ (',' @@)* ')'"`
}

type columnDef struct {
	Name        string        `parser:"@Ident"`
	Type        string        `parser:"@Ident"`
	Constraints []*constraint `parser:"@@*"`
}

type constraint struct {
	PrimaryKey bool `parser:"  @('PRIMARY' 'KEY')"`
	Unique     bool `parser:"| @'UNIQUE'"`
	NotNull    bool `parser:"| @('NOT' 'NULL')"`
}

type insertStmt struct {
	Table   string     `parser:"'INSERT' 'INTO' @Ident"`
	Columns []string   `parser:"('(' @Ident (',' @Ident)* ')')?"`
	Values  []*literal `parser:"'VALUES' '(' @@ (',' @@)* ')'"`
}

type selectStmt struct {
	Projection *projection  `parser:"'SELECT' @@"`
	Table      string       `parser:"'FROM' @Ident"`
	Join       *joinClause  `parser:"@@?"`
	Where      *whereClause `parser:"@@?"`
}

type projection struct {
	Star    bool     `parser:"  @'*'"`
	Columns []string `parser:"| @Ident (',' @Ident)*"`
}

type joinClause struct {
	Inner       bool   `parser:"@'INNER'?"`
	Table       string `parser:"'JOIN' @Ident"`
	LeftTable   string `parser:"'ON' @Ident '.'"`
	LeftColumn  string `parser:"@Ident"`
	RightTable  string `parser:"'=' @Ident '.'"`
	RightColumn string `parser:"@Ident"`
}

type updateStmt struct {
	Table string        `parser:"'UPDATE' @Ident"`
	Set   []*assignment `parser:"'SET' @@ (',' @@)*"`
	Where *whereClause  `parser:"@@?"`
}

type assignment struct {
	Column string   `parser:"@Ident '='"`
	Value  *literal `parser:"@@"`
}

type deleteStmt struct {
	Table string       `parser:"'DELETE' 'FROM' @Ident"`
	Where *whereClause `parser:"@@?"`
}

type showStmt struct {
	Tables bool `parser:"'SHOW' @'TABLES'"`
}

type describeStmt struct {
	Table string `parser:"'DESCRIBE' @Ident"`
}

type whereClause struct {
	Column string   `parser:"'WHERE' @Ident"`
	Op     string   `parser:"@Operator"`
	Value  *literal `parser:"@@"`
}

type literal struct {
	Null   bool    `parser:"  @'NULL'"`
	True   bool    `parser:"| @'TRUE'"`
	False  bool    `parser:"| @'FALSE'"`
	Number *string `parser:"| @Number"`
	String *string `parser:"| @String"`
}
