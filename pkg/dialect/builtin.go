package dialect

// commonReserved is a conservative set of SQL keywords that must never appear unquoted.
var commonReserved = []string{
	// DML/DDL
	"select", "insert", "update", "delete", "into", "values",
	"create", "alter", "drop", "table", "index", "view",
	// Clauses
	"from", "where", "group", "order", "by", "having",
	"limit", "offset", "join", "inner", "left", "right", "full", "outer",
	// Operators/Predicates
	"and", "or", "not", "in", "is", "like", "between", "exists",
	// Literals
	"null", "true", "false",
	// Misc
	"as", "on", "user", "default", "primary", "key", "references",
}

var builtinPostgres = NewDialect("postgres").
	Identifiers(`"`, `"`, `""`, NormLowercase).
	DefaultSchema("public").
	PlaceholderStyle(PlaceholderDollar).
	WithReservedWords(commonReserved...).
	WithReservedWords("returning", "analyse", "analyze", "grant", "only").
	Build()

var builtinSQLite = NewDialect("sqlite").
	Identifiers(`"`, `"`, `""`, NormCaseInsensitive).
	DefaultSchema("main").
	PlaceholderStyle(PlaceholderQuestion).
	OffsetNeedsLimit(true).
	WithReservedWords(commonReserved...).
	WithReservedWords("pragma", "vacuum", "autoincrement").
	Build()

var builtinDuckDB = NewDialect("duckdb").
	Identifiers(`"`, `"`, `""`, NormCaseInsensitive).
	DefaultSchema("main").
	PlaceholderStyle(PlaceholderQuestion).
	WithReservedWords(commonReserved...).
	WithReservedWords("qualify", "pivot", "unpivot").
	Build()

var builtinMySQL = NewDialect("mysql").
	Identifiers("`", "`", "``", NormCaseInsensitive).
	PlaceholderStyle(PlaceholderQuestion).
	WriteLimit(true).
	WithReservedWords(commonReserved...).
	Build()

func init() {
	Register(builtinPostgres)
	Register(builtinSQLite)
	Register(builtinDuckDB)
	Register(builtinMySQL)
}
