// Package dialect provides SQL dialect configuration for statement rendering.
//
// A Dialect decides how identifiers are quoted, how bound parameters are
// written, and which optional clauses a database accepts. Concrete dialects
// are registered by name; adapters look them up through Get.
package dialect

import (
	"strconv"
	"strings"
)

// PlaceholderStyle defines how query parameters are formatted.
type PlaceholderStyle int

const (
	// PlaceholderQuestion uses ? for all parameters (DuckDB, MySQL, SQLite).
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar uses $1, $2, etc. for parameters (PostgreSQL).
	PlaceholderDollar
)

// NormalizationStrategy defines how unquoted identifiers are normalized.
type NormalizationStrategy int

const (
	// NormLowercase folds unquoted identifiers to lower case (PostgreSQL).
	NormLowercase NormalizationStrategy = iota
	// NormUppercase folds unquoted identifiers to upper case (Snowflake).
	NormUppercase
	// NormCaseInsensitive compares identifiers case-insensitively (DuckDB, SQLite).
	NormCaseInsensitive
	// NormCaseSensitive keeps identifiers as written.
	NormCaseSensitive
)

// IdentifierConfig defines how identifiers are quoted and normalized.
type IdentifierConfig struct {
	Quote         string                // Quote character: ", `, [
	QuoteEnd      string                // End quote character (usually same as Quote, ] for [)
	Escape        string                // Escape sequence: "", ``, ]]
	Normalization NormalizationStrategy // How to normalize unquoted identifiers
}

// Dialect represents a SQL dialect configuration.
type Dialect struct {
	Name        string
	Identifiers IdentifierConfig

	// Database-specific settings
	DefaultSchema string           // Default schema name ("main" for DuckDB, "public" for Postgres)
	Placeholder   PlaceholderStyle // How to format query parameters

	// WriteLimit reports whether UPDATE and DELETE accept a LIMIT clause.
	WriteLimit bool
	// OffsetNeedsLimit reports whether OFFSET is only valid after a LIMIT (SQLite).
	OffsetNeedsLimit bool

	reservedWords map[string]struct{}
}

// NormalizeName normalizes an identifier according to dialect rules.
func (d *Dialect) NormalizeName(name string) string {
	switch d.Identifiers.Normalization {
	case NormUppercase:
		return strings.ToUpper(name)
	case NormLowercase, NormCaseInsensitive:
		return strings.ToLower(name)
	default: // NormCaseSensitive
		return name
	}
}

// FormatPlaceholder returns a placeholder for the given parameter index (1-based).
func (d *Dialect) FormatPlaceholder(index int) string {
	switch d.Placeholder {
	case PlaceholderDollar:
		return "$" + strconv.Itoa(index)
	default: // PlaceholderQuestion
		return "?"
	}
}

// IsReservedWord returns true if the word needs quoting when used as an identifier.
func (d *Dialect) IsReservedWord(word string) bool {
	_, ok := d.reservedWords[strings.ToLower(word)]
	return ok
}

// QuoteIdentifier quotes an identifier using the dialect's quote characters.
func (d *Dialect) QuoteIdentifier(name string) string {
	// Escape any existing quote end characters in the name (e.g., ] -> ]])
	escaped := strings.ReplaceAll(name, d.Identifiers.QuoteEnd, d.Identifiers.Escape)
	return d.Identifiers.Quote + escaped + d.Identifiers.QuoteEnd
}

// QuoteIdentifierIfNeeded returns the identifier unquoted when it is obviously
// safe: lower-case letters, digits and underscores, not starting with a digit,
// and not a reserved word. Otherwise it is quoted.
func (d *Dialect) QuoteIdentifierIfNeeded(name string) string {
	if isSafeUnquoted(name) && !d.IsReservedWord(name) {
		return name
	}
	return d.QuoteIdentifier(name)
}

// QuoteQualified splits on '.' and quotes each identifier part independently.
// A trailing "*" part is left as is.
func (d *Dialect) QuoteQualified(qualified string) string {
	parts := strings.Split(qualified, ".")
	for i, p := range parts {
		if p == "*" {
			continue
		}
		parts[i] = d.QuoteIdentifierIfNeeded(p)
	}
	return strings.Join(parts, ".")
}

func isSafeUnquoted(ident string) bool {
	if ident == "" {
		return false
	}
	c0 := ident[0]
	if (c0 < 'a' || c0 > 'z') && c0 != '_' {
		return false
	}
	for i := 1; i < len(ident); i++ {
		c := ident[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '_' {
			return false
		}
	}
	return true
}

// Builder provides a fluent API for constructing dialects.
type Builder struct {
	dialect *Dialect
}

// NewDialect creates a new dialect builder with the given name.
func NewDialect(name string) *Builder {
	return &Builder{
		dialect: &Dialect{
			Name: name,
			Identifiers: IdentifierConfig{
				Quote:         `"`,
				QuoteEnd:      `"`,
				Escape:        `""`,
				Normalization: NormLowercase,
			},
			reservedWords: make(map[string]struct{}),
		},
	}
}

// Identifiers configures identifier quoting and normalization.
func (b *Builder) Identifiers(quote, quoteEnd, escape string, norm NormalizationStrategy) *Builder {
	b.dialect.Identifiers = IdentifierConfig{
		Quote:         quote,
		QuoteEnd:      quoteEnd,
		Escape:        escape,
		Normalization: norm,
	}
	return b
}

// DefaultSchema sets the default schema name.
func (b *Builder) DefaultSchema(schema string) *Builder {
	b.dialect.DefaultSchema = schema
	return b
}

// PlaceholderStyle sets how query parameters are formatted.
func (b *Builder) PlaceholderStyle(style PlaceholderStyle) *Builder {
	b.dialect.Placeholder = style
	return b
}

// WriteLimit marks UPDATE/DELETE ... LIMIT as supported.
func (b *Builder) WriteLimit(supported bool) *Builder {
	b.dialect.WriteLimit = supported
	return b
}

// OffsetNeedsLimit marks OFFSET as requiring a preceding LIMIT.
func (b *Builder) OffsetNeedsLimit(required bool) *Builder {
	b.dialect.OffsetNeedsLimit = required
	return b
}

// WithReservedWords registers words that need quoting when used as identifiers.
func (b *Builder) WithReservedWords(words ...string) *Builder {
	for _, w := range words {
		b.dialect.reservedWords[strings.ToLower(w)] = struct{}{}
	}
	return b
}

// Build returns the constructed dialect.
func (b *Builder) Build() *Dialect {
	return b.dialect
}
