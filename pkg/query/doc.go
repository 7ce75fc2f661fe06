// Package query builds SELECT, INSERT, UPDATE and DELETE statements.
//
// Builders are mutable and chainable. Values are never inlined: every bound
// value is referenced by a parameter name, and Render turns the statement into
// dialect-specific SQL together with the parameter names in placeholder order.
// Connection adapters resolve those names against a map at execution time.
//
//	sel := query.NewSelect().
//		From("users", "u").
//		Columns([]string{"u.id", "u.name"}, nil).
//		Where(query.Eq("u.id", "id")).
//		Limit(1)
//	sqlStr, params, err := sel.Render(dialect.MustGet("postgres"))
//	// SELECT u.id, u.name FROM users AS u WHERE u.id = $1 LIMIT 1
//	// params: [id]
package query
