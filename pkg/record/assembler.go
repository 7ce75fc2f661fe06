package record

import (
	"strings"

	"github.com/leapstack-labs/leaprecord/pkg/query"
)

// idParam is the parameter FindByID binds the primary key value to.
const idParam = "pk"

// prepareQuerySelect returns the cached SELECT, building it on first use.
// Limit and offset are applied on every call so paging stays current.
func (r *Record) prepareQuerySelect() *query.Select {
	if !r.selectBuilt {
		sel := query.NewSelect()
		sel.Limit(r.rowsLimit).Offset(r.offset)
		sel.From(r.table, r.alias)

		if refs, aliases := r.selectColumns(); len(refs) > 0 {
			sel.Columns(refs, aliases)
		}
		for _, rel := range r.relationships {
			sel.Join(r.join(rel))
		}
		sel.Where(r.baseConditions())

		r.selectStmt = sel
		r.selectBuilt = true
	}
	return r.selectStmt.Limit(r.rowsLimit).Offset(r.offset)
}

// findByIDSelect extends a copy of the cached SELECT with a primary key match.
func (r *Record) findByIDSelect() *query.Select {
	return r.prepareQuerySelect().
		Clone().
		And(query.Eq(r.ref(r.primaryKey), idParam)).
		Limit(1).
		Offset(0)
}

// selectColumns returns the physical references in column order and the
// output name of every reference whose bare column differs from it.
func (r *Record) selectColumns() ([]string, map[string]string) {
	refs := make([]string, 0, len(r.columns))
	aliases := make(map[string]string)
	for _, c := range r.columns {
		ref := r.ref(c.Name)
		refs = append(refs, ref)
		out := r.outputName(c.Name)
		if bare(ref) != out {
			aliases[ref] = out
		}
	}
	return refs, aliases
}

func (r *Record) join(rel Relationship) query.Join {
	if rel.Target == nil {
		return query.Join{Kind: rel.Kind, Table: rel.Table, Alias: rel.Alias, On: rel.On}
	}
	t := rel.Target
	return query.Join{
		Kind:  rel.Kind,
		Table: t.table,
		Alias: t.alias,
		On:    query.EqColumn(r.ref(rel.Column), t.ref(t.primaryKey)),
	}
}

// baseConditions is the hook narrowing visible rows. Without one every row matches.
func (r *Record) baseConditions() query.Condition {
	if r.baseCondition != nil {
		if c := r.baseCondition(); c != nil {
			return c
		}
	}
	return query.True()
}

func bare(ref string) string {
	if i := strings.LastIndex(ref, "."); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
