package record

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/leapstack-labs/leaprecord/pkg/core"
	"github.com/leapstack-labs/leaprecord/pkg/query"
)

// Select runs the SELECT built from the record metadata and loads the result.
// A failure is logged, leaves the buffer empty and is reported by Err.
func (r *Record) Select(ctx context.Context) *Record {
	return r.load(ctx, r.prepareQuerySelect(), nil)
}

// FindByID loads the row whose primary key equals id.
func (r *Record) FindByID(ctx context.Context, id any) *Record {
	return r.load(ctx, r.findByIDSelect(), map[string]any{idParam: id})
}

func (r *Record) load(ctx context.Context, sel *query.Select, params map[string]any) *Record {
	rows, err := r.fetch(ctx, sel, params)
	if err == nil {
		err = r.validateRows(rows)
	}
	if err != nil {
		r.logger.Error("select failed",
			slog.String("table", r.table),
			slog.Any("error", err))
		r.clear()
		r.err = err
		return r
	}
	r.err = nil
	return r.LoadData(rows)
}

func (r *Record) fetch(ctx context.Context, sel *query.Select, params map[string]any) ([]core.Row, error) {
	p, err := r.conn.Prepare(ctx, sel)
	if err != nil {
		return nil, err
	}
	defer func() { _ = p.Close() }()

	if err := p.Execute(ctx, params); err != nil {
		return nil, err
	}
	return p.FetchAll(r.fetchShape)
}

// validateRows checks fetched rows against the configured column list.
func (r *Record) validateRows(rows []core.Row) error {
	if len(r.columns) == 0 {
		return nil
	}
	for i, row := range rows {
		if r.fetchShape == core.FetchNum {
			if row.Len() != len(r.columns) {
				return fmt.Errorf("row %d has %d columns, want %d", i, row.Len(), len(r.columns))
			}
			continue
		}
		for _, c := range r.columns {
			if !row.Has(r.outputName(c.Name)) {
				return fmt.Errorf("row %d is missing column %q", i, r.outputName(c.Name))
			}
		}
	}
	return nil
}

// LoadData replaces the row buffer and moves the cursor to the first row.
func (r *Record) LoadData(rows []core.Row) *Record {
	r.rows = rows
	r.currentIndex = 0
	r.selectedColumns = nil
	if len(rows) > 0 {
		r.selectedColumns = rows[0].Keys()
	}
	return r
}

func (r *Record) clear() {
	r.rows = nil
	r.selectedColumns = nil
	r.currentIndex = 0
}

// Next advances the cursor. Past the last row it rewinds to the first row
// and reports false.
func (r *Record) Next() (*Record, bool) {
	if len(r.rows) == 0 {
		return nil, false
	}
	r.currentIndex++
	if r.currentIndex >= len(r.rows) {
		r.currentIndex = 0
		return nil, false
	}
	return r, true
}

// Prev moves the cursor back. Before the first row it stays at the first
// row and reports false.
func (r *Record) Prev() (*Record, bool) {
	if r.currentIndex <= 0 {
		r.currentIndex = 0
		return nil, false
	}
	r.currentIndex--
	return r, true
}

// NextPage selects the next page of RowsLimit rows. When that page is empty
// page and offset return to 0 and false is reported. Without a rows limit
// every row is already loaded, so there is no next page.
func (r *Record) NextPage(ctx context.Context) (*Record, bool) {
	if r.rowsLimit == 0 {
		r.page, r.offset = 0, 0
		return nil, false
	}
	r.page++
	r.offset = r.rowsLimit * r.page
	r.Select(ctx)
	if r.IsEmpty() {
		r.page, r.offset = 0, 0
		return nil, false
	}
	return r, true
}

// CurrentData returns the row under the cursor. The zero Row is returned
// when the buffer is empty.
func (r *Record) CurrentData() core.Row {
	if len(r.rows) == 0 {
		return core.Row{}
	}
	return r.rows[r.currentIndex]
}

// Rows returns the loaded rows.
func (r *Record) Rows() []core.Row { return r.rows }

// IsEmpty reports whether the buffer holds no rows.
func (r *Record) IsEmpty() bool { return len(r.rows) == 0 }

// NumSelectedRows returns the number of loaded rows.
func (r *Record) NumSelectedRows() int { return len(r.rows) }

// CurrentIndex returns the cursor position.
func (r *Record) CurrentIndex() int { return r.currentIndex }

// SelectedColumns returns the keys of the first loaded row.
func (r *Record) SelectedColumns() []string { return append([]string(nil), r.selectedColumns...) }

// Page returns the current page number.
func (r *Record) Page() int { return r.page }

// Offset returns the current offset.
func (r *Record) Offset() int { return r.offset }

// RowsLimit returns the page size.
func (r *Record) RowsLimit() int { return r.rowsLimit }

// numKey is the key of column i in FetchNum rows.
func numKey(i int) string { return strconv.Itoa(i) }
