package record

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/leaprecord/pkg/core"
)

// StartInsertingMode routes Get and Set to the insert staging row.
func (r *Record) StartInsertingMode() *Record {
	r.inserting = true
	return r
}

// StopInsertingMode routes Get and Set back to the current row.
func (r *Record) StopInsertingMode() *Record {
	r.inserting = false
	return r
}

// InsertingMode reports whether insert mode is on.
func (r *Record) InsertingMode() bool { return r.inserting }

// Staged returns a copy of the insert staging row.
func (r *Record) Staged() core.Row { return r.staging.Clone() }

// Get reads a field. In insert mode name must be in the insert whitelist and
// the value comes from the staging row; a field not set yet reads as nil.
// Otherwise the value comes from the current row.
func (r *Record) Get(name string) (any, error) {
	if r.inserting {
		if err := r.checkInsertColumn(name); err != nil {
			return nil, err
		}
		v, _ := r.staging.Get(name)
		return v, nil
	}

	if r.IsEmpty() {
		return nil, ErrNoCurrentRow
	}
	key, err := r.rowKey(name)
	if err != nil {
		return nil, err
	}
	v, _ := r.rows[r.currentIndex].Get(key)
	return v, nil
}

// Set writes a field. In insert mode name must be in the insert whitelist
// and the staging row is written; on rejection the staging row is unchanged.
// Otherwise the current row is written; the update whitelist is applied
// only by CommitUpdate.
func (r *Record) Set(name string, v any) error {
	if r.inserting {
		if err := r.checkInsertColumn(name); err != nil {
			return err
		}
		r.staging.Set(name, v)
		return nil
	}

	if r.IsEmpty() {
		return ErrNoCurrentRow
	}
	key, err := r.rowKey(name)
	if err != nil {
		return err
	}
	r.rows[r.currentIndex].Set(key, v)
	return nil
}

// rowKey resolves a logical column or an output alias to the key used in
// fetched rows.
func (r *Record) rowKey(name string) (string, error) {
	if len(r.columns) == 0 {
		return name, nil
	}
	logical := r.logicalName(name)
	idx := slices.IndexFunc(r.columns, func(c Column) bool { return c.Name == logical })
	if idx < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	if r.fetchShape == core.FetchNum {
		return numKey(idx), nil
	}
	return r.outputName(logical), nil
}

func (r *Record) checkInsertColumn(name string) error {
	if !slices.Contains(r.allowInsert, name) {
		return &UnauthorizedColumnError{Column: name, Mode: ModeInsert}
	}
	return nil
}
