package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leaprecord/pkg/core"
)

// Rows renders rows under columns in the effective mode.
// Without columns, the keys of the first row are used.
func (r *Renderer) Rows(columns []string, rows []core.Row) error {
	if len(columns) == 0 && len(rows) > 0 {
		columns = rows[0].Keys()
	}

	switch r.EffectiveMode() {
	case ModeJSON:
		out := make([]map[string]any, len(rows))
		for i, row := range rows {
			out[i] = row.Map()
		}
		return r.JSON(out)
	case ModeYAML:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, row := range rows {
			n, err := rowNode(columns, row)
			if err != nil {
				return err
			}
			seq.Content = append(seq.Content, n)
		}
		return r.YAML(seq)
	}

	if len(rows) == 0 {
		r.Println("(0 rows)")
		return nil
	}

	t := r.newTable()
	header := make(table.Row, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	t.AppendHeader(header)
	for _, row := range rows {
		t.AppendRow(tableRow(columns, row))
	}
	r.render(t)
	r.Printf("(%d rows)\n", len(rows))
	return nil
}

// Fields renders a single row as column/value pairs.
func (r *Renderer) Fields(columns []string, row core.Row) error {
	if len(columns) == 0 {
		columns = row.Keys()
	}

	switch r.EffectiveMode() {
	case ModeJSON:
		return r.JSON(row.Map())
	case ModeYAML:
		n, err := rowNode(columns, row)
		if err != nil {
			return err
		}
		return r.YAML(n)
	}

	t := r.newTable()
	t.AppendHeader(table.Row{"column", "value"})
	for _, col := range columns {
		v, _ := row.Get(col)
		t.AppendRow(table.Row{col, core.FormatValue(v)})
	}
	r.render(t)
	return nil
}

// YAML writes v as YAML.
func (r *Renderer) YAML(v any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

func (r *Renderer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	return t
}

func (r *Renderer) render(t table.Writer) {
	if r.EffectiveMode() == ModeMarkdown {
		t.RenderMarkdown()
		r.Println()
		return
	}
	t.Render()
}

func tableRow(columns []string, row core.Row) table.Row {
	out := make(table.Row, len(columns))
	for i, col := range columns {
		v, _ := row.Get(col)
		out[i] = core.FormatValue(v)
	}
	return out
}

// rowNode encodes a row as a YAML mapping that keeps the column order.
func rowNode(columns []string, row core.Row) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, col := range columns {
		v, _ := row.Get(col)
		var val yaml.Node
		if err := val.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to encode column %s: %w", col, err)
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: col}, &val)
	}
	return n, nil
}
