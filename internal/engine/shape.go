package engine

import (
	"fmt"
	"strconv"

	"github.com/roach88/cypherlite/internal/ir"
	"github.com/roach88/cypherlite/internal/queryir"
)

// shapeRow maps one projection record to an output row.
//
// A node or edge column becomes a flat map of its properties plus "id";
// label and type are not part of the map. With st.Flat the entity map is
// the row itself.
func shapeRow(st queryir.Statement, rec []any) (map[string]any, error) {
	if st.Flat {
		if len(st.Columns) != 1 {
			return nil, fmt.Errorf("flat projection needs one column, has %d", len(st.Columns))
		}
		return entityMap(st.Columns[0], rec)
	}

	out := make(map[string]any, len(st.Columns))
	for _, col := range st.Columns {
		v, err := columnValue(col, rec)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		out[col.Name] = v
	}
	return out, nil
}

func columnValue(col queryir.Column, rec []any) (any, error) {
	switch col.Kind {
	case queryir.ColumnLiteral:
		return ir.ToGo(col.Value), nil
	case queryir.ColumnID:
		if col.Index >= len(rec) {
			return nil, fmt.Errorf("index %d out of range", col.Index)
		}
		return toInt64(rec[col.Index])
	case queryir.ColumnProperty:
		props, err := properties(col, rec)
		if err != nil {
			return nil, err
		}
		return ir.ToGo(props[col.Key]), nil
	case queryir.ColumnNode, queryir.ColumnEdge:
		return entityMap(col, rec)
	default:
		return nil, fmt.Errorf("unknown column kind %s", col.Kind)
	}
}

func entityMap(col queryir.Column, rec []any) (map[string]any, error) {
	if col.Kind != queryir.ColumnNode && col.Kind != queryir.ColumnEdge {
		return nil, fmt.Errorf("column %q is not an entity", col.Name)
	}
	if col.Index >= len(rec) {
		return nil, fmt.Errorf("index %d out of range", col.Index)
	}
	id, err := toInt64(rec[col.Index])
	if err != nil {
		return nil, err
	}
	props, err := properties(col, rec)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(props)+1)
	for k, v := range props {
		out[k] = ir.ToGo(v)
	}
	out["id"] = id
	return out, nil
}

// properties decodes the stored map that follows the id at col.Index.
func properties(col queryir.Column, rec []any) (ir.IRObject, error) {
	if col.Index+1 >= len(rec) {
		return nil, fmt.Errorf("index %d out of range", col.Index+1)
	}
	text, err := toText(rec[col.Index+1])
	if err != nil {
		return nil, err
	}
	return ir.UnmarshalProperties(text)
}

// toInt64 converts a driver value holding a row id.
func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case []byte:
		return strconv.ParseInt(string(x), 10, 64)
	case string:
		return strconv.ParseInt(x, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected id value %T", v)
	}
}

func toText(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case nil:
		return "{}", nil
	default:
		return "", fmt.Errorf("unexpected properties value %T", v)
	}
}
