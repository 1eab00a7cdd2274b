package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/cypherlite/internal/cypher"
	"github.com/roach88/cypherlite/internal/queryir"
)

// projection collects the entities a RETURN clause reads. Each entity
// contributes an (id, properties) pair to the SELECT list.
type projection struct {
	t     *translator
	slots map[string]int
	sel   []string
	from  []string
	conds []string
	args  []queryir.Arg
}

func (p *projection) slot(name string) (int, varKind, error) {
	kind, err := p.t.lookup(name)
	if err != nil {
		return 0, 0, err
	}
	if idx, ok := p.slots[name]; ok {
		return idx, kind, nil
	}
	alias := fmt.Sprintf("p%d", len(p.from))
	idx := len(p.sel)
	p.slots[name] = idx
	p.sel = append(p.sel, alias+".id", alias+".properties")
	p.from = append(p.from, kind.table()+" "+alias)
	p.conds = append(p.conds, alias+".id = ?")
	p.args = append(p.args, queryir.VarRef(name))
	return idx, kind, nil
}

func (p *projection) column(item cypher.ReturnItem) (queryir.Column, error) {
	col := queryir.Column{Name: item.Name()}

	switch x := item.Expr.(type) {
	case *cypher.Variable:
		idx, kind, err := p.slot(x.Name)
		if err != nil {
			return col, err
		}
		col.Kind, col.Var, col.Index = queryir.ColumnNode, x.Name, idx
		if kind == kindEdge {
			col.Kind = queryir.ColumnEdge
		}
	case *cypher.FuncCall:
		name, err := idArgument(x)
		if err != nil {
			return col, err
		}
		idx, _, err := p.slot(name)
		if err != nil {
			return col, err
		}
		col.Kind, col.Var, col.Index = queryir.ColumnID, name, idx
	case *cypher.PropertyAccess:
		if _, err := propertyPath(x.Key); err != nil {
			return col, err
		}
		idx, _, err := p.slot(x.Variable)
		if err != nil {
			return col, err
		}
		col.Kind, col.Var, col.Key, col.Index = queryir.ColumnProperty, x.Variable, x.Key, idx
	case *cypher.Literal, *cypher.Param, *cypher.ListLiteral, *cypher.MapLiteral:
		v, err := p.t.resolve(x)
		if err != nil {
			return col, err
		}
		col.Kind, col.Value = queryir.ColumnLiteral, v
	default:
		return col, newError(ErrCodeUnsupportedExpression, "", "%s cannot be returned", describe(item.Expr))
	}
	return col, nil
}

// project compiles RETURN into the final ModeProject statement.
//
// A single bare, unaliased variable yields the flat entity map itself as
// the row: its properties plus "id".
func (t *translator) project(c *cypher.ReturnClause) error {
	p := &projection{t: t, slots: make(map[string]int)}

	columns := make([]queryir.Column, 0, len(c.Items))
	names := make([]string, 0, len(c.Items))
	seen := make(map[string]bool)
	for _, item := range c.Items {
		col, err := p.column(item)
		if err != nil {
			return err
		}
		if seen[col.Name] {
			return newError(ErrCodeUnsupportedExpression, col.Name,
				"column %q is returned more than once; use AS to rename it", col.Name)
		}
		seen[col.Name] = true
		columns = append(columns, col)
		names = append(names, col.Name)
	}

	var sql string
	if len(p.sel) > 0 {
		sql = fmt.Sprintf("SELECT %s FROM %s WHERE %s",
			strings.Join(p.sel, ", "), strings.Join(p.from, ", "), strings.Join(p.conds, " AND "))
	}

	_, bare := c.Items[0].Expr.(*cypher.Variable)
	t.emit(queryir.Statement{
		SQL:     sql,
		Args:    p.args,
		Mode:    queryir.ModeProject,
		Shape:   queryir.ShapeRows,
		Columns: columns,
		Flat:    len(c.Items) == 1 && bare && c.Items[0].Alias == "",
	})
	t.columns = names
	return nil
}
