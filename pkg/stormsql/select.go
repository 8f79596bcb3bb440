// Package stormsql translates a subset of SQL SELECT statements into storm queries.
package stormsql

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/q"
	"github.com/pkg/errors"
	"github.com/xwb1989/sqlparser"
)

// A SelectClause contains all the parsed SQL data.
type SelectClause struct {
	SelectedFields  []string
	Count           bool
	Tablename       string
	Matcher         q.Matcher
	Skip            int
	Limit           int
	OrderBy         []string
	OrderByReversed bool
}

// ParseSelect parses the given SELECT statement.
//
//	SELECT count(*) FROM articles WHERE AuthorID = 1 AND CreatedAt > '2024-02-16 20:52:55';
//	SELECT * FROM articles WHERE Path LIKE '/guides/%' ORDER BY CreatedAt DESC LIMIT 10;
func ParseSelect(sql string) (*SelectClause, error) {
	stmt, err := sqlparser.Parse(sql)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse SQL")
	}

	s, ok := stmt.(*sqlparser.Select)
	if !ok {
		return nil, errors.New("not a select statement")
	}

	var sc SelectClause

	// SELECT * ...
	// SELECT Path,Title ...
	for _, se := range s.SelectExprs {
		switch v := se.(type) {
		case *sqlparser.StarExpr:
			sc.SelectedFields = []string{}
		case *sqlparser.AliasedExpr:
			switch v := v.Expr.(type) {
			case *sqlparser.ColName:
				sc.SelectedFields = append(sc.SelectedFields, v.Name.String())
			case *sqlparser.FuncExpr:
				if !v.Name.EqualString("count") {
					return nil, errors.Errorf("unsupported function: %s", v.Name.String())
				}
				sc.SelectedFields = []string{}
				sc.Count = true
			default:
				return nil, errors.New("unsupported select expression")
			}
		default:
			return nil, errors.New("unsupported select expression")
		}
	}

	// FROM articles
	if len(s.From) != 1 {
		return nil, errors.New("only one table can be selected")
	}
	table, ok := s.From[0].(*sqlparser.AliasedTableExpr)
	if !ok {
		return nil, errors.New("unsupported table expression")
	}
	sc.Tablename = sqlparser.GetTableName(table.Expr).String()
	if sc.Tablename == "" {
		return nil, errors.New("unsupported table expression")
	}

	// WHERE
	sc.Matcher = q.And()
	if s.Where != nil {
		if sc.Matcher, err = parseWhereExpr(s.Where.Expr); err != nil {
			return nil, err
		}
	}

	// LIMIT 5
	// LIMIT 2,5
	if s.Limit != nil {
		if s.Limit.Offset != nil {
			if sc.Skip, err = parseInt(s.Limit.Offset); err != nil {
				return nil, errors.Wrap(err, "offset")
			}
		}
		if sc.Limit, err = parseInt(s.Limit.Rowcount); err != nil {
			return nil, errors.Wrap(err, "limit")
		}
	}

	// ORDER BY CreatedAt
	// ORDER BY CreatedAt DESC
	// ORDER BY CreatedAt DESC, ID ASC     => All will be DESC due to storm limitation
	for _, ob := range s.OrderBy {
		col, ok := ob.Expr.(*sqlparser.ColName)
		if !ok {
			return nil, errors.New("only columns can be ordered")
		}
		if ob.Direction == sqlparser.DescScr {
			sc.OrderByReversed = true
		}
		sc.OrderBy = append(sc.OrderBy, col.Name.String())
	}

	return &sc, nil
}

// Query returns the storm query of the clause against the given node.
func (sc *SelectClause) Query(node storm.Node) storm.Query {
	query := node.Select(sc.Matcher)
	if sc.Skip > 0 {
		query.Skip(sc.Skip)
	}
	if sc.Limit > 0 {
		query.Limit(sc.Limit)
	}
	if len(sc.OrderBy) > 0 {
		query.OrderBy(sc.OrderBy...)
		if sc.OrderByReversed {
			query.Reverse()
		}
	}
	return query
}

func parseWhereExpr(expr sqlparser.Expr) (q.Matcher, error) {
	switch v := expr.(type) {
	case *sqlparser.ParenExpr:
		return parseWhereExpr(v.Expr)
	case *sqlparser.ComparisonExpr:
		return parseComparison(v)
	case *sqlparser.IsExpr:
		col, ok := v.Expr.(*sqlparser.ColName)
		if !ok {
			return nil, errors.New("unsupported IS expression")
		}

		switch v.Operator {
		case sqlparser.IsNullStr:
			return q.Eq(col.Name.String(), nil), nil
		case sqlparser.IsNotNullStr:
			return q.Not(q.Eq(col.Name.String(), nil)), nil
		default:
			return nil, errors.Errorf("unsupported operator: %s", v.Operator)
		}
	case *sqlparser.NotExpr:
		m, err := parseWhereExpr(v.Expr)
		if err != nil {
			return nil, err
		}
		return q.Not(m), nil
	case *sqlparser.AndExpr:
		left, err := parseWhereExpr(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := parseWhereExpr(v.Right)
		if err != nil {
			return nil, err
		}
		return q.And(left, right), nil
	case *sqlparser.OrExpr:
		left, err := parseWhereExpr(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := parseWhereExpr(v.Right)
		if err != nil {
			return nil, err
		}
		return q.Or(left, right), nil
	default:
		return nil, errors.Errorf("unsupported where expression: %s", sqlparser.String(expr))
	}
}

func parseComparison(v *sqlparser.ComparisonExpr) (q.Matcher, error) {
	col, ok := v.Left.(*sqlparser.ColName)
	if !ok {
		return nil, errors.Errorf("left operand must be a column: %s", sqlparser.String(v))
	}
	field := col.Name.String()

	var value interface{}
	switch right := v.Right.(type) {
	case sqlparser.BoolVal:
		value = bool(right)
	case *sqlparser.NullVal:
		value = nil
	case sqlparser.ValTuple:
		var tuple []interface{}
		for _, t := range right {
			val, ok := t.(*sqlparser.SQLVal)
			if !ok {
				return nil, errors.Errorf("unsupported tuple value: %s", sqlparser.String(t))
			}
			parsed, err := parseSQLVal(val)
			if err != nil {
				return nil, err
			}
			tuple = append(tuple, parsed)
		}
		value = tuple
	case *sqlparser.SQLVal:
		var err error
		if value, err = parseSQLVal(right); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Errorf("unsupported value: %s", sqlparser.String(v.Right))
	}

	switch v.Operator {
	case sqlparser.EqualStr:
		return q.Eq(field, value), nil
	case sqlparser.NotEqualStr:
		return q.Not(q.Eq(field, value)), nil
	case sqlparser.GreaterThanStr:
		return q.Gt(field, value), nil
	case sqlparser.GreaterEqualStr:
		return q.Gte(field, value), nil
	case sqlparser.LessThanStr:
		return q.Lt(field, value), nil
	case sqlparser.LessEqualStr:
		return q.Lte(field, value), nil
	case sqlparser.InStr:
		return q.In(field, value), nil
	case sqlparser.NotInStr:
		return q.Not(q.In(field, value)), nil
	case sqlparser.LikeStr, sqlparser.NotLikeStr:
		pattern, ok := v.Right.(*sqlparser.SQLVal)
		if !ok || pattern.Type != sqlparser.StrVal {
			return nil, errors.New("LIKE expects a string pattern")
		}
		m := q.Re(field, likeToRegexp(string(pattern.Val)))
		if v.Operator == sqlparser.NotLikeStr {
			m = q.Not(m)
		}
		return m, nil
	default:
		return nil, errors.Errorf("unsupported operator: %s", v.Operator)
	}
}

// likeToRegexp converts a LIKE pattern into an anchored regular expression.
func likeToRegexp(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return b.String()
}

func parseInt(expr sqlparser.Expr) (int, error) {
	v, ok := expr.(*sqlparser.SQLVal)
	if !ok || v.Type != sqlparser.IntVal {
		return 0, errors.Errorf("not an integer: %s", sqlparser.String(expr))
	}
	return strconv.Atoi(string(v.Val))
}

func parseSQLVal(v *sqlparser.SQLVal) (value interface{}, err error) {
	switch v.Type {
	case sqlparser.StrVal:
		value = string(v.Val)

		// Try to convert to time.Time if possible
		if t, err := dateparse.ParseStrict(string(v.Val)); err == nil {
			value = t.UTC()
		}
	case sqlparser.IntVal:
		value, err = strconv.Atoi(string(v.Val))
	case sqlparser.FloatVal:
		value, err = strconv.ParseFloat(string(v.Val), 64)
	case sqlparser.HexNum:
		value, err = strconv.ParseInt(string(v.Val[2:]), 16, 64)
	case sqlparser.HexVal:
		value, err = v.HexDecode()
	case sqlparser.BitVal:
		value = len(v.Val) > 0 && v.Val[0] == '1'
	default:
		return nil, errors.Errorf("unsupported value: %s", sqlparser.String(v))
	}

	return value, errors.Wrapf(err, "invalid value %s", sqlparser.String(v))
}
