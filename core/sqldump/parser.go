// Package sqldump reads the MySQL dumps Wikimedia publishes for individual
// tables (enwiki-*-page.sql.gz, enwiki-*-categorylinks.sql.gz).
//
// A dump is a sequence of statements; rows live in extended inserts, one
// statement per line:
//
//	INSERT INTO `page` VALUES (10,0,'AccessibleComputing',1,0,...),(12,0,'Anarchism',0,...);
//
// Everything that is not an INSERT for the requested table is skipped.
package sqldump

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Value is a single column value of a row.
type Value struct {
	Null     bool
	IsString bool
	Raw      string
}

// String returns the unescaped text of a string value, or the raw literal otherwise.
func (v Value) String() string {
	if v.IsString {
		return unescape(v.Raw)
	}
	return v.Raw
}

// Int parses the value as an integer. NULL is an error.
func (v Value) Int() (int64, error) {
	if v.Null {
		return 0, fmt.Errorf("NULL is not an integer")
	}
	return strconv.ParseInt(v.String(), 10, 64)
}

// Row is one tuple of an INSERT statement.
type Row []Value

// Insert is a parsed INSERT statement.
type Insert struct {
	Table string
	Rows  []Row
}

//nolint:govet // participle grammar tags are not standard struct tags
type insertGrammar struct {
	Table  string         `"INSERT" "INTO" @QuotedIdent`
	Tuples []*tupleGrammar `"VALUES" @@ ( "," @@ )* ";"?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type tupleGrammar struct {
	Values []*valueGrammar `"(" ( @@ ( "," @@ )* )? ")"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type valueGrammar struct {
	Null   bool    `  @"NULL"`
	String *string `| @String`
	Number *string `| @Number`
}

var insertLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `'(?:[^'\\]|\\.)*'`},
	{Name: "Number", Pattern: `[-+]?[0-9]+(?:\.[0-9]+)?(?:[eE][-+]?[0-9]+)?`},
	{Name: "QuotedIdent", Pattern: "`[^`]+`"},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[(),;]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var insertParser = participle.MustBuild[insertGrammar](
	participle.Lexer(insertLexer),
	participle.Elide("Whitespace"),
)

// ParseInsert parses a single INSERT statement.
func ParseInsert(stmt string) (*Insert, error) {
	parsed, err := insertParser.ParseString("", stmt)
	if err != nil {
		return nil, fmt.Errorf("invalid INSERT statement: %w", err)
	}

	ins := &Insert{
		Table: strings.Trim(parsed.Table, "`"),
		Rows:  make([]Row, 0, len(parsed.Tuples)),
	}
	for _, t := range parsed.Tuples {
		row := make(Row, 0, len(t.Values))
		for _, v := range t.Values {
			switch {
			case v.Null:
				row = append(row, Value{Null: true})
			case v.String != nil:
				s := *v.String
				row = append(row, Value{IsString: true, Raw: s[1 : len(s)-1]})
			default:
				row = append(row, Value{Raw: *v.Number})
			}
		}
		ins.Rows = append(ins.Rows, row)
	}
	return ins, nil
}

// Scan calls fn for every row inserted into table. Statements for other
// tables and non-INSERT lines are ignored.
func Scan(r io.Reader, table string, fn func(Row) error) error {
	prefix := "INSERT INTO `" + table + "`"
	br := bufio.NewReaderSize(r, 1<<20)
	lineNo := 0
	for {
		line, err := br.ReadString('\n')
		lineNo++
		if strings.HasPrefix(line, prefix) {
			ins, perr := ParseInsert(line)
			if perr != nil {
				return fmt.Errorf("line %d: %w", lineNo, perr)
			}
			for _, row := range ins.Rows {
				if err := fn(row); err != nil {
					return err
				}
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// unescape reverses MySQL string escaping.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case '0':
			b.WriteByte(0)
		case 'b':
			b.WriteByte('\b')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'Z':
			b.WriteByte(0x1a)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
