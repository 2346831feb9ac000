package sql

import (
	"fmt"

	"minidb/pkg/heap"
)

// Parse tokenizes and parses a single statement, stopping at an optional
// trailing semicolon. An unsupported statement keyword, or an unsupported
// form after CREATE, DROP, SHOW or in a WHERE term, is reported as "not
// implemented"; a character the lexer does not recognise (such as '>') and
// other malformed input are reported with a lexer or parser error that
// does not say "not implemented".
func Parse(src string) (Statement, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.parse()
}

type parser struct {
	toks []Token
	pos  int
}

func (p *parser) cur() Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *parser) advance() Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expectKeyword(word string) error {
	t := p.advance()
	if t.Kind != Keyword || t.Text != word {
		return fmt.Errorf("expected %s, got %v", word, t)
	}
	return nil
}

func (p *parser) expectIdent() (string, error) {
	t := p.advance()
	if t.Kind != Identifier {
		return "", fmt.Errorf("expected identifier, got %v", t)
	}
	return t.Text, nil
}

func (p *parser) isKeyword(word string) bool {
	t := p.cur()
	return t.Kind == Keyword && t.Text == word
}

func (p *parser) parse() (Statement, error) {
	t := p.cur()
	if t.Kind != Keyword {
		return nil, fmt.Errorf("not implemented: statement must start with a keyword, got %v", t)
	}

	switch t.Text {
	case "CREATE":
		p.advance()
		return p.parseCreate()
	case "DROP":
		p.advance()
		return p.parseDrop()
	case "SHOW":
		p.advance()
		return p.parseShow()
	case "INSERT":
		p.advance()
		return p.parseInsert()
	case "DELETE":
		p.advance()
		return p.parseDelete()
	case "SELECT":
		p.advance()
		return p.parseSelect()
	default:
		return nil, fmt.Errorf("not implemented: unsupported statement keyword %s", t.Text)
	}
}

func (p *parser) parseCreate() (Statement, error) {
	if p.isKeyword("TABLE") {
		p.advance()
		return p.parseCreateTable()
	}
	if p.isKeyword("INDEX") {
		p.advance()
		return p.parseCreateIndex()
	}
	return nil, fmt.Errorf("not implemented: CREATE must be followed by TABLE or INDEX, got %v", p.cur())
}

func (p *parser) parseCreateTable() (Statement, error) {
	ifNotExists := false
	if p.isKeyword("IF") {
		p.advance()
		if err := p.expectKeyword("NOT"); err != nil {
			return nil, err
		}
		if err := p.expectKeyword("EXISTS"); err != nil {
			return nil, err
		}
		ifNotExists = true
	}

	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	if p.cur().Kind != LParen {
		return nil, fmt.Errorf("create table: expected ( after table name, got %v", p.cur())
	}
	p.advance()

	var cols []ColumnDef
	for {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		typTok := p.advance()
		if typTok.Kind != Keyword {
			return nil, fmt.Errorf("create table: expected a column type, got %v", typTok)
		}
		attr, err := heap.ParseColumnAttribute(typTok.Text)
		if err != nil {
			return nil, fmt.Errorf("create table: %w", err)
		}
		cols = append(cols, ColumnDef{Name: name, Attr: attr})

		if p.cur().Kind == Comma {
			p.advance()
			continue
		}
		break
	}

	if p.cur().Kind != RParen {
		return nil, fmt.Errorf("create table: expected ) to close column list, got %v", p.cur())
	}
	p.advance()

	return &CreateTable{Table: table, IfNotExists: ifNotExists, Columns: cols}, nil
}

func (p *parser) parseCreateIndex() (Statement, error) {
	index, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("ON"); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	using := "BTREE"
	if p.isKeyword("USING") {
		p.advance()
		t := p.advance()
		if t.Kind != Keyword {
			return nil, fmt.Errorf("create index: expected BTREE or HASH after USING, got %v", t)
		}
		using = t.Text
	}

	if p.cur().Kind != LParen {
		return nil, fmt.Errorf("create index: expected ( before column list, got %v", p.cur())
	}
	p.advance()

	var cols []string
	for {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		cols = append(cols, name)
		if p.cur().Kind == Comma {
			p.advance()
			continue
		}
		break
	}

	if p.cur().Kind != RParen {
		return nil, fmt.Errorf("create index: expected ) to close column list, got %v", p.cur())
	}
	p.advance()

	return &CreateIndex{Index: index, Table: table, Using: using, Columns: cols}, nil
}

func (p *parser) parseDrop() (Statement, error) {
	if p.isKeyword("TABLE") {
		p.advance()
		table, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &DropTable{Table: table}, nil
	}
	if p.isKeyword("INDEX") {
		p.advance()
		index, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("FROM"); err != nil {
			return nil, err
		}
		table, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &DropIndex{Index: index, Table: table}, nil
	}
	return nil, fmt.Errorf("not implemented: DROP must be followed by TABLE or INDEX, got %v", p.cur())
}

func (p *parser) parseShow() (Statement, error) {
	if p.isKeyword("TABLES") {
		p.advance()
		return &Show{Kind: ShowTables}, nil
	}
	if p.isKeyword("COLUMNS") {
		p.advance()
		if err := p.expectKeyword("FROM"); err != nil {
			return nil, err
		}
		table, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &Show{Kind: ShowColumns, Table: table}, nil
	}
	if p.isKeyword("INDEX") {
		p.advance()
		if err := p.expectKeyword("FROM"); err != nil {
			return nil, err
		}
		table, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &Show{Kind: ShowIndex, Table: table}, nil
	}
	return nil, fmt.Errorf("not implemented: SHOW must be followed by TABLES, COLUMNS, or INDEX, got %v", p.cur())
}

func (p *parser) parseLiteral() (Literal, error) {
	t := p.advance()
	switch t.Kind {
	case Number:
		var n int32
		if _, err := fmt.Sscanf(t.Text, "%d", &n); err != nil {
			return Literal{}, fmt.Errorf("invalid integer literal %q", t.Text)
		}
		return Literal{Value: heap.NewInt(n)}, nil
	case String:
		return Literal{Value: heap.NewText(t.Text)}, nil
	default:
		return Literal{}, fmt.Errorf("expected a literal, got %v", t)
	}
}

func (p *parser) parseInsert() (Statement, error) {
	if err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	var columns []string
	if p.cur().Kind == LParen {
		p.advance()
		for {
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			columns = append(columns, name)
			if p.cur().Kind == Comma {
				p.advance()
				continue
			}
			break
		}
		if p.cur().Kind != RParen {
			return nil, fmt.Errorf("insert: expected ) to close column list, got %v", p.cur())
		}
		p.advance()
	}

	if err := p.expectKeyword("VALUES"); err != nil {
		return nil, err
	}
	if p.cur().Kind != LParen {
		return nil, fmt.Errorf("insert: expected ( before value list, got %v", p.cur())
	}
	p.advance()

	var values []Literal
	for {
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		values = append(values, lit)
		if p.cur().Kind == Comma {
			p.advance()
			continue
		}
		break
	}
	if p.cur().Kind != RParen {
		return nil, fmt.Errorf("insert: expected ) to close value list, got %v", p.cur())
	}
	p.advance()

	return &Insert{Table: table, Columns: columns, Values: values}, nil
}

func (p *parser) parseWhere() ([]Condition, error) {
	if !p.isKeyword("WHERE") {
		return nil, nil
	}
	p.advance()

	var conds []Condition
	for {
		col, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if p.cur().Kind != Equal {
			return nil, fmt.Errorf("not implemented: only column = literal predicates are supported, got %v", p.cur())
		}
		p.advance()
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		conds = append(conds, Condition{Column: col, Value: lit})

		if p.isKeyword("AND") {
			p.advance()
			continue
		}
		break
	}
	return conds, nil
}

func (p *parser) parseDelete() (Statement, error) {
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	where, err := p.parseWhere()
	if err != nil {
		return nil, err
	}
	return &Delete{Table: table, Where: where}, nil
}

func (p *parser) parseSelect() (Statement, error) {
	var columns []string
	if p.cur().Kind == Star {
		p.advance()
	} else {
		for {
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			columns = append(columns, name)
			if p.cur().Kind == Comma {
				p.advance()
				continue
			}
			break
		}
	}

	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	where, err := p.parseWhere()
	if err != nil {
		return nil, err
	}
	return &Select{Table: table, Columns: columns, Where: where}, nil
}
