package postgres

import (
	"strconv"
	"strings"
)

// Rebind translates ? placeholders into the $1, $2 form PostgreSQL expects.
// Placeholders inside string literals, double-quoted identifiers, -- line
// comments and /* */ block comments are left alone. Statements already
// written with $N pass through unchanged.
func Rebind(sql string) string {
	if !strings.Contains(sql, "?") {
		return sql
	}

	var b strings.Builder
	b.Grow(len(sql) + 8)

	n := 0
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch c {
		case '\'', '"':
			i = copyQuoted(&b, sql, i, c)
		case '-':
			if i+1 < len(sql) && sql[i+1] == '-' {
				i = copyLineComment(&b, sql, i)
			} else {
				b.WriteByte(c)
			}
		case '/':
			if i+1 < len(sql) && sql[i+1] == '*' {
				i = copyBlockComment(&b, sql, i)
			} else {
				b.WriteByte(c)
			}
		case '?':
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// copyQuoted copies a quoted region starting at the opening quote, honouring
// the doubled-quote escape, and returns the index of the closing quote.
func copyQuoted(b *strings.Builder, sql string, i int, quote byte) int {
	b.WriteByte(quote)
	for i++; i < len(sql); i++ {
		b.WriteByte(sql[i])
		if sql[i] == quote {
			if i+1 < len(sql) && sql[i+1] == quote {
				i++
				b.WriteByte(quote)
				continue
			}
			return i
		}
	}
	return len(sql) - 1
}

func copyLineComment(b *strings.Builder, sql string, i int) int {
	for ; i < len(sql); i++ {
		b.WriteByte(sql[i])
		if sql[i] == '\n' {
			return i
		}
	}
	return len(sql) - 1
}

func copyBlockComment(b *strings.Builder, sql string, i int) int {
	b.WriteString("/*")
	var prev byte
	for i += 2; i < len(sql); i++ {
		b.WriteByte(sql[i])
		if prev == '*' && sql[i] == '/' {
			return i
		}
		prev = sql[i]
	}
	return len(sql) - 1
}
