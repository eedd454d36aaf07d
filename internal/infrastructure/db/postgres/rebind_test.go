package postgres

import "testing"

func TestRebind(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "no placeholders",
			in:   "SELECT * FROM sectors",
			want: "SELECT * FROM sectors",
		},
		{
			name: "sequential numbering",
			in:   "INSERT INTO events (title, location) VALUES (?, ?)",
			want: "INSERT INTO events (title, location) VALUES ($1, $2)",
		},
		{
			name: "question mark inside string literal",
			in:   "SELECT * FROM forums WHERE title = 'what now?' AND id = ?",
			want: "SELECT * FROM forums WHERE title = 'what now?' AND id = $1",
		},
		{
			name: "escaped quote keeps literal state",
			in:   "UPDATE resources SET title = 'it''s here?' WHERE id = ?",
			want: "UPDATE resources SET title = 'it''s here?' WHERE id = $1",
		},
		{
			name: "question mark inside line comment",
			in:   "SELECT * FROM users WHERE id = ? -- which one?\nORDER BY id",
			want: "SELECT * FROM users WHERE id = $1 -- which one?\nORDER BY id",
		},
		{
			name: "question mark inside block comment",
			in:   "SELECT /* really? */ * FROM users WHERE id = ? AND role = ?",
			want: "SELECT /* really? */ * FROM users WHERE id = $1 AND role = $2",
		},
		{
			name: "question mark inside quoted identifier",
			in:   `SELECT "odd?col" FROM resources WHERE id = ?`,
			want: `SELECT "odd?col" FROM resources WHERE id = $1`,
		},
		{
			name: "dollar placeholders pass through",
			in:   "SELECT * FROM users WHERE id = $1",
			want: "SELECT * FROM users WHERE id = $1",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Rebind(tc.in); got != tc.want {
				t.Errorf("Rebind(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
