package store

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// ExecScript runs a script of semicolon-separated statements in one
// transaction. It is used to create and seed databases for the harness
// and tests; the query path never writes.
func (s *Store) ExecScript(ctx context.Context, script string) error {
	stmts := SplitStatements(script)
	if len(stmts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin script: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit script: %w", err)
	}
	return nil
}

// ExecFile runs the script stored at path.
func (s *Store) ExecFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	if err := s.ExecScript(ctx, string(data)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// SplitStatements splits a script on semicolons that are outside quotes
// and comments. Empty statements are dropped.
func SplitStatements(script string) []string {
	var (
		stmts []string
		cur   strings.Builder
		quote rune
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}

	runes := []rune(script)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quote != 0:
			cur.WriteRune(r)
			if r == quote {
				// A doubled quote is an escaped quote.
				if i+1 < len(runes) && runes[i+1] == quote {
					cur.WriteRune(runes[i+1])
					i++
					continue
				}
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
			cur.WriteRune(r)
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			cur.WriteRune('\n')
		case r == ';':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return stmts
}
