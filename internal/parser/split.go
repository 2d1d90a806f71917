package parser

import (
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// Split breaks a script into individual statements on the ';' terminator.
// It uses the PostgreSQL scanner, so terminators inside string literals,
// dollar-quoted bodies and comments do not split. Empty fragments and
// fragments made only of comments are dropped; file order is kept.
func Split(sql string) ([]string, error) {
	fragments, err := pg_query.SplitWithScanner(sql, true)
	if err != nil {
		return nil, fmt.Errorf("splitting SQL: %w", err)
	}

	stmts := make([]string, 0, len(fragments))

	for _, f := range fragments {
		commentOnly, err := IsCommentOnly(f)
		if err != nil {
			return nil, err
		}

		if commentOnly {
			continue
		}

		stmts = append(stmts, f)
	}

	return stmts, nil
}

// IsCommentOnly reports whether fragment holds nothing but whitespace and
// comments.
func IsCommentOnly(fragment string) (bool, error) {
	result, err := pg_query.Scan(fragment)
	if err != nil {
		return false, fmt.Errorf("scanning SQL: %w", err)
	}

	for _, tok := range result.GetTokens() {
		switch tok.GetToken() {
		case pg_query.Token_SQL_COMMENT, pg_query.Token_C_COMMENT:
			continue
		default:
			return false, nil
		}
	}

	return true, nil
}
