// Copyright (c) 2021-2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mysql

import (
	"strings"
)

const (
	// sqlCreateTable creates the blob table.
	sqlCreateTable = `CREATE TABLE IF NOT EXISTS kv (
  k VARCHAR(255) NOT NULL PRIMARY KEY,
  v LONGBLOB NOT NULL
)`

	sqlUpsert = "INSERT INTO kv (k, v) VALUES (?, ?) " +
		"ON DUPLICATE KEY UPDATE v = VALUES(v);"
	sqlDelete = "DELETE FROM kv WHERE k = ?;"

	// selectSizeLimit caps the placeholders of a single select.
	selectSizeLimit = 1000
)

// selectStatement is a select query with its arguments.
type selectStatement struct {
	Query string
	Args  []interface{}
}

// buildPlaceholders returns n comma separated placeholders in parentheses.
func buildPlaceholders(n int) string {
	if n <= 0 {
		return "()"
	}
	return "(" + strings.Repeat("?,", n-1) + "?)"
}

// buildSelectQuery returns the query that selects n keys, for example
// "SELECT k, v FROM kv WHERE k IN (?,?);" for two keys.
func buildSelectQuery(n int) string {
	return "SELECT k, v FROM kv WHERE k IN " + buildPlaceholders(n) + ";"
}

// buildSelectStatements returns the statements that select keys, each with at
// most limit placeholders.
func buildSelectStatements(keys []string, limit int) []selectStatement {
	statements := make([]selectStatement, 0, (len(keys)+limit-1)/limit)
	for len(keys) > 0 {
		n := len(keys)
		if n > limit {
			n = limit
		}
		args := make([]interface{}, n)
		for i, k := range keys[:n] {
			args[i] = k
		}
		statements = append(statements, selectStatement{
			Query: buildSelectQuery(n),
			Args:  args,
		})
		keys = keys[n:]
	}
	return statements
}
