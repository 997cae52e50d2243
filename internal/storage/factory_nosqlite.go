//go:build !sqlite

package storage

import "errors"

func newSQLiteStore(string) (Store, error) {
	return nil, errors.New("sqlite backend not compiled in; rebuild with -tags sqlite")
}
