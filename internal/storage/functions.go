package storage

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"modernc.org/sqlite"
)

// SQLite's lower() folds ASCII only. contains_fold applies the same Unicode
// folding the in-memory filter uses, so both stores agree on search results.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("contains_fold", 2, containsFold)
}

func containsFold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	haystack, err := textArg(args[0])
	if err != nil {
		return nil, err
	}
	needle, err := textArg(args[1])
	if err != nil {
		return nil, err
	}
	if strings.Contains(strings.ToLower(haystack), strings.ToLower(needle)) {
		return int64(1), nil
	}
	return int64(0), nil
}

func textArg(v driver.Value) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	default:
		return "", fmt.Errorf("contains_fold: unexpected argument type %T", v)
	}
}
