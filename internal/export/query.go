package export

import (
	"fmt"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// queryOptions writes snapshots under their json tag names.
var queryOptions = ojg.Options{UseTags: true, KeyExact: true}

// Query evaluates a JSONPath expression against s. Numbers come back as
// int64 or float64 as produced by oj.
func Query(s *Snapshot, selector string) ([]any, error) {
	x, err := parseSelector(selector)
	if err != nil {
		return nil, err
	}
	data, err := oj.Marshal(s, &queryOptions)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	root, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return x.Get(root), nil
}

// QueryJSON evaluates selector against a JSON document.
func QueryJSON(data []byte, selector string) ([]any, error) {
	x, err := parseSelector(selector)
	if err != nil {
		return nil, err
	}
	root, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return x.Get(root), nil
}

func parseSelector(selector string) (jp.Expr, error) {
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}
	return x, nil
}
