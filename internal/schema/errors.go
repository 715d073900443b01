package schema

import "errors"

var (
	ErrUnsupportedKeyword = errors.New("schema: unsupported keyword")
	ErrInvalidSchema      = errors.New("schema: invalid schema document")
)
