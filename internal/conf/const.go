package conf

type ctxKey int

const (
	UserKey ctxKey = iota
	RequestIDKey
)

// Keywords every participation script starts with.
var DefaultKeywords = []string{"tunga.io", "tunga"}
