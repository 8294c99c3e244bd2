package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// EncodeMultiFieldToken creates a token with any number of string fields
// This provides flexibility for different pagination strategies
func EncodeMultiFieldToken(fields ...string) string {
	tokenStr := strings.Join(fields, "|")
	return base64.StdEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeMultiFieldToken decodes a token into its component fields
func DecodeMultiFieldToken(token string) ([]string, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}

	tokenStr := string(decodedBytes)
	parts := strings.Split(tokenStr, "|")
	return parts, nil
}

// DecodeKeyToken decodes a single-field keyset token. An empty token yields
// an empty key, which means "from the start".
func DecodeKeyToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	parts, err := DecodeMultiFieldToken(token)
	if err != nil {
		return "", err
	}
	if len(parts) != 1 || parts[0] == "" {
		return "", fmt.Errorf("invalid pagination token format (expected one field, got %d)", len(parts))
	}
	return parts[0], nil
}

// EncodeSeqToken encodes a numeric keyset position.
func EncodeSeqToken(seq int64) string {
	return EncodeMultiFieldToken(strconv.FormatInt(seq, 10))
}

// DecodeSeqToken decodes a numeric keyset position. An empty token yields 0.
func DecodeSeqToken(token string) (int64, error) {
	key, err := DecodeKeyToken(token)
	if err != nil || key == "" {
		return 0, err
	}
	seq, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid pagination token format (sequence parse): %w", err)
	}
	return seq, nil
}

// Trim cuts a page fetched with limit+1 rows down to limit and returns the
// token for the next page, or nil on the last page.
func Trim[T any](items []T, limit int, key func(T) string) ([]T, *string) {
	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	items = items[:limit]
	next := EncodeMultiFieldToken(key(items[limit-1]))
	return items, &next
}
