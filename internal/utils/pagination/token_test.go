package pagination

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiFieldTokenRoundTrip(t *testing.T) {
	token := EncodeMultiFieldToken("DEM-000042", "2024-03")
	assert.NotEmpty(t, token)

	fields, err := DecodeMultiFieldToken(token)
	require.NoError(t, err)
	assert.Equal(t, []string{"DEM-000042", "2024-03"}, fields)
}

func TestDecodeKeyToken(t *testing.T) {
	key, err := DecodeKeyToken("")
	require.NoError(t, err)
	assert.Empty(t, key, "empty token starts from the beginning")

	key, err = DecodeKeyToken(EncodeMultiFieldToken("REL-000003"))
	require.NoError(t, err)
	assert.Equal(t, "REL-000003", key)

	_, err = DecodeKeyToken("this is not base64!")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "base64 decode")

	_, err = DecodeKeyToken(EncodeMultiFieldToken("a", "b"))
	assert.Error(t, err, "two fields are not a key token")
}

func TestSeqToken(t *testing.T) {
	seq, err := DecodeSeqToken("")
	require.NoError(t, err)
	assert.Zero(t, seq)

	seq, err = DecodeSeqToken(EncodeSeqToken(117))
	require.NoError(t, err)
	assert.Equal(t, int64(117), seq)

	_, err = DecodeSeqToken(EncodeMultiFieldToken("seventeen"))
	assert.Error(t, err)
}

func TestTrim(t *testing.T) {
	items := []int{1, 2, 3, 4}
	key := func(i int) string { return strconv.Itoa(i) }

	page, next := Trim(items, 3, key)
	assert.Equal(t, []int{1, 2, 3}, page)
	require.NotNil(t, next)
	k, err := DecodeKeyToken(*next)
	require.NoError(t, err)
	assert.Equal(t, "3", k)

	page, next = Trim(items[:2], 3, key)
	assert.Equal(t, []int{1, 2}, page)
	assert.Nil(t, next, "last page has no token")
}
