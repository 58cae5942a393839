package subsets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func collect(items []string, k int) [][]string {
	var out [][]string
	Each(items, k, func(s []string) bool {
		out = append(out, append([]string(nil), s...))
		return true
	})
	return out
}

func TestEach(t *testing.T) {
	items := []string{"a", "b", "c"}

	assert.Equal(t, [][]string{nil}, collect(items, 0))
	assert.Equal(t, [][]string{{"a"}, {"b"}, {"c"}}, collect(items, 1))
	assert.Equal(t, [][]string{{"a", "b"}, {"a", "c"}, {"b", "c"}}, collect(items, 2))
	assert.Equal(t, [][]string{{"a", "b", "c"}}, collect(items, 3))
	assert.Empty(t, collect(items, 4))
	assert.Empty(t, collect(items, -1))
}

func TestEach_StopsEarly(t *testing.T) {
	calls := 0
	Each([]string{"a", "b", "c", "d"}, 2, func([]string) bool {
		calls++
		return calls < 2
	})
	assert.Equal(t, 2, calls)
}

func TestCount(t *testing.T) {
	assert.Equal(t, 1, Count(4, 0))
	assert.Equal(t, 6, Count(4, 2))
	assert.Equal(t, 0, Count(2, 3))
}

func TestKey(t *testing.T) {
	assert.NotEqual(t, Key([]string{"ab", "c"}), Key([]string{"a", "bc"}))
	assert.Equal(t, "", Key(nil))
}
