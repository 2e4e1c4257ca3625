package flowstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameSet_AddKeepsFirstPosition(t *testing.T) {
	s := NewNameSet("b", "a", "", "b")
	s.Add("c", "a")

	assert.Equal(t, []string{"b", "a", "c"}, s.Names())
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has(""))
}

func TestNameSet_ZeroValue(t *testing.T) {
	var s NameSet
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Has("x"))

	s.Add("x")
	assert.True(t, s.Has("x"))

	var nilSet *NameSet
	assert.False(t, nilSet.Has("x"))
	assert.Equal(t, 0, nilSet.Len())
	assert.Nil(t, nilSet.Names())
}

func TestNameSet_Union(t *testing.T) {
	s := NewNameSet("a", "b")
	s.Union(NewNameSet("b", "c")).Union(nil)

	assert.Equal(t, []string{"a", "b", "c"}, s.Names())
}

func TestNameSet_Difference(t *testing.T) {
	tests := []struct {
		name string
		a    *NameSet
		b    *NameSet
		want []string
	}{
		{"disjoint", NewNameSet("a", "b"), NewNameSet("c"), []string{"a", "b"}},
		{"overlap keeps order of a", NewNameSet("c", "a", "b"), NewNameSet("a"), []string{"c", "b"}},
		{"subset", NewNameSet("a"), NewNameSet("a", "b"), []string{}},
		{"nil b", NewNameSet("a"), nil, []string{"a"}},
		{"nil a", nil, NewNameSet("a"), []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Difference(tc.a, tc.b).Names())
		})
	}
}

func TestNameSet_NamesIsCopy(t *testing.T) {
	s := NewNameSet("a")
	names := s.Names()
	names[0] = "z"
	assert.Equal(t, []string{"a"}, s.Names())
}
