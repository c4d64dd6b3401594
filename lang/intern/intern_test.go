package intern_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mna/ember/lang/intern"
)

func TestInternReturnsSamePointerForEqualContent(t *testing.T) {
	s := intern.New()
	a := s.Intern("hello")
	b := s.Intern("hello")
	assert.Same(t, a, b)
}

func TestInternDistinguishesDifferentContent(t *testing.T) {
	s := intern.New()
	a := s.Intern("hello")
	b := s.Intern("world")
	assert.NotSame(t, a, b)
}

func TestObjectsTracksAllocationOrder(t *testing.T) {
	s := intern.New()
	s.Intern("a")
	s.Intern("b")
	s.Intern("a") // already interned, not re-allocated
	objs := s.Objects()
	if assert.Len(t, objs, 2) {
		assert.Equal(t, "a", objs[0].Chars)
		assert.Equal(t, "b", objs[1].Chars)
	}
}
