package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mna/ember/lang/value"
)

func TestTruthiness(t *testing.T) {
	assert.False(t, value.Nil{}.Truthy())
	assert.False(t, value.Bool(false).Truthy())
	assert.True(t, value.Bool(true).Truthy())
	assert.True(t, value.Number(0).Truthy(), "0 is truthy, unlike some scripting languages")
	assert.True(t, value.NewString("").Truthy(), "empty string is truthy")
}

func TestEqualDiffersByConcreteType(t *testing.T) {
	assert.False(t, value.Equal(value.Number(1), value.Bool(true)))
	assert.False(t, value.Equal(value.Nil{}, value.Bool(false)))
	assert.True(t, value.Equal(value.Number(1), value.Number(1)))
}

func TestEqualStringsByIdentity(t *testing.T) {
	a := value.NewString("hi")
	b := value.NewString("hi")
	assert.False(t, value.Equal(a, b), "two un-interned strings with equal content are distinct objects")
	assert.True(t, value.Equal(a, a))
}

func TestNumberStringFormatting(t *testing.T) {
	assert.Equal(t, "1", value.Number(1).String())
	assert.Equal(t, "1.5", value.Number(1.5).String())
}

func TestUpvalueOpenCloseTransition(t *testing.T) {
	var slot value.Value = value.Number(10)
	uv := value.NewUpvalue(&slot)
	assert.True(t, uv.IsOpen())

	slot = value.Number(20)
	uv.Close()
	assert.False(t, uv.IsOpen())
	assert.Equal(t, value.Number(20), uv.Closed)
}
