package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashBytesIsDeterministic(t *testing.T) {
	assert.Equal(t, HashBytes([]byte("hello")), HashBytes([]byte("hello")))
	assert.NotEqual(t, HashBytes([]byte("hello")), HashBytes([]byte("world")))
}

func TestNewObjStringSetsHashAndType(t *testing.T) {
	obj := NewObjString([]byte("abc"))
	assert.Equal(t, ObjString, obj.Type)
	assert.Equal(t, HashBytes([]byte("abc")), obj.Hash)
	assert.Nil(t, obj.Next)
}
