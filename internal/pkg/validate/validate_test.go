package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name string `validate:"required"`
	Mode string `validate:"oneof=a b"`
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(sample{Name: "x", Mode: "a"}))
}

func TestStruct_ListsEveryField(t *testing.T) {
	err := Struct(sample{Mode: "c"})
	assert.EqualError(t, err, "field 'Name' failed 'required'; field 'Mode' failed 'oneof'")
}

func TestStruct_NotAStruct(t *testing.T) {
	assert.Error(t, Struct("nope"))
}
