package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchema = `{
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"age": {"type": "integer", "minimum": 0}
	}
}`

func TestSchema_ValidDocument(t *testing.T) {
	s, err := Compile("person", personSchema)
	require.NoError(t, err)

	assert.NoError(t, s.Validate(map[string]interface{}{"name": "Ada", "age": 36}))
	assert.NoError(t, s.ValidateJSONString(`{"name": "Ada"}`))
}

func TestSchema_MissingField(t *testing.T) {
	s := MustCompile("person", personSchema)

	err := s.Validate(map[string]interface{}{"age": 36})
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr), "error should be ValidationError type")
	require.Len(t, validationErr.Errors, 1)
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
	assert.Contains(t, validationErr.Error(), "validation failed")
}

func TestSchema_WrongType(t *testing.T) {
	s := MustCompile("person", personSchema)

	err := s.ValidateJSONString(`{"name": "Ada", "age": "old"}`)
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "age", validationErr.Errors[0].Field)
}

func TestSchema_MalformedDocument(t *testing.T) {
	s := MustCompile("person", personSchema)

	err := s.ValidateJSONString(`{"name": `)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load document")
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile("broken", `{"type": 12}`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "broken", loadErr.Path)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestMustCompile_Panics(t *testing.T) {
	assert.Panics(t, func() { MustCompile("broken", `not json`) })
}
