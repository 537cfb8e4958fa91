package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListEncoding(t *testing.T) {
	assert.Equal(t, "[]", string(marshalList(nil)))
	assert.Equal(t, `["a","b"]`, string(marshalList([]string{"a", "b"})))

	assert.Equal(t, []string{"a", "b"}, unmarshalList([]byte(`["a","b"]`)))
	assert.Equal(t, []string{}, unmarshalList(nil))
	assert.Equal(t, []string{}, unmarshalList([]byte("null")))
	assert.Equal(t, []string{}, unmarshalList([]byte("{broken")))
}

func TestNullLimit(t *testing.T) {
	assert.Nil(t, nullLimit(0))
	assert.Nil(t, nullLimit(-3))
	assert.Equal(t, 5, nullLimit(5))
}
