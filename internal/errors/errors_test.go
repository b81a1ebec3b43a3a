package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPipelineError_Error_WithCause(t *testing.T) {
	cause := stderrors.New("no such package")
	err := WrapResolution(cause, "cannot resolve modspec")

	require.Equal(t, "resolution (error): cannot resolve modspec: no such package", err.Error())
	require.ErrorIs(t, err, cause)
}

func TestPipelineError_Error_WithoutCause(t *testing.T) {
	err := Render("unknown node kind")
	require.Equal(t, "render (error): unknown node kind", err.Error())
}

func TestPipelineError_WithContext(t *testing.T) {
	err := Transform("malformed reference").
		WithContext("document", "net/http").
		WithContext("offset", 42)

	require.Equal(t, "net/http", err.Context["document"])
	require.Equal(t, 42, err.Context["offset"])
}

func TestIsCategory(t *testing.T) {
	require.True(t, IsCategory(Resolution("x"), CategoryResolution))
	require.False(t, IsCategory(Resolution("x"), CategoryRender))
	require.False(t, IsCategory(stderrors.New("plain"), CategoryResolution))
}

func TestGetCategory(t *testing.T) {
	require.Equal(t, CategoryTransform, GetCategory(Transform("x")))
	require.Equal(t, CategoryInternal, GetCategory(fmt.Errorf("plain")))
}
