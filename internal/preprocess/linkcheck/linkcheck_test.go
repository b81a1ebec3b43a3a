package linkcheck

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpipe/internal/doctree"
	"git.home.luguber.info/inful/docpipe/internal/errors"
	"git.home.luguber.info/inful/docpipe/internal/plugin"
)

func buildRoot(text string) *doctree.Node {
	root := doctree.NewRoot()
	api := doctree.NewDocument("api")
	root.AppendChild(api)
	guide := doctree.NewDocument("guide")
	guide.AppendChild(doctree.NewText(text))
	root.AppendChild(guide)
	return root
}

func TestPreprocess_ValidInternalLink(t *testing.T) {
	root := buildRoot("See [the API](api.md#greet) and [guide](guide.md).")

	p, err := New(plugin.Options{"strict": true})
	require.NoError(t, err)
	require.NoError(t, p.Preprocess(root))
}

func TestPreprocess_ExternalAndAnchorLinksIgnored(t *testing.T) {
	root := buildRoot("See [docs](https://example.com/x.md), [top](#top), <https://example.com> and [mail](mailto:a@b.c).")

	p, err := New(plugin.Options{"strict": true})
	require.NoError(t, err)
	require.NoError(t, p.Preprocess(root))
}

func TestPreprocess_BrokenLinkStrict(t *testing.T) {
	root := buildRoot("See [missing](absent.md).")

	p, err := New(plugin.Options{"strict": true})
	require.NoError(t, err)

	err = p.Preprocess(root)
	require.Error(t, err)
	require.True(t, errors.IsCategory(err, errors.CategoryTransform))
}

func TestPreprocess_BrokenLinkWarnsByDefault(t *testing.T) {
	root := buildRoot("See [missing](absent.md).")
	before := root.Dump()

	p, err := New(nil)
	require.NoError(t, err)
	require.NoError(t, p.Preprocess(root))

	// Observation only: the tree is untouched.
	require.Equal(t, before, root.Dump())
}

func TestInternalTarget(t *testing.T) {
	require.True(t, internalTarget("api.md"))
	require.True(t, internalTarget("api.md#anchor"))
	require.False(t, internalTarget("https://example.com/api.md"))
	require.False(t, internalTarget("#anchor"))
	require.False(t, internalTarget("image.png"))
	require.False(t, internalTarget(""))
}
