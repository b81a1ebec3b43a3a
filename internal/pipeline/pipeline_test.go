package pipeline

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpipe/internal/config"
	"git.home.luguber.info/inful/docpipe/internal/doctree"
	"git.home.luguber.info/inful/docpipe/internal/plugin"
)

// fakeLoader records every modspec it is asked to load and writes a single
// text node so the output is observable downstream.
type fakeLoader struct {
	loaded *[]string
}

func (l *fakeLoader) LoadDocument(modspec string, doc *doctree.Node) error {
	*l.loaded = append(*l.loaded, modspec)
	doc.AppendChild(doctree.NewText("content of " + modspec))
	return nil
}

type markerPre struct{ marker string }

func (p *markerPre) Preprocess(root *doctree.Node) error {
	tp := plugin.NewTextPreprocessor(func(n *doctree.Node) error {
		n.Data += p.marker
		return nil
	})
	return tp.Preprocess(root)
}

// fakeRenderer writes one line per document and records synthetic document
// requests.
type fakeRenderer struct {
	rendered  *[]string
	synthetic *[]string
}

func (r *fakeRenderer) Render(dir string, root *doctree.Node) error {
	for _, d := range root.Documents() {
		*r.rendered = append(*r.rendered, d.Data)
	}
	return nil
}

func (r *fakeRenderer) RenderDocument(w io.Writer, doc *doctree.Node) error {
	var parts []string
	doc.Walk(func(n *doctree.Node) bool {
		if n.Kind == doctree.KindText {
			parts = append(parts, n.Data)
		}
		return true
	})
	_, err := w.Write([]byte(strings.Join(parts, "")))
	return err
}

func (r *fakeRenderer) LoadRendererDocument(root *doctree.Node, name string, doc *doctree.Node) error {
	*r.synthetic = append(*r.synthetic, name)
	doc.AppendChild(doctree.NewText("synthetic " + name))
	return nil
}

func testRegistry(t *testing.T, loaded, rendered, synthetic *[]string) *plugin.Registry {
	t.Helper()
	reg := plugin.NewRegistry()
	require.NoError(t, reg.RegisterLoader("fake", func(plugin.Options) (plugin.Loader, error) {
		return &fakeLoader{loaded: loaded}, nil
	}))
	require.NoError(t, reg.RegisterPreprocessor("append-x", func(plugin.Options) (plugin.Preprocessor, error) {
		return &markerPre{marker: "x"}, nil
	}))
	require.NoError(t, reg.RegisterPreprocessor("upper", func(plugin.Options) (plugin.Preprocessor, error) {
		return &upperPre{}, nil
	}))
	require.NoError(t, reg.RegisterRenderer("fake", func(plugin.Options) (plugin.Renderer, error) {
		return &fakeRenderer{rendered: rendered, synthetic: synthetic}, nil
	}))
	return reg
}

type upperPre struct{}

func (upperPre) Preprocess(root *doctree.Node) error {
	tp := plugin.NewTextPreprocessor(func(n *doctree.Node) error {
		n.Data = strings.ToUpper(n.Data)
		return nil
	})
	return tp.Preprocess(root)
}

func TestRun_RoutesRendererDocumentsToRendererNotLoader(t *testing.T) {
	var loaded, rendered, synthetic []string
	reg := testRegistry(t, &loaded, &rendered, &synthetic)

	p, err := New(
		[]config.Loader{{Name: "fake", Modules: []string{"pkg/a", "$$index", "pkg/b+"}}},
		reg, nil, config.PluginRef{Name: "fake"},
	)
	require.NoError(t, err)

	report, err := p.Run(context.Background(), t.TempDir())
	require.NoError(t, err)

	require.Equal(t, []string{"pkg/a", "pkg/b+"}, loaded)
	require.Equal(t, []string{"$$index"}, synthetic)
	require.Equal(t, []string{"pkg/a", "pkg/b", "$$index"}, report.Documents)
	require.NotEmpty(t, report.BuildID)
}

func TestRun_PreprocessorOrderPreserved(t *testing.T) {
	var loaded, rendered, synthetic []string
	reg := testRegistry(t, &loaded, &rendered, &synthetic)

	p, err := New(
		[]config.Loader{{Name: "fake", Modules: []string{"pkg/a"}}},
		reg,
		[]config.PluginRef{{Name: "append-x"}, {Name: "upper"}},
		config.PluginRef{Name: "fake"},
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, p.RenderPlain(context.Background(), &buf, "pkg/a"))
	require.Equal(t, "CONTENT OF PKG/AX", buf.String())

	// Reversed order leaves the marker lower-case.
	buf.Reset()
	p, err = New(
		[]config.Loader{{Name: "fake", Modules: []string{"pkg/a"}}},
		reg,
		[]config.PluginRef{{Name: "upper"}, {Name: "append-x"}},
		config.PluginRef{Name: "fake"},
	)
	require.NoError(t, err)
	require.NoError(t, p.RenderPlain(context.Background(), &buf, "pkg/a"))
	require.Equal(t, "CONTENT OF PKG/Ax", buf.String())
}

func TestRenderPlain_UnknownDocument(t *testing.T) {
	var loaded, rendered, synthetic []string
	reg := testRegistry(t, &loaded, &rendered, &synthetic)

	p, err := New(
		[]config.Loader{{Name: "fake", Modules: []string{"pkg/a"}}},
		reg, nil, config.PluginRef{Name: "fake"},
	)
	require.NoError(t, err)

	err = p.RenderPlain(context.Background(), &bytes.Buffer{}, "missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing")
}

// recordingSink captures every published event.
type recordingSink struct{ events []Event }

func (s *recordingSink) Publish(_ context.Context, e Event) error {
	s.events = append(s.events, e)
	return nil
}

func TestRun_EmitsLifecycleEvents(t *testing.T) {
	var loaded, rendered, synthetic []string
	reg := testRegistry(t, &loaded, &rendered, &synthetic)

	p, err := New(
		[]config.Loader{{Name: "fake", Modules: []string{"pkg/a"}}},
		reg, nil, config.PluginRef{Name: "fake"},
	)
	require.NoError(t, err)

	sink := &recordingSink{}
	p.WithEventSink(sink)

	report, err := p.Run(context.Background(), t.TempDir())
	require.NoError(t, err)

	var types []string
	for _, e := range sink.events {
		require.Equal(t, report.BuildID, e.BuildID)
		types = append(types, e.Type)
	}
	require.Equal(t, []string{
		EventBuildStarted,
		EventStageCompleted, // load
		EventStageCompleted, // preprocess
		EventStageCompleted, // render
		EventBuildCompleted,
	}, types)
}

func TestNew_UnknownPluginFails(t *testing.T) {
	var loaded, rendered, synthetic []string
	reg := testRegistry(t, &loaded, &rendered, &synthetic)

	_, err := New(
		[]config.Loader{{Name: "nope", Modules: []string{"pkg/a"}}},
		reg, nil, config.PluginRef{Name: "fake"},
	)
	require.Error(t, err)
}

func TestMultiSink_FansOut(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	sink := MultiSink{a, b}

	require.NoError(t, sink.Publish(context.Background(), Event{Type: EventBuildStarted}))
	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
}
