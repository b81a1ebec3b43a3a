// Package pipeline drives one documentation build: it assembles the shared
// Root, routes module specifiers to loaders (or, for reserved `$$` names,
// to the renderer), runs the preprocessor chain in configured order, and
// hands the finished tree to the renderer.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docpipe/internal/config"
	"git.home.luguber.info/inful/docpipe/internal/doctree"
	"git.home.luguber.info/inful/docpipe/internal/errors"
	"git.home.luguber.info/inful/docpipe/internal/logfields"
	"git.home.luguber.info/inful/docpipe/internal/metrics"
	"git.home.luguber.info/inful/docpipe/internal/plugin"
)

// Stage names used in logs, metrics and events.
const (
	StageLoad       = "load"
	StagePreprocess = "preprocess"
	StageRender     = "render"
)

// loaderBinding ties one loader instance to the modspecs it is configured
// to load.
type loaderBinding struct {
	name     string
	loader   plugin.Loader
	modspecs []string
}

// preBinding keeps the configured name next to the instance for logging.
type preBinding struct {
	name string
	pre  plugin.Preprocessor
}

// Pipeline is a fully assembled build pipeline.
type Pipeline struct {
	loaders      []loaderBinding
	pres         []preBinding
	renderer     plugin.Renderer
	rendererDocs []string

	recorder metrics.Recorder
	events   EventSink
}

// Report summarizes a completed build.
type Report struct {
	BuildID   string
	Documents []string
	Duration  time.Duration
}

// New instantiates the configured plugins and assembles a pipeline.
// Reserved `$$` names found in the module lists are split off and routed to
// the renderer instead of any loader.
func New(loaders []config.Loader, reg *plugin.Registry, pres []config.PluginRef, renderer config.PluginRef) (*Pipeline, error) {
	p := &Pipeline{
		recorder: metrics.NoopRecorder{},
		events:   NoopSink{},
	}

	for _, lc := range loaders {
		instance, err := reg.NewLoader(lc.Name, plugin.Options(lc.Options))
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "failed to instantiate loader")
		}
		binding := loaderBinding{name: lc.Name, loader: instance}
		for _, spec := range lc.Modules {
			if plugin.IsRendererDocument(spec) {
				p.rendererDocs = append(p.rendererDocs, spec)
				continue
			}
			binding.modspecs = append(binding.modspecs, spec)
		}
		p.loaders = append(p.loaders, binding)
	}

	for _, pc := range pres {
		instance, err := reg.NewPreprocessor(pc.Name, plugin.Options(pc.Options))
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "failed to instantiate preprocessor")
		}
		p.pres = append(p.pres, preBinding{name: pc.Name, pre: instance})
	}

	instance, err := reg.NewRenderer(renderer.Name, plugin.Options(renderer.Options))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "failed to instantiate renderer")
	}
	p.renderer = instance
	return p, nil
}

// FromConfig assembles a pipeline from a loaded configuration and a plugin
// registry.
func FromConfig(cfg *config.Config, reg *plugin.Registry) (*Pipeline, error) {
	return New(cfg.Loaders, reg, cfg.Preprocessors, cfg.Renderer)
}

// WithRecorder injects a metrics recorder (fluent helper).
func (p *Pipeline) WithRecorder(r metrics.Recorder) *Pipeline {
	p.recorder = r
	return p
}

// WithEventSink injects a build event sink (fluent helper).
func (p *Pipeline) WithEventSink(s EventSink) *Pipeline {
	p.events = s
	return p
}

// Run executes one full build and renders into outDir.
func (p *Pipeline) Run(ctx context.Context, outDir string) (*Report, error) {
	buildID := uuid.NewString()
	start := time.Now()
	slog.Info("Starting build", logfields.BuildID(buildID))
	p.publish(ctx, buildID, EventBuildStarted, nil)

	root, err := p.assemble(ctx, buildID)
	if err != nil {
		return nil, p.fail(ctx, buildID, err)
	}

	renderStart := time.Now()
	if err := p.renderer.Render(outDir, root); err != nil {
		return nil, p.fail(ctx, buildID, err)
	}
	p.finishStage(ctx, buildID, StageRender, renderStart)

	docs := root.Documents()
	report := &Report{BuildID: buildID, Duration: time.Since(start)}
	for _, d := range docs {
		report.Documents = append(report.Documents, d.Data)
	}

	p.recorder.ObserveBuildDuration(report.Duration)
	p.recorder.AddDocumentsRendered(len(docs))
	p.recorder.IncBuildOutcome(metrics.OutcomeSuccess)
	p.publish(ctx, buildID, EventBuildCompleted, map[string]string{
		"documents": fmt.Sprintf("%d", len(docs)),
	})
	slog.Info("Build completed",
		logfields.BuildID(buildID),
		logfields.Count(len(docs)),
		logfields.DurationMS(float64(report.Duration.Milliseconds())))
	return report, nil
}

// RenderPlain loads and preprocesses as usual, then renders the single
// named document to w instead of producing a directory.
func (p *Pipeline) RenderPlain(ctx context.Context, w io.Writer, docName string) error {
	buildID := uuid.NewString()
	root, err := p.assemble(ctx, buildID)
	if err != nil {
		return err
	}
	doc := root.DocumentByName(docName)
	if doc == nil {
		return errors.Resolution(fmt.Sprintf("document %q is not part of this pipeline", docName))
	}
	return p.renderer.RenderDocument(w, doc)
}

// assemble runs the load and preprocess stages and appends renderer-owned
// documents, returning the finished Root. The Root object created here
// keeps its identity through every stage; preprocessors mutate its
// contents only.
func (p *Pipeline) assemble(ctx context.Context, buildID string) (*doctree.Node, error) {
	root := doctree.NewRoot()

	loadStart := time.Now()
	for _, binding := range p.loaders {
		for _, spec := range binding.modspecs {
			parsed := plugin.ParseModSpec(spec)
			doc := doctree.NewDocument(parsed.Name)
			root.AppendChild(doc)
			slog.Debug("Loading document",
				logfields.BuildID(buildID),
				logfields.Plugin(binding.name),
				logfields.ModSpec(spec))
			if err := binding.loader.LoadDocument(spec, doc); err != nil {
				return nil, err
			}
		}
	}
	p.finishStage(ctx, buildID, StageLoad, loadStart)

	preStart := time.Now()
	for _, binding := range p.pres {
		slog.Debug("Running preprocessor",
			logfields.BuildID(buildID),
			logfields.Plugin(binding.name))
		if err := binding.pre.Preprocess(root); err != nil {
			return nil, err
		}
	}
	p.finishStage(ctx, buildID, StagePreprocess, preStart)

	// Renderer documents are synthesized last so they can see the final
	// shape of every loaded document. They are never routed to a loader.
	for _, name := range p.rendererDocs {
		doc := doctree.NewDocument(name)
		root.AppendChild(doc)
		if err := p.renderer.LoadRendererDocument(root, name, doc); err != nil {
			return nil, err
		}
	}

	return root, nil
}

func (p *Pipeline) finishStage(ctx context.Context, buildID, stage string, start time.Time) {
	d := time.Since(start)
	p.recorder.ObserveStageDuration(stage, d)
	p.publish(ctx, buildID, EventStageCompleted, map[string]string{"stage": stage})
	slog.Debug("Stage completed",
		logfields.BuildID(buildID),
		logfields.Stage(stage),
		logfields.DurationMS(float64(d.Milliseconds())))
}

func (p *Pipeline) fail(ctx context.Context, buildID string, err error) error {
	p.recorder.IncBuildOutcome(metrics.OutcomeFailed)
	p.publish(ctx, buildID, EventBuildFailed, map[string]string{
		"category": string(errors.GetCategory(err)),
		"error":    err.Error(),
	})
	slog.Error("Build failed", logfields.BuildID(buildID), logfields.Error(err))
	return err
}

// Close releases resources held by plugins. Loaders that keep state on
// disk (checkouts, caches) implement io.Closer alongside their role
// interface.
func (p *Pipeline) Close() error {
	var firstErr error
	for _, binding := range p.loaders {
		if closer, ok := binding.loader.(io.Closer); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (p *Pipeline) publish(ctx context.Context, buildID, eventType string, fields map[string]string) {
	event := Event{BuildID: buildID, Type: eventType, Timestamp: time.Now(), Fields: fields}
	if err := p.events.Publish(ctx, event); err != nil {
		slog.Warn("Failed to publish build event", logfields.Error(err))
	}
}
