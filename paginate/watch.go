package paginate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"pageflow/doc"
	"pageflow/docxml"
	"pageflow/flow"
	"pageflow/layout"
	"pageflow/state"
)

// Watch is the "watch" command: document is kept paginated while it is being
// edited by an external program, result is rewritten after every change.
func Watch(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("watch")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no document to watch has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}
	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}

	env.NoDirs, env.Overwrite = true, cmd.Bool("overwrite")
	setCodePage(env, cmd.String("codepage"), log)

	w, err := newWatcher(src, buildOutputPath(filepath.Base(src), dst, env), env, log)
	if err != nil {
		return err
	}
	return w.run(ctx)
}

// watcher owns live document and its engine. Source file is re-read on
// change and replaces document pages as a user edit.
type watcher struct {
	src, out string
	env      *state.LocalEnv
	log      *zap.Logger

	doc     *doc.Document
	extents *layout.Static
	m       layout.Measurer
	engine  *flow.Engine
	reload  *flow.Debouncer

	mu     sync.Mutex
	writes int
}

func newWatcher(src, out string, env *state.LocalEnv, log *zap.Logger) (*watcher, error) {
	if filepath.Clean(src) == filepath.Clean(out) {
		return nil, fmt.Errorf("output would overwrite watched document: %s", out)
	}
	if !env.Overwrite {
		if _, err := os.Stat(out); err == nil {
			return nil, fmt.Errorf("output file already exists: %s", out)
		}
	}

	parsed, err := readDocument(src, env.CodePage, log)
	if err != nil {
		return nil, err
	}

	w := &watcher{
		src:     src,
		out:     out,
		env:     env,
		log:     log,
		doc:     parsed.Doc,
		extents: parsed.Extents,
		m:       selectMeasurer(&env.Cfg.Layout.Measurement, parsed, log),
	}
	w.engine = flow.NewEngine(w.doc, w.m, env.Cfg, log, flow.WithReportHook(w.paginated))
	w.reload = flow.NewDebouncer(env.Cfg.Engine.Debounce, w.reloadNow)
	return w, nil
}

func readDocument(path string, fallback encoding.Encoding, log *zap.Logger) (*docxml.Parsed, error) {
	ok, enc, err := isDocumentFile(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("input was not recognized as paginated document (%s)", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	parsed, err := docxml.Read(selectReader(f, enc), fallback, log)
	if err != nil {
		return nil, fmt.Errorf("unable to read document (%s): %w", path, err)
	}
	return parsed, nil
}

// start paginates document once, writes result and begins reacting to
// document changes.
func (w *watcher) start(ctx context.Context) error {
	rep, err := w.engine.RunOnce(ctx)
	if err != nil {
		return err
	}
	w.paginated(rep, nil)
	w.env.Rpt.Store("result/"+filepath.Base(w.src), w.out)
	w.engine.Start(ctx)
	return nil
}

func (w *watcher) stop() {
	w.reload.Cancel()
	w.engine.Close()
}

func (w *watcher) run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to create file watcher: %w", err)
	}
	defer fsw.Close()

	// editors often replace file instead of writing into it, watch directory
	if err := fsw.Add(filepath.Dir(w.src)); err != nil {
		return fmt.Errorf("unable to watch %s: %w", w.src, err)
	}

	if err := w.start(ctx); err != nil {
		return err
	}
	defer w.stop()

	w.log.Info("Watching document", zap.String("source", w.src), zap.String("destination", w.out))
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Watching stopped", zap.Int("writes", w.written()))
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.src {
				continue
			}
			switch {
			case ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create):
				w.reload.Call()
			case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
				w.log.Warn("Watched document disappeared, waiting for it to come back", zap.String("file", w.src))
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("File watcher error", zap.Error(err))
		}
	}
}

// reloadNow re-reads source and replaces document pages with it. Headers and
// footers which differ from what document had are reported to the engine as
// edited, so they become synchronization reference.
func (w *watcher) reloadNow() {
	parsed, err := readDocument(w.src, w.env.CodePage, w.log)
	if err != nil {
		w.log.Warn("Unable to reload document, keeping previous state", zap.Error(err))
		return
	}

	var edited []flow.Focus
	w.doc.View(func(d *doc.Document) {
		edited = editedSections(d.Pages, parsed.Doc.Pages)
	})
	for _, f := range edited {
		w.engine.EditingSection(f.PageKey, f.Kind)
	}
	w.extents.Merge(parsed.Extents)

	pages := parsed.Doc.Pages
	_ = w.doc.Update(func(tx *doc.Tx) error {
		tx.ReplacePages(pages...)
		return nil
	})
	w.engine.Blur()
	w.env.Rpt.StoreData("source/"+filepath.Base(w.src), []byte(parsed.Doc.String()))
	w.log.Debug("Document reloaded", zap.Int("pages", len(pages)), zap.Int("edited", len(edited)))
}

// editedSections returns first header and first footer which content differs
// between old and new pages with the same key.
func editedSections(old, fresh []*doc.Page) []flow.Focus {
	byKey := make(map[string]*doc.Page, len(old))
	for _, p := range old {
		byKey[p.Key] = p
	}

	var res []flow.Focus
	for _, kind := range []doc.SectionKind{doc.SectionKindHeader, doc.SectionKindFooter} {
		for _, p := range fresh {
			prev, ok := byKey[p.Key]
			if !ok {
				continue
			}
			a, b := prev.Section(kind), p.Section(kind)
			if a == nil || b == nil {
				continue
			}
			sa, _ := flow.Export(a)
			sb, _ := flow.Export(b)
			if !sa.Equal(sb) {
				res = append(res, flow.Focus{PageKey: p.Key, Kind: kind})
				break
			}
		}
	}
	return res
}

// paginated writes result of every pipeline run which changed anything.
func (w *watcher) paginated(rep flow.Report, err error) {
	if err != nil {
		w.log.Debug("Pipeline run interrupted", zap.Error(err))
		return
	}
	if err := prepareOutput(w.out, true, w.log.WithOptions(zap.IncreaseLevel(zap.ErrorLevel))); err != nil {
		w.log.Error("Unable to prepare output", zap.String("file", w.out), zap.Error(err))
		return
	}
	if err := writeDocument(w.out, &docxml.Parsed{Doc: w.doc, Extents: w.extents}, w.m); err != nil {
		w.log.Error("Unable to write output", zap.String("file", w.out), zap.Error(err))
		return
	}

	w.mu.Lock()
	w.writes++
	n := w.writes
	w.mu.Unlock()
	w.log.Info("Document paginated", zap.String("to", w.out), zap.Int("write", n), zap.Object("report", rep))
}

func (w *watcher) written() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}
