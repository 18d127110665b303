// Package paginate implements command line processing: it locates documents
// in files, directories and archives, runs them through the flow engine and
// writes results.
package paginate

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"pageflow/archive"
	"pageflow/config"
	"pageflow/docxml"
	"pageflow/flow"
	"pageflow/layout"
	"pageflow/state"
)

// Run is the "reflow" command.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("reflow")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
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
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.NoDirs, env.Overwrite, env.DumpTree = cmd.Bool("nodirs"), cmd.Bool("overwrite"), cmd.Bool("dump")
	setCodePage(env, cmd.String("codepage"), log)

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, log)
}

// setCodePage selects encoding for documents which are not UTF-8 and do not
// declare encoding. Unknown names are ignored.
func setCodePage(env *state.LocalEnv, cp string, log *zap.Logger) {
	if len(cp) == 0 {
		return
	}
	enc, err := ianaindex.IANA.Encoding(cp)
	if err != nil || enc == nil {
		log.Warn("Unknown character set name, ignoring", zap.String("charset", cp), zap.Error(err))
		env.CodePage = nil
		return
	}
	env.CodePage = enc
	n, _ := ianaindex.IANA.Name(enc)
	log.Debug("Using code page for undeclared non UTF-8 documents", zap.String("charset", n))
}

// process determines the input type (directory, archive, or single file) and
// processes accordingly.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := processDir(ctx, head, dst, log); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		arc, err := isArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if arc {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := processArchive(ctx, head, filepath.ToSlash(tail), "", dst, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		ok, enc, err := isDocumentFile(head)
		if err != nil {
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if ok && len(tail) == 0 {
			if err := processFile(ctx, head, filepath.Base(head), enc, dst, log); err != nil {
				log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
			}
			break
		}
		return fmt.Errorf("input was not recognized as paginated document (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// processDir finds documents and archives under dir and processes them in
// natural order of their paths.
func processDir(ctx context.Context, dir, dst string, log *zap.Logger) error {
	var paths []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if info.Mode().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	sort.Sort(natural.StringSlice(paths))

	count := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))

		arc, err := isArchiveFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			continue
		}
		if arc {
			if err := processArchive(ctx, path, "", filepath.Dir(rel), dst, log); err != nil {
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			continue
		}

		ok, enc, err := isDocumentFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			continue
		}
		if !ok {
			log.Debug("Skipping file, not recognized as document or archive", zap.String("file", path))
			continue
		}
		count++
		if err := processFile(ctx, path, rel, enc, dst, log); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
	}
	if count == 0 {
		log.Debug("Nothing to process", zap.String("dir", dir))
	}
	return nil
}

// processArchive processes documents inside archive under "pathIn" in natural
// order of their names.
func processArchive(ctx context.Context, path, pathIn, pathOut, dst string, log *zap.Logger) error {
	count := 0
	err := archive.Walk(ctx, path, pathIn, state.EnvFromContext(ctx).CodePage, func(e archive.Entry) error {
		ok, _, err := isDocumentInArchive(e.File)
		if err != nil {
			log.Warn("Skipping file in archive", zap.String("archive", e.Archive), zap.String("path", e.Name), zap.Error(err))
			return nil
		}
		if !ok {
			log.Debug("Skipping file, not recognized as document", zap.String("archive", e.Archive), zap.String("file", e.Name))
			return nil
		}
		count++
		if err := processZipFile(ctx, e.File, filepath.Join(pathOut, filepath.FromSlash(e.Name)), dst, log); err != nil {
			log.Error("Unable to process file in archive", zap.String("archive", e.Archive), zap.String("file", e.Name), zap.Error(err))
		}
		return nil
	})
	if err != nil {
		return err
	}
	if count == 0 {
		log.Debug("Nothing to process", zap.String("archive", path))
	}
	return nil
}

func processFile(ctx context.Context, path, src string, enc srcEncoding, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)
	if err := env.Rpt.StoreCopy("source/"+filepath.ToSlash(src), path); err != nil {
		log.Debug("Unable to store source in report", zap.String("file", path), zap.Error(err))
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return processDocument(ctx, selectReader(file, enc), src, dst, log)
}

func processZipFile(ctx context.Context, f *zip.File, src, dst string, log *zap.Logger) error {
	_, enc, err := isDocumentInArchive(f)
	if err != nil {
		return err
	}
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	env := state.EnvFromContext(ctx)
	if env.Rpt != nil {
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		env.Rpt.StoreData("source/"+filepath.ToSlash(src), data)
		return processDocument(ctx, selectReader(bytes.NewReader(data), enc), src, dst, log)
	}
	return processDocument(ctx, selectReader(r, enc), src, dst, log)
}

// processDocument paginates single document. "src" is the path of the
// document relative to the processed source, including file name.
func processDocument(ctx context.Context, r io.Reader, src, dst string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var outputName string

	log.Info("Reflow starting", zap.String("from", src))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Reflow ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("reflow panic: %v", r)
		} else if rerr == nil {
			log.Info("Reflow completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	parsed, err := docxml.Read(r, env.CodePage, log)
	if err != nil {
		return fmt.Errorf("unable to read document (%s): %w", src, err)
	}

	m := selectMeasurer(&env.Cfg.Layout.Measurement, parsed, log)
	engine := flow.NewEngine(parsed.Doc, m, env.Cfg, log)
	defer engine.Close()

	rep, err := engine.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("unable to reflow document (%s): %w", src, err)
	}
	log.Debug("Pipeline run", zap.String("from", src), zap.Object("report", rep))
	if !rep.Reflow.Converged {
		log.Warn("Layout did not settle, some pages may still overflow", zap.String("from", src))
	}

	if env.DumpTree {
		if _, err := io.WriteString(os.Stdout, parsed.Doc.String()); err != nil {
			return fmt.Errorf("unable to dump document tree: %w", err)
		}
	}

	outputName = buildOutputPath(src, dst, env)
	if err := prepareOutput(outputName, env.Overwrite, log); err != nil {
		return err
	}
	if err := writeDocument(outputName, parsed, m); err != nil {
		return err
	}
	env.Rpt.Store("result/"+filepath.ToSlash(src), outputName)
	return nil
}

// selectMeasurer returns extents from the document itself in static mode,
// text based estimation otherwise.
func selectMeasurer(conf *config.MeasurementConfig, parsed *docxml.Parsed, log *zap.Logger) layout.Measurer {
	if conf.Mode == config.MeasureModeStatic {
		if parsed.Extents.Len() == 0 {
			log.Warn("Static measurement requested, but document has no extents, nothing will be moved")
		}
		return parsed.Extents
	}
	return conf.Estimator()
}

func prepareOutput(outputName string, overwrite bool, log *zap.Logger) error {
	if _, err := os.Stat(outputName); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		return os.Remove(outputName)
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}

func writeDocument(outputName string, parsed *docxml.Parsed, m layout.Measurer) (err error) {
	out, err := os.Create(outputName)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("unable to close output file: %w", cerr)
		}
	}()
	if err := docxml.Write(out, parsed.Doc, m); err != nil {
		return fmt.Errorf("unable to write document: %w", err)
	}
	return nil
}
