// Command reflow is a demo CLI driving the pagination engine end to end:
// open an EPUB, walk its pages, dump words/links for a location, or
// rasterize a page to a PNG file. Grounded on cmd/fbc/main.go's top-level
// urfave/cli/v3 App shape (global flags parsed in Before, graceful shutdown
// via signal.NotifyContext, errors returned from subcommands rather than
// calling cli.Exit) trimmed of the FB2-conversion-specific config/report
// machinery package engine has no use for.
package main

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"reflow/config"
	"reflow/engine"
	"reflow/style"
	"reflow/toc"
)

type envKey struct{}

type localEnv struct {
	log *zap.Logger
	eng *engine.Engine
}

func envFromContext(ctx context.Context) *localEnv {
	env, _ := ctx.Value(envKey{}).(*localEnv)
	if env == nil {
		panic("localenv not found in context")
	}
	return env
}

func contextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &localEnv{})
}

func prepareLogger(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	env := envFromContext(ctx)
	level := "normal"
	if cmd.Bool("debug") {
		level = "debug"
	}
	log, err := config.NewLogger(config.LoggerConfig{Level: level, Destination: cmd.String("log-file")})
	if err != nil {
		return ctx, fmt.Errorf("unable to prepare logging: %w", err)
	}
	env.log = log
	return ctx, nil
}

func destroyLogger(ctx context.Context, _ *cli.Command) error {
	env := envFromContext(ctx)
	if env.log != nil {
		_ = env.log.Sync()
	}
	if env.eng != nil {
		return env.eng.Close()
	}
	return nil
}

var errWasHandled bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := envFromContext(ctx)
	if env.log != nil {
		env.log.Error("command ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(contextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            "reflow",
		Usage:           "reflowable-ebook pagination engine demo",
		HideHelpCommand: true,
		Before:          prepareLogger,
		After:           destroyLogger,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "verbose logging"},
			&cli.StringFlag{Name: "log-file", Usage: "also log to `FILE`"},
		},
		Commands: []*cli.Command{
			infoCommand(),
			tocCommand(),
			pageCommand(),
			renderCommand(),
		},
	}

	var err error
	defer func() {
		stop()
		if err != nil {
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "reflow: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

// openBook opens the book at path under the current engine config, applying
// any --font-size/--margin/--align overrides common to every subcommand.
func openBook(ctx context.Context, cmd *cli.Command, path string) (*engine.Engine, error) {
	env := envFromContext(ctx)
	cfg := engine.DefaultConfig()
	if pt := cmd.Float64("font-size"); pt > 0 {
		cfg.FontSizePt = pt
	}
	if mm := cmd.Float64("margin"); mm > 0 {
		cfg.MarginMM = mm
	}
	if a := cmd.String("align"); a != "" {
		align, err := parseAlign(a)
		if err != nil {
			return nil, err
		}
		cfg.TextAlign = align
	}
	eng, err := engine.Open(path, cfg, nil, nil, env.log)
	if err != nil {
		return nil, fmt.Errorf("unable to open %q: %w", path, err)
	}
	env.eng = eng
	return eng, nil
}

func parseAlign(s string) (style.Align, error) {
	switch s {
	case "left":
		return style.AlignLeft, nil
	case "right":
		return style.AlignRight, nil
	case "center":
		return style.AlignCenter, nil
	case "justify":
		return style.AlignJustify, nil
	default:
		return 0, fmt.Errorf("unknown alignment %q (want left, right, center, justify)", s)
	}
}

func layoutFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{Name: "font-size", Usage: "body font size in points"},
		&cli.Float64Flag{Name: "margin", Usage: "uniform page margin in millimeters"},
		&cli.StringFlag{Name: "align", Usage: "text alignment: left, right, center, justify"},
	}
}

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "print book metadata and spine size",
		ArgsUsage: "EPUB",
		Flags:     layoutFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return fmt.Errorf("missing EPUB path")
			}
			eng, err := openBook(ctx, cmd, path)
			if err != nil {
				return err
			}
			w, h := eng.Dims()
			fmt.Printf("pages_count (bytes): %d\n", eng.PagesCount())
			fmt.Printf("dims: %dx%d px\n", w, h)
			for _, key := range []string{"title", "creator", "language"} {
				if v, ok := eng.Metadata(key); ok {
					fmt.Printf("%s: %s\n", key, v)
				}
			}
			return nil
		},
	}
}

func tocCommand() *cli.Command {
	return &cli.Command{
		Name:      "toc",
		Usage:     "dump the table of contents",
		ArgsUsage: "EPUB",
		Flags:     layoutFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return fmt.Errorf("missing EPUB path")
			}
			eng, err := openBook(ctx, cmd, path)
			if err != nil {
				return err
			}
			tree, ok := eng.TOC()
			if !ok {
				fmt.Println("(no table of contents)")
				return nil
			}
			var walk func(entries []*toc.Entry, depth int)
			walk = func(entries []*toc.Entry, depth int) {
				for _, e := range entries {
					fmt.Printf("%*s- %s (offset %d)\n", depth*2, "", e.Title, e.Offset)
					walk(e.Children, depth+1)
				}
			}
			walk(tree.Roots, 0)
			return nil
		},
	}
}

func pageCommand() *cli.Command {
	return &cli.Command{
		Name:      "page",
		Usage:     "dump the words and links on the page at an offset",
		ArgsUsage: "EPUB [OFFSET]",
		Flags:     layoutFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return fmt.Errorf("missing EPUB path")
			}
			offset, err := parseOffsetArg(cmd.Args().Get(1))
			if err != nil {
				return err
			}
			eng, err := openBook(ctx, cmd, path)
			if err != nil {
				return err
			}
			words, pageOff, err := eng.Words(engine.Exact(offset))
			if err != nil {
				return err
			}
			fmt.Printf("page offset: %d\n", pageOff)
			for _, w := range words {
				fmt.Printf("  %q @ (%.0f,%.0f)\n", w.Text, w.Rect.X, w.Rect.Y)
			}
			links, _, err := eng.Links(engine.Exact(offset))
			if err != nil {
				return err
			}
			for _, l := range links {
				fmt.Printf("  link -> %s @ (%.0f,%.0f)\n", l.Uri, l.Rect.X, l.Rect.Y)
			}
			return nil
		},
	}
}

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "rasterize the page at an offset to a PNG file",
		ArgsUsage: "EPUB OFFSET OUT.png",
		Flags:     layoutFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return fmt.Errorf("missing EPUB path")
			}
			offset, err := parseOffsetArg(cmd.Args().Get(1))
			if err != nil {
				return err
			}
			out := cmd.Args().Get(2)
			if out == "" {
				return fmt.Errorf("missing output PNG path")
			}
			eng, err := openBook(ctx, cmd, path)
			if err != nil {
				return err
			}
			fb, pageOff, warnings, err := eng.Pixmap(engine.Exact(offset))
			if err != nil {
				return err
			}
			env := envFromContext(ctx)
			for _, w := range warnings {
				env.log.Warn("image decode failed, continuing", zap.Int("offset", w.Offset), zap.String("path", w.Path), zap.Error(w.Err))
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("unable to create %q: %w", out, err)
			}
			defer f.Close()
			if err := png.Encode(f, fb.Img); err != nil {
				return fmt.Errorf("unable to encode PNG: %w", err)
			}
			fmt.Printf("rendered page at offset %d to %s\n", pageOff, out)
			return nil
		},
	}
}

func parseOffsetArg(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q: %w", s, err)
	}
	return n, nil
}
