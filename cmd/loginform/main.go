package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-loginform"
	"github.com/goliatone/go-loginform/pkg/definition"
	"github.com/goliatone/go-loginform/pkg/form"
	"github.com/goliatone/go-loginform/pkg/gateway"
	"github.com/goliatone/go-loginform/pkg/renderers/tui"
	"github.com/goliatone/go-loginform/pkg/renderers/vanilla"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

type options struct {
	definition string
	openapi    string
	operation  string
	renderer   string
	endpoint   string
	fail       string
	latency    time.Duration
	require    bool
	values     fieldValues
	output     string
	format     string
	theme      string
	variant    string
	templates  string
	verbosity  int
}

// fieldValues collects repeated -set name=value flags in order.
type fieldValues [][2]string

func (v *fieldValues) String() string {
	parts := make([]string, 0, len(*v))
	for _, kv := range *v {
		parts = append(parts, kv[0]+"="+kv[1])
	}
	return strings.Join(parts, ",")
}

func (v *fieldValues) Set(raw string) error {
	name, value, ok := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", raw)
	}
	*v = append(*v, [2]string{name, value})
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	zl := newZapLogger(stderr, opts.verbosity)
	defer func() { _ = zl.Sync() }()
	log := zapr.NewLogger(zl).WithName("loginform")

	if err := execute(ctx, opts, log, stdout); err != nil {
		if errors.Is(err, errSubmissionFailed) {
			return exitFailed
		}
		log.Error(err, "loginform failed")
		return exitFailed
	}
	return exitOK
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("loginform", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.definition, "definition", "", "form definition file (YAML or JSON); the built-in login form when empty")
	fs.StringVar(&opts.openapi, "openapi", "", "OpenAPI document to derive the form from")
	fs.StringVar(&opts.operation, "operation", "createSession", "operation ID used with -openapi")
	fs.StringVar(&opts.renderer, "renderer", "html", "surface to drive: html or tui")
	fs.StringVar(&opts.endpoint, "endpoint", "", "post submissions to this http(s) endpoint")
	fs.StringVar(&opts.fail, "fail", "", "reject every submission with this reason")
	fs.DurationVar(&opts.latency, "latency", 0, "simulated gateway latency")
	fs.BoolVar(&opts.require, "require", false, "reject submissions with blank required fields")
	fs.Var(&opts.values, "set", "field value as name=value (repeatable, html renderer)")
	fs.StringVar(&opts.output, "output", "", "output file (stdout if empty)")
	fs.StringVar(&opts.format, "format", string(tui.OutputFormatPrettyText), "tui result format: json, form or pretty")
	fs.StringVar(&opts.theme, "theme", "", "theme manifest (YAML) whose tokens style the html form")
	fs.StringVar(&opts.variant, "variant", "", "theme variant")
	fs.StringVar(&opts.templates, "templates", "", "directory containing templates/form.tmpl and templates/page.tmpl overrides")
	fs.IntVar(&opts.verbosity, "v", 0, "log verbosity")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	switch {
	case opts.renderer != "html" && opts.renderer != "tui":
		err := fmt.Errorf("unknown renderer %q", opts.renderer)
		fmt.Fprintln(stderr, err)
		return options{}, err
	case opts.definition != "" && opts.openapi != "":
		err := errors.New("-definition and -openapi are mutually exclusive")
		fmt.Fprintln(stderr, err)
		return options{}, err
	case opts.endpoint != "" && opts.fail != "":
		err := errors.New("-endpoint and -fail are mutually exclusive")
		fmt.Fprintln(stderr, err)
		return options{}, err
	}
	return opts, nil
}

func newZapLogger(w io.Writer, verbosity int) *zap.Logger {
	if verbosity < 0 {
		verbosity = 0
	}
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	// zapr maps logr V(n) onto zap level -n.
	level := zap.NewAtomicLevelAt(zapcore.Level(-verbosity))
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(w), level))
}

var errSubmissionFailed = errors.New("submission failed")

func execute(ctx context.Context, opts options, log logr.Logger, stdout io.Writer) error {
	def, err := loadDefinition(ctx, opts)
	if err != nil {
		return err
	}
	gw, err := buildGateway(opts, def, log)
	if err != nil {
		return err
	}

	var state form.Snapshot
	var payload []byte
	switch opts.renderer {
	case "tui":
		state, payload, err = runTUI(ctx, opts, def, gw, log)
	default:
		state, payload, err = runHTML(ctx, opts, def, gw, log)
	}
	if err != nil {
		return err
	}

	if err := writeOutput(opts.output, payload, stdout); err != nil {
		return err
	}
	if state.Status == form.StatusFailed {
		log.V(1).Info("submission failed", "reason", state.Message)
		return errSubmissionFailed
	}
	return nil
}

func loadDefinition(ctx context.Context, opts options) (definition.Definition, error) {
	switch {
	case opts.openapi != "":
		data, err := os.ReadFile(opts.openapi)
		if err != nil {
			return definition.Definition{}, fmt.Errorf("read openapi document: %w", err)
		}
		return definition.FromOpenAPI(ctx, data, opts.operation)
	case opts.definition != "":
		return definition.LoadFile(opts.definition)
	default:
		return definition.Login(), nil
	}
}

func buildGateway(opts options, def definition.Definition, log logr.Logger) (form.Gateway, error) {
	var gw form.Gateway
	switch {
	case opts.endpoint != "":
		httpGateway, err := gateway.NewHTTP(opts.endpoint, gateway.WithLogger(log.WithName("gateway")))
		if err != nil {
			return nil, err
		}
		gw = httpGateway
	case opts.fail != "":
		gw = gateway.Reject(opts.fail)
	default:
		gw = gateway.Resolve()
	}
	if opts.require {
		gw = gateway.RequireFields(gw, def.RequiredFields()...)
	}
	if opts.latency > 0 {
		gw = gateway.Delay(opts.latency, gw)
	}
	return gw, nil
}

func runHTML(ctx context.Context, opts options, def definition.Definition, gw form.Gateway, log logr.Logger) (form.Snapshot, []byte, error) {
	rendererOptions := []vanilla.Option{vanilla.WithDefaultStyles()}
	if opts.theme != "" {
		manifest, err := loadTheme(opts.theme)
		if err != nil {
			return form.Snapshot{}, nil, err
		}
		rendererOptions = append(rendererOptions, vanilla.WithTheme(manifest, opts.variant))
	}
	if opts.templates != "" {
		rendererOptions = append(rendererOptions, vanilla.WithTemplatesDir(opts.templates))
	}

	f, err := loginform.Mount(def, gw,
		loginform.WithLogger(log),
		loginform.WithRendererOptions(rendererOptions...),
	)
	if err != nil {
		return form.Snapshot{}, nil, err
	}
	defer f.Unmount()

	for _, kv := range opts.values {
		if _, ok := def.Field(kv[0]); !ok {
			return form.Snapshot{}, nil, fmt.Errorf("unknown field %q", kv[0])
		}
		f.Model().SetField(kv[0], kv[1])
	}

	sub, _, err := f.Submit(ctx)
	if err != nil {
		return form.Snapshot{}, nil, err
	}
	state, err := sub.Wait(ctx)
	if err != nil {
		return form.Snapshot{}, nil, err
	}

	title := def.Hint
	if title == "" {
		title = "Sign in"
	}
	page, err := f.RenderPage(ctx, title)
	if err != nil {
		return form.Snapshot{}, nil, err
	}
	return state, page, nil
}

func runTUI(ctx context.Context, opts options, def definition.Definition, gw form.Gateway, log logr.Logger) (form.Snapshot, []byte, error) {
	renderer, err := tui.New(
		tui.WithLogger(log.WithName("tui")),
		tui.WithStdio(terminal.Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}),
		tui.WithOutputFormat(tui.OutputFormat(opts.format)),
		tui.WithTheme(tui.Theme{InfoPrefix: "✔ ", ErrorPrefix: "✖ "}),
	)
	if err != nil {
		return form.Snapshot{}, nil, err
	}

	model := form.New(gw,
		form.WithLogger(log.WithName("model")),
		form.WithFields(def.FieldNames()...),
	)
	state, err := renderer.Run(ctx, def, model)
	if err != nil {
		return form.Snapshot{}, nil, err
	}
	if opts.output == "" {
		return state, nil, nil
	}
	payload, err := renderer.Result(def, state)
	if err != nil {
		return form.Snapshot{}, nil, err
	}
	return state, payload, nil
}

// themeFile is the on-disk shape of a theme manifest.
type themeFile struct {
	Name     string            `yaml:"name"`
	Version  string            `yaml:"version"`
	Tokens   map[string]string `yaml:"tokens"`
	Variants map[string]struct {
		Tokens map[string]string `yaml:"tokens"`
	} `yaml:"variants"`
}

func loadTheme(path string) (*theme.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theme: %w", err)
	}
	var file themeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse theme %s: %w", path, err)
	}

	manifest := &theme.Manifest{
		Name:     file.Name,
		Version:  file.Version,
		Tokens:   file.Tokens,
		Variants: make(map[string]theme.Variant, len(file.Variants)),
	}
	for name, variant := range file.Variants {
		manifest.Variants[name] = theme.Variant{Tokens: variant.Tokens}
	}
	if err := theme.NewRegistry().Register(manifest); err != nil {
		return nil, fmt.Errorf("register theme %s: %w", path, err)
	}
	return manifest, nil
}

func writeOutput(path string, payload []byte, stdout io.Writer) error {
	if len(payload) == 0 {
		return nil
	}
	if path == "" {
		_, err := stdout.Write(payload)
		return err
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
