package vanilla_test

import (
	"context"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-loginform/pkg/definition"
	"github.com/goliatone/go-loginform/pkg/form"
	"github.com/goliatone/go-loginform/pkg/query"
	"github.com/goliatone/go-loginform/pkg/renderers/vanilla"
)

func mustRenderer(t *testing.T, options ...vanilla.Option) *vanilla.Renderer {
	t.Helper()
	renderer, err := vanilla.New(options...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func renderScreen(t *testing.T, renderer *vanilla.Renderer, def definition.Definition, state form.Snapshot) (*query.Screen, string) {
	t.Helper()
	out, err := renderer.Render(context.Background(), def, state)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	screen, err := query.ParseBytes(out)
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	return screen, string(out)
}

func TestRender_IdleLogin(t *testing.T) {
	renderer := mustRenderer(t)
	screen, _ := renderScreen(t, renderer, definition.Login(), form.Snapshot{})

	root, err := screen.Get(query.ByTestID("loginform"))
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if class, _ := root.Attr("class"); class != "loginform loginform--idle" {
		t.Fatalf("unexpected form class %q", class)
	}

	for label, name := range map[string]string{"Username": "username", "Password": "password"} {
		input, err := screen.Get(query.ByLabelText(label))
		if err != nil {
			t.Fatalf("label %s: %v", label, err)
		}
		if got, _ := input.Attr("name"); got != name {
			t.Fatalf("label %s resolved to %q", label, got)
		}
		if !input.HasAttr("required") {
			t.Fatalf("input %s should be required", name)
		}
	}

	if _, err := screen.Get(query.ByPlaceholderText("Username or email")); err != nil {
		t.Fatalf("placeholder: %v", err)
	}
	if _, err := screen.Get(query.ByText("Sign in to your account")); err != nil {
		t.Fatalf("hint: %v", err)
	}
	if _, err := screen.Get(query.ByTitle("octopus title")); err != nil {
		t.Fatalf("image title: %v", err)
	}

	submit, err := screen.Get(query.ByRole("button", query.Name("Submit")))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submit.HasAttr("disabled") {
		t.Fatalf("idle submit must be enabled")
	}

	images, err := screen.GetAll(query.ByRole("img"))
	if err != nil {
		t.Fatalf("images: %v", err)
	}
	var alts []string
	for _, img := range images {
		alt, _ := img.Attr("alt")
		alts = append(alts, alt)
	}
	if diff := cmp.Diff([]string{"octopus", "alembic", "test tube"}, alts); diff != "" {
		t.Fatalf("image mismatch (-want +got):\n%s", diff)
	}

	if alert, err := screen.Query(query.ByRole("alert")); err != nil || alert != nil {
		t.Fatalf("idle form must not render an alert, got %v (err %v)", alert, err)
	}
}

func TestRender_ResultRegion(t *testing.T) {
	renderer := mustRenderer(t)

	cases := []struct {
		name    string
		state   form.Snapshot
		message string
	}{
		{name: "succeeded", state: form.Snapshot{Status: form.StatusSucceeded, Message: form.SuccessMessage}, message: "Success"},
		{name: "failed", state: form.Snapshot{Status: form.StatusFailed, Message: "Invalid credentials"}, message: "Invalid credentials"},
		{name: "idle ignores stray message", state: form.Snapshot{Status: form.StatusIdle, Message: "stale"}},
		{name: "pending ignores stray message", state: form.Snapshot{Status: form.StatusPending, Message: "stale"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			screen, _ := renderScreen(t, renderer, definition.Login(), tc.state)
			alerts := screen.QueryAll(query.ByRole("alert"))
			if tc.message == "" {
				if len(alerts) != 0 {
					t.Fatalf("expected no alert, got %v", alerts)
				}
				return
			}
			if len(alerts) != 1 {
				t.Fatalf("expected one alert, got %d", len(alerts))
			}
			if got := alerts[0].Text(); got != tc.message {
				t.Fatalf("alert text = %q, want %q", got, tc.message)
			}
			wantClass := "loginform__alert loginform__alert--" + tc.state.Status.String()
			if class, _ := alerts[0].Attr("class"); class != wantClass {
				t.Fatalf("alert class = %q, want %q", class, wantClass)
			}
		})
	}
}

func TestRender_PendingDisablesSubmit(t *testing.T) {
	renderer := mustRenderer(t)
	screen, _ := renderScreen(t, renderer, definition.Login(), form.Snapshot{Status: form.StatusPending})

	submit, err := screen.Get(query.ByRole("button", query.Name("Submit")))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !submit.HasAttr("disabled") {
		t.Fatalf("pending submit must be disabled")
	}
	if busy, _ := submit.Attr("aria-busy"); busy != "true" {
		t.Fatalf("aria-busy = %q", busy)
	}
}

func TestRender_NeverEchoesPasswords(t *testing.T) {
	renderer := mustRenderer(t)
	state := form.Snapshot{Fields: map[string]string{
		"username": "user@example.com",
		"password": "hunter2",
	}}
	screen, raw := renderScreen(t, renderer, definition.Login(), state)

	if strings.Contains(raw, "hunter2") {
		t.Fatalf("password leaked into markup:\n%s", raw)
	}
	username, err := screen.Get(query.ByDisplayValue("user@example.com"))
	if err != nil {
		t.Fatalf("username value: %v", err)
	}
	if name, _ := username.Attr("name"); name != "username" {
		t.Fatalf("display value resolved to %q", name)
	}
}

func TestRender_EscapesUserContent(t *testing.T) {
	renderer := mustRenderer(t)
	def := definition.Login()
	def.Hint = `Use <strong>work</strong> email<script>alert(1)</script>`
	state := form.Snapshot{
		Fields:  map[string]string{"username": `"><script>x</script>`},
		Status:  form.StatusFailed,
		Message: "<b>nope</b>",
	}

	screen, raw := renderScreen(t, renderer, def, state)
	if strings.Contains(raw, "<script>") {
		t.Fatalf("script survived rendering:\n%s", raw)
	}
	if !strings.Contains(raw, "<strong>work</strong>") {
		t.Fatalf("inline hint formatting was stripped:\n%s", raw)
	}
	alert, err := screen.Get(query.ByRole("alert"))
	if err != nil {
		t.Fatalf("alert: %v", err)
	}
	if got := alert.Text(); got != "<b>nope</b>" {
		t.Fatalf("message should render as text, got %q", got)
	}
	if _, err := screen.Get(query.ByDisplayValue(`"><script>x</script>`)); err != nil {
		t.Fatalf("escaped username value: %v", err)
	}
}

func TestRender_SubmitLabel(t *testing.T) {
	renderer := mustRenderer(t)
	def := definition.Login()
	def.SubmitLabel = "Sign in"

	screen, _ := renderScreen(t, renderer, def, form.Snapshot{})
	if _, err := screen.Get(query.ByRole("button", query.Name("Sign in"))); err != nil {
		t.Fatalf("labelled submit: %v", err)
	}
}

func TestRender_ThemeTokens(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand":   "#123456",
			"radius":  "4px",
			"bad;key": "red",
			"inject":  "red; background: url(x)",
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{"brand": "#654321"},
			},
		},
	}

	cases := []struct {
		variant string
		want    string
	}{
		{variant: "", want: "--brand: #123456; --radius: 4px"},
		{variant: "dark", want: "--brand: #654321; --radius: 4px"},
		{variant: "missing", want: "--brand: #123456; --radius: 4px"},
	}
	for _, tc := range cases {
		renderer := mustRenderer(t, vanilla.WithTheme(manifest, tc.variant))
		screen, _ := renderScreen(t, renderer, definition.Login(), form.Snapshot{})
		root, err := screen.Get(query.ByTestID("loginform"))
		if err != nil {
			t.Fatalf("form: %v", err)
		}
		if style, _ := root.Attr("style"); style != tc.want {
			t.Fatalf("variant %q: style = %q, want %q", tc.variant, style, tc.want)
		}
	}

	plain := mustRenderer(t)
	screen, _ := renderScreen(t, plain, definition.Login(), form.Snapshot{})
	root, _ := screen.Get(query.ByTestID("loginform"))
	if root.HasAttr("style") {
		t.Fatalf("unthemed form should not carry a style attribute")
	}
}

func TestRenderPage(t *testing.T) {
	renderer := mustRenderer(t, vanilla.WithDefaultStyles())
	out, err := renderer.RenderPage(context.Background(), "Sign in", definition.Login(), form.Snapshot{Status: form.StatusSucceeded, Message: form.SuccessMessage})
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	raw := string(out)
	for _, want := range []string{"<!DOCTYPE html>", "<title>Sign in</title>", ".loginform", `data-testid="loginform"`} {
		if !strings.Contains(raw, want) {
			t.Fatalf("page missing %q:\n%s", want, raw)
		}
	}

	screen, err := query.ParseBytes(out)
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	if _, err := screen.Get(query.ByRole("main")); err != nil {
		t.Fatalf("main landmark: %v", err)
	}
	if alert, err := screen.Get(query.ByRole("alert")); err != nil || alert.Text() != "Success" {
		t.Fatalf("alert: %v (err %v)", alert, err)
	}
}

func TestRender_CustomTemplates(t *testing.T) {
	files := fstest.MapFS{
		vanilla.FormTemplate: {Data: []byte(`<form data-testid="{{ form.id }}">{% for field in fields %}<input name="{{ field.name }}" aria-label="{{ field.label }}">{% endfor %}</form>`)},
		vanilla.PageTemplate: {Data: []byte(`{{ body|safe }}`)},
	}
	renderer := mustRenderer(t, vanilla.WithTemplatesFS(files))

	screen, _ := renderScreen(t, renderer, definition.Login(), form.Snapshot{})
	if _, err := screen.Get(query.ByLabelText("Password")); err != nil {
		t.Fatalf("custom template field: %v", err)
	}
	if images := screen.QueryAll(query.ByRole("img")); len(images) != 0 {
		t.Fatalf("custom template should not render images, got %d", len(images))
	}
}

func TestNew_MissingTemplates(t *testing.T) {
	if _, err := vanilla.New(vanilla.WithTemplatesFS(fstest.MapFS{})); err == nil {
		t.Fatalf("expected error for empty template bundle")
	}
}

func TestRender_CancelledContext(t *testing.T) {
	renderer := mustRenderer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := renderer.Render(ctx, definition.Login(), form.Snapshot{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestAssetsFS(t *testing.T) {
	css, err := fs.ReadFile(vanilla.AssetsFS(), vanilla.StylesheetName)
	if err != nil {
		t.Fatalf("read stylesheet: %v", err)
	}
	if !strings.Contains(string(css), ".loginform__alert") {
		t.Fatalf("stylesheet does not style the alert region")
	}
}
