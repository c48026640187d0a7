package loginform_test

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-loginform"
	"github.com/goliatone/go-loginform/pkg/definition"
	"github.com/goliatone/go-loginform/pkg/form"
	"github.com/goliatone/go-loginform/pkg/gateway"
	"github.com/goliatone/go-loginform/pkg/query"
	"github.com/goliatone/go-loginform/pkg/testsupport"
)

func mount(t *testing.T, gw form.Gateway, options ...loginform.Option) *loginform.Form {
	t.Helper()
	f, err := loginform.Mount(definition.Login(), gw, options...)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	t.Cleanup(f.Unmount)
	return f
}

func TestLogin_SubmitSucceeds(t *testing.T) {
	ctx := testsupport.Context(t)
	gw := testsupport.NewGateway()
	f := mount(t, gw)

	if err := f.Type(ctx, "Username", "a@b.com"); err != nil {
		t.Fatalf("type username: %v", err)
	}
	if err := f.Type(ctx, "Password", "x"); err != nil {
		t.Fatalf("type password: %v", err)
	}

	sub, started, err := f.Submit(ctx)
	if err != nil || !started {
		t.Fatalf("submit: started=%v err=%v", started, err)
	}

	received := gw.AwaitCall(t)
	if diff := cmp.Diff(map[string]string{"username": "a@b.com", "password": "x"}, received); diff != "" {
		t.Fatalf("gateway fields mismatch (-want +got):\n%s", diff)
	}

	screen, err := f.Screen(ctx)
	if err != nil {
		t.Fatalf("screen: %v", err)
	}
	submit, err := screen.Get(query.ByRole("button", query.Name("Submit")))
	if err != nil {
		t.Fatalf("submit control: %v", err)
	}
	if !submit.HasAttr("disabled") {
		t.Fatalf("submit control should be disabled while pending")
	}
	if alert, _ := screen.Query(query.ByRole("alert")); alert != nil {
		t.Fatalf("no result region expected while pending, got %s", alert)
	}

	gw.Resolve(t)
	testsupport.MustSettle(t, sub)

	alert, err := f.Find(ctx, query.ByRole("alert"))
	if err != nil {
		t.Fatalf("find alert: %v", err)
	}
	if alert.Text() != "Success" {
		t.Fatalf("alert text = %q", alert.Text())
	}
	if state := f.State(); state.Status != form.StatusSucceeded {
		t.Fatalf("status = %s", state.Status)
	}
}

func TestLogin_EmptySubmitIsRejected(t *testing.T) {
	ctx := testsupport.Context(t)
	f := mount(t, gateway.RequireFields(gateway.Resolve(), "username", "password"))

	sub, _, err := f.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	testsupport.MustSettle(t, sub)

	alert, err := f.Find(ctx, query.ByRole("alert"))
	if err != nil {
		t.Fatalf("find alert: %v", err)
	}
	if alert.Text() != "Required field missing" {
		t.Fatalf("alert text = %q", alert.Text())
	}

	want := map[string]string{"username": "", "password": ""}
	if diff := cmp.Diff(want, f.State().Fields); diff != "" {
		t.Fatalf("fields should stay empty (-want +got):\n%s", diff)
	}
	screen, err := f.Screen(ctx)
	if err != nil {
		t.Fatalf("screen: %v", err)
	}
	username, err := screen.Get(query.ByLabelText("Username"))
	if err != nil {
		t.Fatalf("username: %v", err)
	}
	if username.Value() != "" {
		t.Fatalf("username input should be empty, got %q", username.Value())
	}
}

func TestLogin_EditClearsResult(t *testing.T) {
	ctx := testsupport.Context(t)
	f := mount(t, gateway.Reject("Invalid credentials"))

	sub, _, err := f.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := testsupport.MustSettle(t, sub); got.Message != "Invalid credentials" {
		t.Fatalf("message = %q", got.Message)
	}

	if err := f.Type(ctx, "Username", "again@example.com"); err != nil {
		t.Fatalf("type: %v", err)
	}
	screen, err := f.Screen(ctx)
	if err != nil {
		t.Fatalf("screen: %v", err)
	}
	if alerts := screen.QueryAll(query.ByRole("alert")); len(alerts) != 0 {
		t.Fatalf("edit should clear the result region, got %v", alerts)
	}
	if _, err := screen.Get(query.ByDisplayValue("again@example.com")); err != nil {
		t.Fatalf("typed value not shown: %v", err)
	}
}

func TestLogin_DuplicateSubmitWhilePending(t *testing.T) {
	ctx := testsupport.Context(t)
	gw := testsupport.NewGateway()
	f := mount(t, gw)

	first, started, err := f.Submit(ctx)
	if err != nil || !started {
		t.Fatalf("first submit: started=%v err=%v", started, err)
	}
	gw.AwaitCall(t)

	second, started, err := f.Submit(ctx)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if started || second != first {
		t.Fatalf("duplicate submit should join the in-flight call")
	}

	gw.Reject(t, "Invalid credentials")
	testsupport.MustSettle(t, first)
	if gw.Calls() != 1 {
		t.Fatalf("expected one gateway call, got %d", gw.Calls())
	}
}

func TestType_UnknownLabel(t *testing.T) {
	f := mount(t, gateway.Resolve())
	err := f.Type(testsupport.Context(t), "Email", "x")
	if !errors.Is(err, query.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUnmount(t *testing.T) {
	ctx := testsupport.Context(t)
	f := mount(t, gateway.Resolve())
	f.Unmount()
	f.Unmount()

	if err := f.Type(ctx, "Username", "x"); !errors.Is(err, loginform.ErrUnmounted) {
		t.Fatalf("type after unmount: %v", err)
	}
	if _, _, err := f.Submit(ctx); !errors.Is(err, loginform.ErrUnmounted) {
		t.Fatalf("submit after unmount: %v", err)
	}
	if _, err := f.Render(ctx); !errors.Is(err, loginform.ErrUnmounted) {
		t.Fatalf("render after unmount: %v", err)
	}
}

func TestMount_InvalidDefinition(t *testing.T) {
	_, err := loginform.Mount(definition.Definition{}, gateway.Resolve())
	if !errors.Is(err, definition.ErrInvalidDefinition) {
		t.Fatalf("expected ErrInvalidDefinition, got %v", err)
	}
}

func TestMount_Observer(t *testing.T) {
	ctx := testsupport.Context(t)
	var (
		mu       sync.Mutex
		statuses []form.Status
	)
	f := mount(t, gateway.Resolve(), loginform.WithObserver(func(s form.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		statuses = append(statuses, s.Status)
	}))

	sub, _, err := f.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	testsupport.MustSettle(t, sub)

	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]form.Status{form.StatusPending, form.StatusSucceeded}, statuses); diff != "" {
		t.Fatalf("observed statuses mismatch (-want +got):\n%s", diff)
	}
}

type stubThemeSelector struct {
	selection *theme.Selection
	err       error
	calls     [][2]string
}

func (s *stubThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls = append(s.calls, [2]string{name, variant})
	return s.selection, s.err
}

func TestMount_ThemeSelector(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens:  map[string]string{"brand": "#123456"},
		Variants: map[string]theme.Variant{
			"dark": {Tokens: map[string]string{"brand": "#654321"}},
		},
	}
	selector := &stubThemeSelector{selection: &theme.Selection{Theme: "acme", Variant: "dark", Manifest: manifest}}

	f := mount(t, gateway.Resolve(), loginform.WithThemeSelector(selector, "acme", "dark"))
	if diff := cmp.Diff([][2]string{{"acme", "dark"}}, selector.calls); diff != "" {
		t.Fatalf("selector calls mismatch (-want +got):\n%s", diff)
	}

	screen, err := f.Screen(testsupport.Context(t))
	if err != nil {
		t.Fatalf("screen: %v", err)
	}
	root, err := screen.Get(query.ByTestID("loginform"))
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if style, _ := root.Attr("style"); style != "--brand: #654321" {
		t.Fatalf("style = %q", style)
	}

	failing := &stubThemeSelector{err: errors.New("unknown theme")}
	if _, err := loginform.Mount(definition.Login(), gateway.Resolve(), loginform.WithThemeSelector(failing, "nope", "")); err == nil {
		t.Fatalf("expected mount to fail when theme selection fails")
	}
}

func TestRenderPage(t *testing.T) {
	f := mount(t, gateway.Resolve(), loginform.WithRendererOptions())
	out, err := f.RenderPage(context.Background(), "Sign in")
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	if !strings.Contains(string(out), "<title>Sign in</title>") {
		t.Fatalf("page missing title:\n%s", out)
	}
	screen := testsupport.MustScreen(t, out)
	if _, err := screen.Get(query.ByRole("main")); err != nil {
		t.Fatalf("main landmark: %v", err)
	}
}

func TestEmbeddedFS(t *testing.T) {
	if _, err := fs.ReadFile(loginform.EmbeddedTemplates(), "templates/form.tmpl"); err != nil {
		t.Fatalf("form template: %v", err)
	}
	if _, err := fs.ReadFile(loginform.AssetsFS(), "loginform.css"); err != nil {
		t.Fatalf("stylesheet: %v", err)
	}
}
