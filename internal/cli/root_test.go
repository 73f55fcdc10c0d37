package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/starlab-dev/starlab/internal/cli/app"
	"github.com/starlab-dev/starlab/internal/cli/commands"
	"github.com/starlab-dev/starlab/internal/config"
	"github.com/starlab-dev/starlab/internal/notify"
	"github.com/starlab-dev/starlab/internal/server"
	"github.com/starlab-dev/starlab/internal/session"
)

type harness struct {
	app       *app.App
	out       *bytes.Buffer
	recorder  *notify.Recorder
	persister *session.MemoryPersister
	apiURL    string
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	apiURL      string
	persister   *session.MemoryPersister
	interactive bool
	prompt      app.Prompter
}

func withAPIURL(url string) harnessOption {
	return func(c *harnessConfig) { c.apiURL = url }
}

func withPersister(p *session.MemoryPersister) harnessOption {
	return func(c *harnessConfig) { c.persister = p }
}

func withPrompt(answer string) harnessOption {
	return func(c *harnessConfig) {
		c.interactive = true
		c.prompt = func(string) (string, error) { return answer, nil }
	}
}

func testConfig(apiURL string) *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "starlab"},
		Client: config.ClientConfig{
			APIBase:        apiURL,
			SessionBackend: session.BackendMemory,
		},
		Server: config.ServerConfig{
			Port:         "8080",
			AllowOrigins: []string{"http://localhost:3000"},
			TokenSecret:  "test-secret",
		},
		Logging: config.LoggingConfig{Level: "info", Format: "console"},
	}
}

// newHarness runs the real API router behind httptest and builds an App
// against it with in-memory session storage
func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	hc := harnessConfig{}
	for _, opt := range opts {
		opt(&hc)
	}

	if hc.apiURL == "" {
		ts := httptest.NewServer(server.New(testConfig(""), zerolog.Nop(), "test").Handler())
		t.Cleanup(ts.Close)
		hc.apiURL = ts.URL
	}
	if hc.persister == nil {
		hc.persister = session.NewMemoryPersister()
	}

	out := &bytes.Buffer{}
	recorder := notify.NewRecorder()
	a, err := app.New(context.Background(), testConfig(hc.apiURL), app.Options{
		Persister:   hc.persister,
		Notifier:    recorder,
		Out:         out,
		Interactive: &hc.interactive,
		Prompt:      hc.prompt,
	})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	return &harness{app: a, out: out, recorder: recorder, persister: hc.persister, apiURL: hc.apiURL}
}

func (h *harness) run(args ...string) error {
	h.out.Reset()
	cmd := NewRootCmd(h.app, "1.2.3")
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func TestWelcomeAndVersion(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run())
	assert.Contains(t, h.out.String(), "Welcome to starlab")
	assert.Contains(t, h.out.String(), "Minimal · Modern · Ready to grow")

	require.NoError(t, h.run("version"))
	assert.Equal(t, "starlab version 1.2.3\n", h.out.String())
}

func TestDemoLogin(t *testing.T) {
	for _, args := range [][]string{{"login"}, {"login", "--demo"}} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			h := newHarness(t)

			require.NoError(t, h.run(args...))

			assert.Equal(t, "demo-token", h.app.Session.Token())
			assert.Equal(t, &commands.DemoUser, h.app.Session.User())
			assert.Contains(t, h.out.String(), "Signed in as Star Demo (demo@starlab.dev)")
			assert.Empty(t, h.recorder.Shown(), "demo login makes no request")
		})
	}
}

func TestLoginWithEmail(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("login", "--email", "ada@example.com", "--name", "Ada"))

	token := h.app.Session.Token()
	assert.Len(t, strings.Split(token, "."), 3, "server issues a JWT")
	user := h.app.Session.User()
	require.NotNil(t, user)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "Ada", user.Name)
	assert.Contains(t, h.out.String(), "Signed in as Ada (ada@example.com)")

	require.NoError(t, h.run("dashboard", "-o", "json"))
	var profile commands.Profile
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &profile))
	assert.Equal(t, commands.Profile{Name: "Ada", Email: "ada@example.com", ID: user.ID}, profile)
}

func TestLoginRejected(t *testing.T) {
	h := newHarness(t)

	err := h.run("login", "--email", "not-an-email")
	require.Error(t, err)
	assert.True(t, commands.IsReported(err))
	assert.False(t, h.app.Session.IsAuthenticated())

	shown := h.recorder.Shown()
	require.Len(t, shown, 1)
	assert.Equal(t, notify.SeverityWarning, shown[0].Severity)
	assert.Equal(t, "Bad Request: email must be a valid email address", shown[0].Message)
}

func TestInteractiveLogin(t *testing.T) {
	t.Run("blank answer logs in as demo", func(t *testing.T) {
		h := newHarness(t, withPrompt(""))

		require.NoError(t, h.run("login"))
		assert.Equal(t, "demo-token", h.app.Session.Token())
	})

	t.Run("email answer signs in through the API", func(t *testing.T) {
		h := newHarness(t, withPrompt("ada@example.com"))

		require.NoError(t, h.run("login"))
		assert.NotEqual(t, "demo-token", h.app.Session.Token())
		require.NotNil(t, h.app.Session.User())
		assert.Equal(t, "ada@example.com", h.app.Session.User().Email)
	})

	t.Run("prompt errors abort", func(t *testing.T) {
		h := newHarness(t)
		h.app.Interactive = true
		h.app.Prompt = func(string) (string, error) { return "", errors.New("prompt cancelled") }

		require.Error(t, h.run("login"))
		assert.False(t, h.app.Session.IsAuthenticated())
	})
}

func TestDashboardRequiresSession(t *testing.T) {
	h := newHarness(t)

	err := h.run("dashboard")
	require.ErrorIs(t, err, commands.ErrNotSignedIn)
	assert.False(t, commands.IsReported(err))
	assert.Empty(t, h.recorder.Shown())
}

func TestDashboard(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("login", "--demo"))

	t.Run("text", func(t *testing.T) {
		h.recorder.Reset()
		require.NoError(t, h.run("dashboard"))

		out := h.out.String()
		assert.Contains(t, out, "Profile")
		assert.Contains(t, out, "Star Demo")
		assert.Contains(t, out, "demo@starlab.dev")
		assert.Contains(t, out, "u_1")

		shown := h.recorder.Shown()
		require.Len(t, shown, 1)
		assert.Equal(t, notify.SeverityLoading, shown[0].Severity)
		assert.Equal(t, "Loading profile…", shown[0].Message)
		assert.Empty(t, h.recorder.Active(), "loading toast is dismissed once the profile arrives")
	})

	t.Run("yaml", func(t *testing.T) {
		require.NoError(t, h.run("dashboard", "-o", "yaml"))

		var profile commands.Profile
		require.NoError(t, yaml.Unmarshal(h.out.Bytes(), &profile))
		assert.Equal(t, commands.Profile{Name: "Star Demo", Email: "demo@starlab.dev", ID: "u_1"}, profile)
	})

	t.Run("unknown format", func(t *testing.T) {
		require.Error(t, h.run("dashboard", "-o", "xml"))
	})
}

func TestDashboardFallsBackToStoredUser(t *testing.T) {
	down := httptest.NewServer(nil)
	down.Close()
	h := newHarness(t, withAPIURL(down.URL))
	require.NoError(t, h.run("login", "--demo"))

	require.NoError(t, h.run("dashboard"))

	assert.Contains(t, h.out.String(), "Star Demo")
	assert.Contains(t, h.out.String(), "u_1")

	active := h.recorder.Active()
	require.Len(t, active, 1, "one failure notification, not one per layer")
	for _, n := range active {
		assert.Equal(t, notify.SeverityError, n.Severity)
	}
}

func TestHello(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("hello"))

	assert.Equal(t, "Hello from starlab\n", h.out.String())
	shown := h.recorder.Shown()
	require.Len(t, shown, 2)
	assert.Equal(t, notify.SeverityLoading, shown[0].Severity)
	assert.Equal(t, notify.SeveritySuccess, shown[1].Severity)
	assert.Equal(t, "Hello ✓", shown[1].Message)
	assert.Equal(t, shown[0].ID, shown[1].ID)
}

func TestBoom(t *testing.T) {
	h := newHarness(t)

	err := h.run("boom")
	require.Error(t, err)
	assert.True(t, commands.IsReported(err))

	shown := h.recorder.Shown()
	require.Len(t, shown, 2)
	assert.Equal(t, notify.Notification{ID: shown[0].ID, Severity: notify.SeverityLoading, Message: "Requesting…"}, shown[0])
	assert.Equal(t, notify.Notification{ID: shown[0].ID, Severity: notify.SeverityError, Message: "Server error, please try again later."}, shown[1])
}

func TestLogout(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("logout"))
	assert.Contains(t, h.out.String(), "Not signed in.")

	require.NoError(t, h.run("login", "--demo"))
	require.NoError(t, h.run("logout"))
	assert.Contains(t, h.out.String(), "Signed out")
	assert.False(t, h.app.Session.IsAuthenticated())
	assert.Nil(t, h.app.Session.User())
}

func TestStatus(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("status"))
	out := h.out.String()
	assert.Contains(t, out, "starlab")
	assert.Contains(t, out, h.apiURL)
	assert.Contains(t, out, "memory")
	assert.Regexp(t, `Signed in:\s+no`, out)

	require.NoError(t, h.run("login", "--demo"))
	require.NoError(t, h.run("status"))
	assert.Regexp(t, `Signed in:\s+yes, as Star Demo \(demo@starlab.dev\)`, h.out.String())
}

func TestSessionSurvivesRestart(t *testing.T) {
	persister := session.NewMemoryPersister()

	first := newHarness(t, withPersister(persister))
	require.NoError(t, first.run("login", "--demo"))
	require.NoError(t, first.app.Close())

	data, found, err := persister.Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, string(data), `"accessToken":"demo-token"`)

	second := newHarness(t, withAPIURL(first.apiURL), withPersister(persister))
	assert.Equal(t, "demo-token", second.app.Session.Token())
	require.NoError(t, second.run("dashboard"))
	assert.Contains(t, second.out.String(), "Star Demo")
}

// lockedBuffer is written by the polling goroutine and read by the test
type lockedBuffer struct {
	mutex sync.Mutex
	buf   bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.buf.String()
}

func TestDashboardWatchStopsOnLogout(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("login", "--demo"))

	out := &lockedBuffer{}
	h.app.Out = out
	cmd := NewRootCmd(h.app, "test")
	cmd.SetArgs([]string{"dashboard", "--watch", "1s"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "Star Demo") }, 5*time.Second, 10*time.Millisecond)

	// the first render happens before the session subscription
	h.app.Session.Logout()

	select {
	case err := <-done:
		require.ErrorIs(t, err, commands.ErrNotSignedIn)
	case <-time.After(5 * time.Second):
		t.Fatal("dashboard kept watching after logout")
	}
}

func TestDashboardWatchStopsOnCancel(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("login", "--demo"))
	h.app.Out = &lockedBuffer{}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	cmd := NewRootCmd(h.app, "test")
	cmd.SetArgs([]string{"dashboard", "--watch", "1s"})

	require.NoError(t, cmd.ExecuteContext(ctx))
}
