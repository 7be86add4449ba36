package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asad/wellhaven/internal/config"
	"github.com/asad/wellhaven/internal/logging"
)

func runCommand(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	out := runCommand(t, "version")
	assert.Equal(t, "wellhaven version "+Version+"\n", out)
}

func TestPackagesCommand(t *testing.T) {
	out := runCommand(t, "packages", "--category", "Basic", "--sort", "price-low", "--search", "")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	for _, line := range lines[1:] {
		assert.Contains(t, line, "Basic")
	}
}

func testConfig(t *testing.T, backend string) *config.Config {
	return &config.Config{
		Port:            0,
		DataDir:         t.TempDir(),
		EnabledServices: []string{"catalog", "auth", "cart", "bookings"},
		LogLevel:        "error",
		StorageBackend:  backend,
		KeyPrefix:       "wellhaven",
		PasswordScheme:  "plain",
		RateLimitBurst:  20,
		MetricsEnabled:  true,
	}
}

func TestBuildApp_ServesStorefront(t *testing.T) {
	a, err := buildApp(context.Background(), testConfig(t, "file"), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	srv := httptest.NewServer(a.handler)
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/cart/tab1/items", "application/json", strings.NewReader(`{"packageId":"1"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), "wellhaven_cart_mutations_total")
}

func TestBuildApp_SQLiteBackend(t *testing.T) {
	cfg := testConfig(t, "sqlite")
	cfg.SQLitePath = cfg.DataDir + "/wellhaven.db"

	a, err := buildApp(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	assert.NoError(t, a.Close())
}

func TestBuildApp_RejectsUnknownScheme(t *testing.T) {
	cfg := testConfig(t, "memory")
	cfg.PasswordScheme = "rot13"

	_, err := buildApp(context.Background(), cfg, logging.NewNop())
	assert.Error(t, err)
}
