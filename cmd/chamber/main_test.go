package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig points the store into a temp dir and appends extra YAML.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	body := fmt.Sprintf("network: mainnet\nlog_level: error\nstore:\n  backend: file\n  path: %s\n%s",
		filepath.Join(dir, "store.yaml"), extra)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func runCLI(t *testing.T, cfg, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errw bytes.Buffer
	code := run(context.Background(), append([]string{"-config", cfg}, args...), strings.NewReader(stdin), &out, &errw)
	return code, out.String(), errw.String()
}

func TestConfigCommands(t *testing.T) {
	cfg := writeConfig(t, "")

	code, out, _ := runCLI(t, cfg, "", "config", "set", "-k", "network", "-v", "arbitrum")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "NETWORK saved")

	code, out, _ = runCLI(t, cfg, "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80\n", "config", "set", "-k", "PRIVATE_KEY")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "PRIVATE_KEY saved")

	code, out, _ = runCLI(t, cfg, "", "config", "get", "-k", "NETWORK")
	require.Equal(t, 0, code)
	assert.Equal(t, "arbitrum\n", out)

	code, out, _ = runCLI(t, cfg, "", "config", "show")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "NETWORK=arbitrum")
	assert.Contains(t, out, "PRIVATE_KEY=0xac…ff80")
	assert.NotContains(t, out, "bec39a17")

	code, _, _ = runCLI(t, cfg, "", "config", "delete", "-k", "NETWORK")
	require.Equal(t, 0, code)

	code, _, errOut := runCLI(t, cfg, "", "config", "get", "-k", "NETWORK")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "NETWORK")

	code, _, _ = runCLI(t, cfg, "", "config", "clear")
	require.Equal(t, 0, code)
	code, out, _ = runCLI(t, cfg, "", "config", "show")
	require.Equal(t, 0, code)
	assert.Empty(t, out)
}

func TestUsageErrors(t *testing.T) {
	cfg := writeConfig(t, "")

	cases := []struct {
		name string
		args []string
		code int
	}{
		{"no command", nil, 2},
		{"unknown command", []string{"frobnicate"}, 2},
		{"config without action", []string{"config"}, 2},
		{"config get without key", []string{"config", "get"}, 2},
		{"config unknown action", []string{"config", "rename"}, 2},
		{"bad flag", []string{"quote", "-x"}, 2},
		{"price without tickers", []string{"price"}, 2},
		{"help", []string{"help"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, _, _ := runCLI(t, cfg, "", tc.args...)
			assert.Equal(t, tc.code, code)
		})
	}
}

func TestQuote_MissingFlags(t *testing.T) {
	cfg := writeConfig(t, "")
	code, _, errOut := runCLI(t, cfg, "", "quote", "-s", "ETH")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "missing -b, -a")
}

func TestQuote_EndToEnd(t *testing.T) {
	zx := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		_, _ = io.WriteString(w, `{"buyAmount":"1834500000000000000000"}`)
	}))
	defer zx.Close()
	ps := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/prices", r.URL.Path)
		_, _ = io.WriteString(w, `{"priceRoute":{"destAmount":"1840000000000000000000"}}`)
	}))
	defer ps.Close()

	cfg := writeConfig(t, fmt.Sprintf(`sources:
  enabled: [0x, paraswap]
  zero_x:
    base_url: %s
  paraswap:
    base_url: %s
`, zx.URL, ps.URL))

	code, out, errOut := runCLI(t, cfg, "", "quote", "-s", "eth", "-b", "dai", "-a", "1")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "1 ETH -> DAI on mainnet")

	para := strings.Index(out, "paraswap")
	zerox := strings.Index(out, "0x ")
	require.NotEqual(t, -1, para)
	require.NotEqual(t, -1, zerox)
	assert.Less(t, para, zerox, "best quote is listed first")
	assert.Contains(t, out, "1840 DAI")
	assert.Contains(t, out, "1834.5 DAI")
}

func TestQuote_AllSourcesFail(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer bad.Close()

	cfg := writeConfig(t, fmt.Sprintf(`sources:
  enabled: [0x]
  zero_x:
    base_url: %s
`, bad.URL))

	code, _, errOut := runCLI(t, cfg, "", "quote", "-s", "ETH", "-b", "DAI", "-a", "1")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "error: quote:")
}

func TestPrice_Coinbase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/prices/ETH-USD/spot":
			_, _ = io.WriteString(w, `{"data":{"base":"ETH","currency":"USD","amount":"3000.12"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := writeConfig(t, fmt.Sprintf("price:\n  source: coinbase\n  coinbase_url: %s\n  requests_per_second: 100\n", srv.URL))

	code, out, errOut := runCLI(t, cfg, "", "price", "eth", "nope")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "ETH")
	assert.Contains(t, out, "$3000.12")
	assert.Contains(t, out, "NOPE")
	assert.Contains(t, out, "error:")
}

func TestSplitTickers(t *testing.T) {
	assert.Equal(t, []string{"ETH", "BTC", "SOL"}, splitTickers("eth, btc", []string{"sol,ETH"}))
	assert.Empty(t, splitTickers("", nil))
}

func TestBalance_NoAccount(t *testing.T) {
	cfg := writeConfig(t, "")
	code, _, errOut := runCLI(t, cfg, "", "balance")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "no account")
}

func TestMask(t *testing.T) {
	assert.Equal(t, "********", mask("short"))
	assert.Equal(t, "abcd…wxyz", mask("abcdefghwxyz"))
}

func TestQuote_UnknownNetwork(t *testing.T) {
	cfg := writeConfig(t, "")
	code, _, errOut := runCLI(t, cfg, "", "quote", "-s", "ETH", "-b", "DAI", "-a", "1", "-n", "solana")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unsupported network")
	assert.Contains(t, errOut, "supported: mainnet, bsc, polygon, arbitrum, localhost")
}
