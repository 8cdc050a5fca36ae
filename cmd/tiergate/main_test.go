package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crowelogic/tiergate/adapters/hasher"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags clears flag state left by a previous Execute.
func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tiergate.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestTiersCommand(t *testing.T) {
	out, err := run(t, "", "tiers", "--models")
	if err != nil {
		t.Fatalf("tiers error: %v", err)
	}
	for _, want := range []string{"freemium", "enterprise_plus", "unlimited", "$99.00", "free"} {
		if !strings.Contains(out, want) {
			t.Errorf("tiers output missing %q:\n%s", want, out)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "", "version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if !strings.Contains(out, "tiergate dev") {
		t.Errorf("version output = %q", out)
	}
}

func TestHashAdminKey(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"argument", "", []string{"hash-admin-key", "--cost", "4", "s3cret"}},
		{"stdin", "s3cret\n", []string{"hash-admin-key", "--cost", "4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("hash-admin-key error: %v", err)
			}
			hash := strings.TrimSpace(out)
			if !hasher.NewBcrypt(4).Compare([]byte(hash), "s3cret") {
				t.Errorf("hash %q does not match key", hash)
			}
		})
	}
}

func TestValidateCommand(t *testing.T) {
	path := writeConfig(t, "storage: {subscriptions: memory, usage: memory}\n")
	out, err := run(t, "", "validate", "--config", path, "--check-stores")
	if err != nil {
		t.Fatalf("validate error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Configuration is valid.") || !strings.Contains(out, "Stores reachable") {
		t.Errorf("validate output:\n%s", out)
	}

	bad := writeConfig(t, "backend: {kind: remote}\n")
	if _, err := run(t, "", "validate", "--config", bad, "--check-stores=false"); err == nil {
		t.Error("validate should fail for remote backend without url")
	}

	missing := filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := run(t, "", "validate", "--config", missing); err == nil {
		t.Error("validate should fail for missing file")
	}
}

func TestSubscriptionsAndUsageCommands(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "tiergate.db")
	path := writeConfig(t, "storage:\n  dsn: \""+dsn+"\"\n")

	out, err := run(t, "", "subscriptions", "create", "--config", path, "--api-key", "demo-key", "--tier", "Essentials", "--customer-ref", "cus_9")
	if err != nil {
		t.Fatalf("create error: %v\n%s", err, out)
	}
	callerID := hasher.CallerID("demo-key")
	if !strings.Contains(out, callerID) {
		t.Errorf("create output should show caller id:\n%s", out)
	}

	out, err = run(t, "", "subscriptions", "list", "--config", path)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if !strings.Contains(out, "essentials") || !strings.Contains(out, "cus_9") {
		t.Errorf("list output:\n%s", out)
	}

	if _, err := run(t, "", "subscriptions", "set-tier", "--config", path, "--caller", callerID, "--tier", "professional"); err != nil {
		t.Fatalf("set-tier error: %v", err)
	}

	out, err = run(t, "", "usage", "show", "--config", path, "--caller", callerID)
	if err != nil {
		t.Fatalf("usage show error: %v", err)
	}
	if !strings.Contains(out, "professional") || !strings.Contains(out, "0 / 100000") {
		t.Errorf("usage output:\n%s", out)
	}

	if _, err := run(t, "", "subscriptions", "set-tier", "--config", path, "--caller", "nobody", "--tier", "essentials"); err == nil {
		t.Error("set-tier for unknown caller should fail")
	}
	if _, err := run(t, "", "subscriptions", "create", "--config", path, "--caller", "x", "--tier", "gold"); err == nil {
		t.Error("create with unknown tier should fail")
	}
}

func TestTiersCommand_JSON(t *testing.T) {
	out, err := run(t, "", "tiers", "-o", "json")
	if err != nil {
		t.Fatalf("tiers error: %v", err)
	}
	var got struct {
		Kind  string           `json:"kind"`
		Count int              `json:"count"`
		Data  []map[string]any `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if got.Kind != "tiers" || got.Count != 5 {
		t.Fatalf("kind=%s count=%d", got.Kind, got.Count)
	}
	if got.Data[0]["tier"] != "freemium" || got.Data[4]["monthly_quota"] != "unlimited" {
		t.Errorf("unexpected data: %v", got.Data)
	}
	if got.Data[1]["price_cents"] != float64(9900) {
		t.Errorf("essentials price_cents = %v", got.Data[1]["price_cents"])
	}
}

func TestOutputFormat_Unknown(t *testing.T) {
	if _, err := run(t, "", "tiers", "-o", "xml"); err == nil {
		t.Error("expected error for unknown output format")
	}
}

func TestSubscriptionsList_YAML(t *testing.T) {
	path := writeConfig(t, `
storage: {subscriptions: memory, usage: memory}
subscriptions:
  - api_key: demo-key
    tier: essentials
    customer_ref: cus_demo
`)
	out, err := run(t, "", "subscriptions", "list", "--config", path, "-o", "yaml")
	if err != nil {
		t.Fatalf("list error: %v\n%s", err, out)
	}
	for _, want := range []string{"kind: subscriptions", "count: 1", "caller_id: " + hasher.CallerID("demo-key"), "customer_ref: cus_demo"} {
		if !strings.Contains(out, want) {
			t.Errorf("yaml output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, "", "usage", "show", "--config", path, "--api-key", "demo-key", "-o", "json")
	if err != nil {
		t.Fatalf("usage show error: %v\n%s", err, out)
	}
	var usage struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &usage); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if usage.Data["tier"] != "essentials" || usage.Data["calls_used"] != float64(0) || usage.Data["remaining"] != "10000" {
		t.Errorf("usage data = %v", usage.Data)
	}
}
