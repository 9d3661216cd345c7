package cmd

import "testing"

// A fileless deploy must start on defaults plus env, which only happens when
// the flag stays empty and config.Load runs its own path discovery.
func TestConfigFlagDefaultsToDiscovery(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("config")
	if flag == nil {
		t.Fatal("--config flag not registered")
	}
	if flag.DefValue != "" {
		t.Fatalf("--config default = %q, want empty for path discovery", flag.DefValue)
	}
}
