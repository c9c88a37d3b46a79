package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionBanner(t *testing.T) {
	banner := versionBanner()

	if !strings.HasPrefix(banner, "LivCap Translate "+Version) {
		t.Errorf("banner %q does not open with the product name and version", banner)
	}
	for _, want := range []string{GitCommit, BuildDate, "/"} {
		if !strings.Contains(banner, want) {
			t.Errorf("banner %q missing %q", banner, want)
		}
	}
}

func TestVersionCommandOutput(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, nil)

	if got := out.String(); got != versionBanner() {
		t.Errorf("version command wrote %q, want the banner %q", got, versionBanner())
	}
}
