package main

import (
	"testing"
)

func TestRootCommandShowsHelp(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, nil, env.configPath)
	if err != nil {
		t.Fatalf("root command: %v", err)
	}
	requireContains(t, out, "enroll")
	requireContains(t, out, "identify")
	requireContains(t, out, "users")
	requireContains(t, out, "clockings")
}

func TestEnrollRequiresFlags(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"enroll"}, env.configPath)
	if err == nil {
		t.Fatal("expected missing-flag error")
	}
}
