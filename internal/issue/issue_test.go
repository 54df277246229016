// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestId_Constants(t *testing.T) {
	// Verify all IDs are unique and sequential
	ids := []Id{
		EnvFileNotFoundId,
		EnvFileParseErrorId,
		CommandNotFoundId,
		BundleNotFoundId,
		ExecutableNotFoundId,
		ExecutionFailedId,
		ExecutionTimedOutId,
		ConfigLoadFailedId,
		InvalidEnvModeId,
		PermissionDeniedId,
	}

	seen := make(map[Id]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
	}

	// Verify IDs start at 1 (iota + 1)
	if EnvFileNotFoundId != 1 {
		t.Errorf("EnvFileNotFoundId = %d, want 1", EnvFileNotFoundId)
	}
}

func TestIssue_Id(t *testing.T) {
	issue := Get(EnvFileNotFoundId)
	if issue == nil {
		t.Fatal("Get(EnvFileNotFoundId) returned nil")
	}

	if issue.Id() != EnvFileNotFoundId {
		t.Errorf("issue.Id() = %d, want %d", issue.Id(), EnvFileNotFoundId)
	}
}

func TestIssue_Render(t *testing.T) {
	// Mock the render function for testing
	originalRender := render
	defer func() { render = originalRender }()

	render = func(in string, stylePath string) (string, error) {
		return in, nil
	}

	issue := Get(ExecutableNotFoundId)
	if issue == nil {
		t.Fatal("Get(ExecutableNotFoundId) returned nil")
	}

	rendered, err := issue.Render("")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}

	if !strings.Contains(rendered, "envoy which") {
		t.Error("Render() output should mention 'envoy which'")
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		id       Id
		wantNil  bool
		contains string
	}{
		{EnvFileNotFoundId, false, "Env file not found"},
		{EnvFileParseErrorId, false, "Failed to parse env file"},
		{CommandNotFoundId, false, "Command not found"},
		{BundleNotFoundId, false, "No bundles found"},
		{ExecutableNotFoundId, false, "Executable not found"},
		{ExecutionFailedId, false, "Command failed"},
		{ExecutionTimedOutId, false, "Command timed out"},
		{ConfigLoadFailedId, false, "Failed to load configuration"},
		{InvalidEnvModeId, false, "Invalid environment mode"},
		{PermissionDeniedId, false, "Permission denied"},
		{Id(9999), true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			issue := Get(tt.id)

			if tt.wantNil {
				if issue != nil {
					t.Errorf("Get(%d) should return nil", tt.id)
				}
				return
			}

			if issue == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}

			if tt.contains != "" && !strings.Contains(string(issue.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain '%s'", tt.id, tt.contains)
			}
		})
	}
}

func TestValues(t *testing.T) {
	issues := Values()

	if len(issues) != 10 {
		t.Errorf("Values() returned %d issues, want 10", len(issues))
	}

	for _, issue := range issues {
		if issue.MarkdownMsg() == "" {
			t.Errorf("issue %d has an empty message", issue.Id())
		}
	}
}
