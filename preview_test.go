package preview

import (
	"context"
	"io/fs"
	"testing"
)

func TestEmbeddedAssets(t *testing.T) {
	t.Parallel()

	if _, err := fs.ReadFile(EmbeddedTemplates(), "email.html"); err != nil {
		t.Fatalf("expected email wrapper template: %v", err)
	}
	if _, err := fs.ReadFile(EmbeddedTemplates(), "nodes/paragraph.html"); err != nil {
		t.Fatalf("expected paragraph template: %v", err)
	}
	for _, step := range []string{"email", "sms", "push", "chat", "in_app"} {
		if _, err := fs.ReadFile(ControlSchemas(), step+".json"); err != nil {
			t.Fatalf("expected %s schema: %v", step, err)
		}
	}
}

func TestGenerateFile(t *testing.T) {
	t.Parallel()

	resp, err := GenerateFile(context.Background(), "pkg/request/testdata/email.json")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.RequestID != "req-email" {
		t.Fatalf("unexpected request id %q", resp.RequestID)
	}
	if got := resp.Result.Preview["subject"]; got != "Hello Ada" {
		t.Fatalf("unexpected subject %v", got)
	}
}
