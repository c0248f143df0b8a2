package services

import (
	"strings"
	"testing"
)

func TestBuildRootCausePromptEmpty(t *testing.T) {
	prompt := BuildRootCausePrompt(nil)

	if !strings.HasPrefix(prompt, "The system encountered a failure. Below are the key log events preceding the anomaly:\n\n") {
		t.Errorf("prompt missing preamble: %q", prompt)
	}
	if !strings.HasSuffix(prompt, "Based on the above log events, identify the most likely root cause of the issue.\nExplain the cause in one or two sentences, using technical reasoning if possible.\n") {
		t.Errorf("prompt missing closing instruction: %q", prompt)
	}
	if strings.Contains(prompt, "1.") {
		t.Errorf("empty event list should produce zero enumerated lines: %q", prompt)
	}
}

func TestBuildRootCausePromptEnumeration(t *testing.T) {
	events := []map[string]any{
		{"level": "ERROR", "msg": "disk full"},
		{"level": "WARN", "msg": "retrying write"},
		{"message": "worker exited"},
	}
	prompt := BuildRootCausePrompt(events)

	wantLines := []string{
		`1. {"level": "ERROR", "msg": "disk full"}` + "\n",
		`2. {"level": "WARN", "msg": "retrying write"}` + "\n",
		`3. {"message": "worker exited"}` + "\n",
	}
	for _, line := range wantLines {
		if !strings.Contains(prompt, line) {
			t.Errorf("prompt missing line %q\nprompt:\n%s", line, prompt)
		}
	}
}

func TestBuildRootCausePromptDeterministic(t *testing.T) {
	events := []map[string]any{
		{"z": "last", "a": "first", "m": 3.0, "nested": map[string]any{"b": 1.0, "a": 2.0}},
		{"list": []any{"x", 1.0, map[string]any{"k": "v"}}},
	}

	first := BuildRootCausePrompt(events)
	for i := 0; i < 20; i++ {
		if got := BuildRootCausePrompt(events); got != first {
			t.Fatalf("prompt not byte-identical across calls:\nfirst: %q\ngot:   %q", first, got)
		}
	}

	// Keys render sorted, so map iteration order cannot leak through.
	if !strings.Contains(first, `1. {"a": "first", "m": 3, "nested": {"a": 2, "b": 1}, "z": "last"}`) {
		t.Errorf("unexpected event serialization: %q", first)
	}
	if !strings.Contains(first, `2. {"list": ["x", 1, {"k": "v"}]}`) {
		t.Errorf("unexpected list serialization: %q", first)
	}
}

func TestBuildRootCausePromptNonASCII(t *testing.T) {
	events := []map[string]any{
		{"msg": "Zeitüberschreitung beim Verbindungsaufbau — サービス停止"},
	}
	prompt := BuildRootCausePrompt(events)

	if !strings.Contains(prompt, "Zeitüberschreitung beim Verbindungsaufbau — サービス停止") {
		t.Errorf("non-ASCII characters were escaped: %q", prompt)
	}
	if strings.Contains(prompt, `\u`) {
		t.Errorf("found unicode escapes in prompt: %q", prompt)
	}
}
