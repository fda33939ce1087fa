//go:build !integration

package i18n

import (
	"testing"
)

func TestTranslator(t *testing.T) {
	contentBytes := []byte("greeting: こんにちは\nwelcome_user: こんにちは %s")

	translator, err := newTranslatorFromBytes(contentBytes)
	if err != nil {
		t.Fatalf("newTranslatorFromBytes failed: %v", err)
	}

	t.Run("should translate a simple key", func(t *testing.T) {
		got := translator.T("greeting")
		want := "こんにちは"
		if got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})

	t.Run("should return key if not found", func(t *testing.T) {
		got := translator.T("nonexistent_key")
		want := "nonexistent_key"
		if got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})

	t.Run("should format arguments correctly", func(t *testing.T) {
		got := translator.T("welcome_user", "太郎")
		want := "こんにちは 太郎"
		if got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})
}

func TestEmbeddedLocales(t *testing.T) {
	for _, lang := range []string{"ja", "en"} {
		tr, err := NewTranslator(LocalesFS, lang)
		if err != nil {
			t.Fatalf("locale %s failed to load: %v", lang, err)
		}
		// Every dialog string the engine relies on must exist.
		keys := []string{
			"insufficient_info", "unknown_intent", "echo_reply",
			"reset_confirm", "reset_clarify", "reset_done", "reset_cancelled",
			"prompt_area", "reprompt_area",
			"prompt_gourmetCategory", "reprompt_gourmetCategory",
			"resolved", "prompt_exhausted", "classifier_unavailable",
		}
		for _, k := range keys {
			if tr.T(k) == k {
				t.Errorf("locale %s is missing key %q", lang, k)
			}
		}
	}
}
