package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestTranslationUUIDIsStable(t *testing.T) {
	first := TranslationUUID("post", "42", "title", "fr")
	second := TranslationUUID(" post ", "42", "title", "FR")

	if first == uuid.Nil {
		t.Fatal("expected non-nil uuid")
	}
	if first != second {
		t.Fatalf("expected stable uuid, got %s and %s", first, second)
	}
}

func TestTranslationUUIDSeparatesKeys(t *testing.T) {
	base := TranslationUUID("post", "42", "title", "fr")
	variants := []uuid.UUID{
		TranslationUUID("page", "42", "title", "fr"),
		TranslationUUID("post", "43", "title", "fr"),
		TranslationUUID("post", "42", "body", "fr"),
		TranslationUUID("post", "42", "title", "de"),
	}
	for i, variant := range variants {
		if variant == base {
			t.Fatalf("variant %d collided with base key", i)
		}
	}
}

func TestUUIDBlankKey(t *testing.T) {
	if got := UUID("  "); got != uuid.Nil {
		t.Fatalf("expected nil uuid for blank key, got %s", got)
	}
}
