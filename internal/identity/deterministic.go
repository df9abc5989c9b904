package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must prefix keys by domain so different entities never collide.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// TranslationUUID derives the row id of the translation identified by the
// (owner type, owner id, attribute, locale) uniqueness key, so two writers
// racing on the same key target the same primary key.
func TranslationUUID(ownerType, ownerID, attribute, locale string) uuid.UUID {
	return UUID("translatable:translation:" +
		strings.TrimSpace(ownerType) + ":" +
		strings.TrimSpace(ownerID) + ":" +
		strings.TrimSpace(attribute) + ":" +
		strings.ToLower(strings.TrimSpace(locale)))
}
