package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// GenerateUniqueFilename returns a sanitized filename that does not collide
// with anything already stored in dir. The original base name is kept for
// operator readability; uniqueness comes from the uuid suffix.
func GenerateUniqueFilename(dir, original string) string {
	ext := filepath.Ext(original)
	base := strings.TrimSuffix(filepath.Base(original), ext)
	base = unsafeFilenameChars.ReplaceAllString(base, "_")
	if base == "" {
		base = "upload"
	}

	for {
		name := fmt.Sprintf("%s_%s%s", base, uuid.NewString(), ext)
		if _, err := os.Stat(filepath.Join(dir, name)); os.IsNotExist(err) {
			return name
		}
	}
}
