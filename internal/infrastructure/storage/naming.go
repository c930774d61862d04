package storage

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitize reduces a client-supplied name to a safe single path element.
func sanitize(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	return name
}

// StoredName builds <ownerID>_<unixmillis>_<basename> for an uploaded file.
func StoredName(ownerID, filename string, now time.Time) string {
	return storedName(ownerID, filename, now, "")
}

// storedName inserts token before the basename when it is not empty.
func storedName(ownerID, filename string, now time.Time, token string) string {
	owner := sanitize(ownerID)
	if owner == "" {
		owner = "anonymous"
	}
	base := sanitize(filename)
	if base == "" {
		base = "upload"
	}
	if token != "" {
		return fmt.Sprintf("%s_%d_%s_%s", owner, now.UnixMilli(), token, base)
	}
	return fmt.Sprintf("%s_%d_%s", owner, now.UnixMilli(), base)
}
