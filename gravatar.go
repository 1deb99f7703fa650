package devlink

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// Gravatar protocol parameters: 200px, pg rated, mystery-man fallback.
const gravatarFormat = "https://www.gravatar.com/avatar/%s?s=200&r=pg&d=mm"

// GravatarURL derives the avatar URL for an email. The digest is md5 of the
// trimmed, lowercased address as mandated by the Gravatar protocol.
func GravatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	digest := md5.Sum([]byte(normalized))
	return fmt.Sprintf(gravatarFormat, hex.EncodeToString(digest[:]))
}
