package upload

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename reduces name to a flat ASCII filename that is safe to use as
// an object key: accents are decomposed and dropped, path separators and
// whitespace runs become "_", anything outside [A-Za-z0-9_.-] is removed and
// leading/trailing dots and underscores are trimmed. The result may be empty.
func SecureFilename(name string) string {
	name = norm.NFKD.String(name)

	var b strings.Builder
	for _, r := range name {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}
	name = strings.NewReplacer("/", " ", `\`, " ").Replace(b.String())
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

var keyComponentEscaper = strings.NewReplacer("%", "%25", "_", "%5F", "/", "%2F")

// CosmeticSetKey derives the object key of a cosmetic set image:
// {vehicle}_{set}_{slot}_{SecureFilename(filename)}. The vehicle and set
// names are escaped so that "_" only ever appears as a separator between
// them, which keeps keys of different (vehicle, set) pairs apart.
func CosmeticSetKey(vehicleName, setName, slot, filename string) string {
	return strings.Join([]string{
		keyComponentEscaper.Replace(vehicleName),
		keyComponentEscaper.Replace(setName),
		slot,
		SecureFilename(filename),
	}, "_")
}
