package main

import (
	"regexp"
	"strings"

	"github.com/forPelevin/gomoji"
)

var (
	urlPattern        = regexp.MustCompile(`(?i)(?:https?://|www\.)\S+`)
	mentionPattern    = regexp.MustCompile(`@[\p{L}\p{N}_]+`)
	hashtagPattern    = regexp.MustCompile(`#[\p{L}\p{N}_]+`)
	latinPattern      = regexp.MustCompile(`[A-Za-z]+`)
	nonPersianPattern = regexp.MustCompile(`[^\x{0600}-\x{06FF}\s]`)
	digitPattern      = regexp.MustCompile(`[0-9\x{0660}-\x{0669}\x{06F0}-\x{06F9}]+`)
	diacriticPattern  = regexp.MustCompile(`[\x{0640}\x{064B}-\x{0652}]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Arabic-presentation characters folded into their Persian forms.
var arabicVariantReplacer = strings.NewReplacer(
	"ي", "ی", // ي -> ی
	"ك", "ک", // ك -> ک
	"ة", "ه", // ة -> ه
)

// NormalizeText strips URLs, @mentions, #hashtags, emoji, Latin text and
// everything else outside the Persian script, unifies Arabic letter variants,
// removes diacritics and digits, and collapses whitespace. The steps run in a
// fixed order: URL and mention patterns are ASCII-based and must fire before
// the script filter removes their characters, and Persian digits survive the
// script filter so they get their own pass. The result may be empty, and
// running the function twice returns the same output as running it once.
func NormalizeText(s string) string {
	s = urlPattern.ReplaceAllString(s, " ")
	s = mentionPattern.ReplaceAllString(s, " ")
	s = hashtagPattern.ReplaceAllString(s, " ")
	s = gomoji.ReplaceEmojisWith(s, ' ')
	s = latinPattern.ReplaceAllString(s, " ")
	s = nonPersianPattern.ReplaceAllString(s, " ")
	s = arabicVariantReplacer.Replace(s)
	s = diacriticPattern.ReplaceAllString(s, "")
	s = digitPattern.ReplaceAllString(s, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
