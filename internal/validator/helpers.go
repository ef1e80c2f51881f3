package validator

import (
	"net/mail"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

var (
	RgxPhoneNumber = regexp.MustCompile(`^\+?[1-9]\d{7,14}$`)
	RgxDate        = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	RgxNIN         = regexp.MustCompile(`^\d{11}$`)

	// Evidence files arrive as base64 data URIs, the same shape the
	// Cloudinary uploader accepts.
	RgxBase64Image    = regexp.MustCompile(`^data:image/(png|jpeg|jpg);base64,`)
	RgxBase64Document = regexp.MustCompile(`^data:(image/(png|jpeg|jpg)|application/pdf);base64,`)
)

func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

func MinRunes(value string, n int) bool {
	return utf8.RuneCountInString(value) >= n
}

func MaxRunes(value string, n int) bool {
	return utf8.RuneCountInString(value) <= n
}

func Matches(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}

func In[T comparable](value T, safelist ...T) bool {
	return slices.Contains(safelist, value)
}

func IsEmail(value string) bool {
	if len(value) > 254 {
		return false
	}

	_, err := mail.ParseAddress(value)
	return err == nil
}
