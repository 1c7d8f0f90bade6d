package audio

import "encoding/base64"

// EncodeBase64 converts a binary audio payload to its text-safe
// transport form.
func EncodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeBase64 reverses EncodeBase64. DecodeBase64(EncodeBase64(b)) == b
// for all byte sequences, including empty.
func DecodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
