package corefmt

import (
	"encoding/base64"

	"github.com/zintix-labs/dicelab/errs"
)

// EncodeBase64URL 把 RNG 快照編成 URL-safe 的文字（無 padding），
// 可直接放進 JSON/query string。
func EncodeBase64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeBase64URL 是 EncodeBase64URL 的反向操作。
func DecodeBase64URL(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, errs.Wrap(err, "decode base64url failed")
	}
	return b, err
}
