package tls

import (
	"crypto/sha256"
	"crypto/subtle"
	"crypto/x509"
	"encoding/base32"
	"strings"
)

const keyprintAlgoPrefix = "SHA256/"

// LeafDigest 返回对端叶证书的 SHA-256 摘要，用作本地 keyprint（§4.5
// 中的 `kp`）
func LeafDigest(rawCerts [][]byte) ([]byte, error) {
	if len(rawCerts) == 0 {
		return nil, ErrNoCertificate
	}
	if _, err := x509.ParseCertificate(rawCerts[0]); err != nil {
		return nil, err
	}
	sum := sha256.Sum256(rawCerts[0])
	return sum[:], nil
}

// CheckKeyprint 实现 §4.5 的 keyprint 校验
//
// kp 是本地计算出的对端叶证书摘要（见 LeafDigest）；kp2 是 hub 为该
// 用户广播的字符串（形如 "SHA256/<base32>"）。
//
// 规则（总是有定义，从不在空输入或未知算法上失败）：
//   - kp 为空 ⇒ 放行；
//   - kp2 为空 ⇒ 放行；
//   - kp2 不以 "SHA256/" 为前缀 ⇒ 放行（未知算法）；
//   - 否则 base32 解码 kp2[7:] 为定长字节向量（长度取 |kp|），逐字节比较。
func CheckKeyprint(kp []byte, kp2 string) bool {
	if len(kp) == 0 {
		return true
	}
	if kp2 == "" {
		return true
	}
	if !strings.HasPrefix(kp2, keyprintAlgoPrefix) {
		return true
	}

	encoded := kp2[len(keyprintAlgoPrefix):]
	decoded, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(encoded)
	if err != nil {
		return false
	}
	if len(decoded) != len(kp) {
		return false
	}
	return subtle.ConstantTimeCompare(kp, decoded) == 1
}
