package types

import (
	"crypto/sha256"
	"encoding/base32"
	"errors"
)

// CIDSize 是 CID 的字节长度（192 位）
const CIDSize = 24

// ErrInvalidCID 表示输入无法解析为合法 CID
var ErrInvalidCID = errors.New("types: invalid cid")

// base32Encoding 是 RFC4648 无填充的大写字母表，用于 token 和 ADC ID= 字段
var base32Encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// CID 是 192 位的内容标识符，用作 UserRef 的底层身份
//
// CID 在握手中两处现身：作为新建 CQI 的默认 token（base32 形式），以及
// ADC INF 消息的 ID= 字段。相等性按字节比较。
type CID [CIDSize]byte

// MakeCID 从 NMDC 昵称（按该 hub 的编码解码后的 UTF-8 形式）和 hub URL
// 派生一个 CID。派生算法对同一对 (nick, hubURL) 总是产生同一个 CID，
// 不依赖任何密钥材料——这只是一个稳定的命名空间哈希，不是身份证明。
func MakeCID(nick, hubURL string) CID {
	h := sha256.New()
	h.Write([]byte(nick))
	h.Write([]byte{0})
	h.Write([]byte(hubURL))
	sum := h.Sum(nil)

	var c CID
	copy(c[:], sum[:CIDSize])
	return c
}

// IsZero 报告 CID 是否为全零值（未设置）
func (c CID) IsZero() bool {
	return c == CID{}
}

// Bytes 返回 CID 的底层字节切片的拷贝
func (c CID) Bytes() []byte {
	out := make([]byte, CIDSize)
	copy(out, c[:])
	return out
}

// String 返回 CID 的 base32（RFC4648，无填充）编码，用作默认 token
// 和 ADC ID= 字段的取值
func (c CID) String() string {
	return base32Encoding.EncodeToString(c[:])
}

// ShortString 返回用于日志的截短形式
func (c CID) ShortString() string {
	s := c.String()
	if len(s) <= 8 {
		return s
	}
	return s[:8]
}

// ParseCID 将 base32 编码的字符串解析回 CID
func ParseCID(s string) (CID, error) {
	var c CID
	decoded, err := base32Encoding.DecodeString(s)
	if err != nil {
		return c, ErrInvalidCID
	}
	if len(decoded) != CIDSize {
		return c, ErrInvalidCID
	}
	copy(c[:], decoded)
	return c, nil
}
