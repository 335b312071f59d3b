package tls

import "errors"

var (
	// ErrNoCertificate 对端未提供证书
	ErrNoCertificate = errors.New("tls: peer presented no certificate")

	// ErrKeyprintMismatch keyprint 比对失败（§4.5）
	ErrKeyprintMismatch = errors.New("tls: keyprint mismatch")

	// ErrCertGeneration 自签名证书生成失败
	ErrCertGeneration = errors.New("tls: certificate generation failed")
)
