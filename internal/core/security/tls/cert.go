package tls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"time"

	"github.com/dep2p/peerconnd/pkg/lib/log"
)

var certLogger = log.Logger("core/security/tls")

// GenerateSelfSignedCert 生成一张短期自签名证书，只用于加密信道，
// 不承载任何可验证身份（对端身份来自 hub，不来自证书）
//
// validity 为证书有效期；调用方通常传入 config.SecurityConfig.
// CertValidityPeriod。
func GenerateSelfSignedCert(validity time.Duration) (*tls.Certificate, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: generate key: %v", ErrCertGeneration, err)
	}

	serial, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	if err != nil {
		return nil, fmt.Errorf("%w: serial: %v", ErrCertGeneration, err)
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"peerconn"},
			CommonName:   "peerconn self-signed",
		},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(validity),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &priv.PublicKey, priv)
	if err != nil {
		return nil, fmt.Errorf("%w: sign: %v", ErrCertGeneration, err)
	}

	cert := &tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  priv,
	}
	certLogger.Debug("self-signed certificate generated", "validity", validity)
	return cert, nil
}
