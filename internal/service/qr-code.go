package service

import (
	"bytes"
	"encoding/base64"

	"paywatch/internal/infra/cache"
	"paywatch/pkg/utils"

	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
)

type QrCodesService struct {
	cache *cache.Cache
}

func NewQrCodesService() *QrCodesService {
	return &QrCodesService{cache: cache.InitStorage()}
}

func (s *QrCodesService) New(content string) (string, error) {
	qr, err := generateQrCode(content)
	if err != nil {
		return "", err
	}

	s.cache.SetNoExp(content, qr)

	return qr, nil
}

// returns qr code from cache or generates new one
func (s *QrCodesService) FindOrNew(content string) (string, error) {
	qr, err := utils.SafeCast[string](s.cache.Load(content))
	if err != nil { // not found
		return s.New(content)
	}
	return qr, nil
}

type bufferAdaptor struct {
	*bytes.Buffer
}

func (b bufferAdaptor) Close() error {
	return nil
}

func (b bufferAdaptor) Write(p []byte) (int, error) {
	return b.Buffer.Write(p)
}

// returns qr code in base64
func generateQrCode(content string) (string, error) {
	qrc, err := qrcode.New(content)
	if err != nil {
		return "", err
	}

	b := bufferAdaptor{Buffer: bytes.NewBuffer(nil)}
	w := standard.NewWithWriter(b)

	if err = qrc.Save(w); err != nil {
		return "", err
	}

	return base64.RawStdEncoding.EncodeToString(b.Bytes()), nil
}
