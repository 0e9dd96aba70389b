package common

import (
	"errors"

	"github.com/futig/rag-chat/internal/config"
	"github.com/futig/rag-chat/internal/entity"
	pkgHTTP "github.com/futig/rag-chat/pkg/http"
	"go.uber.org/zap"
)

func NewBaseConnector(cfg config.HTTPClientConfig, logger *zap.Logger, extra ...pkgHTTP.HttpOpts) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: cfg.Url,
	}

	opts := []pkgHTTP.HttpOpts{
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithTLSHandshakeTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithRequestLogging(),
		pkgHTTP.WithAuthToken(cfg.Token),
		pkgHTTP.WithAPIKey(cfg.APIKey),
	}

	return pkgHTTP.NewConnector(connCfg, append(opts, extra...)...)
}

// Classify maps a connector error onto the upstream error taxonomy.
func Classify(op string, err error) *entity.UpstreamError {
	var (
		httpErr    *pkgHTTP.HTTPError
		netErr     *pkgHTTP.NetworkError
		decodeErr  *pkgHTTP.DecodeError
		upstreamEr *entity.UpstreamError
	)

	switch {
	case errors.As(err, &upstreamEr):
		return upstreamEr
	case errors.As(err, &httpErr), errors.As(err, &netErr):
		return entity.NewUpstreamError(entity.ErrorKindUpstreamHTTP, op, err)
	case errors.As(err, &decodeErr):
		return entity.NewUpstreamError(entity.ErrorKindMalformedResponse, op, err)
	default:
		return entity.NewUpstreamError(entity.ErrorKindGeneric, op, err)
	}
}

// Malformed builds a MalformedResponse error for a payload that decoded but
// lacks the expected fields.
func Malformed(op, reason string) *entity.UpstreamError {
	return entity.NewUpstreamError(entity.ErrorKindMalformedResponse, op, errors.New(reason))
}
