package log

import (
	"crypto/sha256"
	"encoding/hex"

	"go.uber.org/zap"
)

var base *zap.Logger = zap.NewNop()

// Init builds the process-wide logger. prod selects the production encoder
// (JSON, sampled); otherwise the development console encoder is used.
func Init(prod bool) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if prod {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	base = l
	return l, nil
}

// L returns the process-wide logger.
func L() *zap.Logger { return base }

func Infof(format string, args ...any)  { base.Sugar().Infof(format, args...) }
func Errorf(format string, args ...any) { base.Sugar().Errorf(format, args...) }

// EmailHash returns a short stable digest of an email address so flows can be
// correlated in logs without writing the address itself.
func EmailHash(email string) string {
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:8])
}
