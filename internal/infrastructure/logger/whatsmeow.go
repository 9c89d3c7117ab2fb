package logger

import (
	waLog "go.mau.fi/whatsmeow/util/log"
	"go.uber.org/zap"
)

// WhatsmeowLogger adapts zap to whatsmeow's printf-style logger
type WhatsmeowLogger struct {
	sugar *zap.SugaredLogger
}

// NewWhatsmeowLogger returns a waLog.Logger writing to zapLogger under module
func NewWhatsmeowLogger(zapLogger *zap.Logger, module string) waLog.Logger {
	return &WhatsmeowLogger{sugar: zapLogger.Named(module).Sugar()}
}

func (l *WhatsmeowLogger) Debugf(msg string, args ...interface{}) { l.sugar.Debugf(msg, args...) }
func (l *WhatsmeowLogger) Infof(msg string, args ...interface{})  { l.sugar.Infof(msg, args...) }
func (l *WhatsmeowLogger) Warnf(msg string, args ...interface{})  { l.sugar.Warnf(msg, args...) }
func (l *WhatsmeowLogger) Errorf(msg string, args ...interface{}) { l.sugar.Errorf(msg, args...) }

// Sub returns a child logger named after a whatsmeow submodule
func (l *WhatsmeowLogger) Sub(module string) waLog.Logger {
	return &WhatsmeowLogger{sugar: l.sugar.Named(module)}
}

var _ waLog.Logger = (*WhatsmeowLogger)(nil)
