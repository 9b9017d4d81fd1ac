package engine

import "go.uber.org/zap"

// consolePrinter routes script console output to the engine logger
type consolePrinter struct {
	log *zap.SugaredLogger
}

func (p consolePrinter) Log(s string)   { p.log.Info(s) }
func (p consolePrinter) Warn(s string)  { p.log.Warn(s) }
func (p consolePrinter) Error(s string) { p.log.Error(s) }
