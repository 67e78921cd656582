package events

import "go.uber.org/zap"

// ZapEmitter structured-logs every record under its event name.
type ZapEmitter struct {
	log *zap.SugaredLogger
}

func NewZapEmitter(log *zap.SugaredLogger) *ZapEmitter {
	return &ZapEmitter{log: log}
}

func (z *ZapEmitter) Emit(r Record) {
	z.log.Infow(r.EventName(), "data", r)
}
