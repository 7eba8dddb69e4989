package relay

import (
	"github.com/danmuck/drawembed/internal/protocol"
	"github.com/danmuck/drawembed/internal/protocol/session"
	"github.com/rs/zerolog/log"
)

// DefaultHandler logs editor activity and acknowledges saves in the editor
// status bar. Diagram content is not kept.
func DefaultHandler(ch *session.Channel) session.Handler {
	logger := log.With().Str("session", ch.ID()).Logger()
	return session.HandlerFuncs{
		Init: func(protocol.EventInit) {
			logger.Info().Msg("relay.editor init")
		},
		Load: func(ev protocol.EventLoad) {
			logger.Info().Float64("scale", ev.Scale).Int("xml_bytes", len(ev.XML)).Msg("relay.editor load")
		},
		AutoSave: func(ev protocol.EventAutoSave) {
			logger.Debug().Int("xml_bytes", len(ev.XML)).Msg("relay.editor autosave")
		},
		Save: func(ev protocol.EventSave) {
			logger.Info().Int("xml_bytes", len(ev.XML)).Bool("exit", ev.Exits()).Msg("relay.editor save")
			if ev.Exits() {
				return
			}
			err := ch.Send(protocol.ActionStatus{Message: "Saved", Modified: protocol.Bool(false)})
			if err != nil {
				logger.Warn().Err(err).Msg("relay.editor save status")
			}
		},
		Exit: func(ev protocol.EventExit) {
			logger.Info().Bool("modified", ev.Modified).Msg("relay.editor exit")
		},
		Merge: func(ev protocol.EventMerge) {
			if err := ev.Err(); err != nil {
				logger.Warn().Err(err).Msg("relay.editor merge")
			}
		},
		Export: func(ev protocol.EventExport) {
			logger.Info().Str("format", string(ev.Format)).Int("data_bytes", len(ev.Data)).Msg("relay.editor export")
		},
	}
}
