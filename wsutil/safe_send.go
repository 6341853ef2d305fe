package wsutil

import "log/slog"

// SafeSend sends data to a channel without panicking if the channel is closed.
// It reports whether the data was queued; a full or closed channel drops it.
func SafeSend(ch chan []byte, data []byte) (sent bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("send on closed channel", "tag", "wsutil", "panic", r)
			sent = false
		}
	}()
	select {
	case ch <- data:
		return true
	default:
		slog.Warn("send buffer full, dropping message", "tag", "wsutil", "bytes", len(data))
		return false
	}
}
