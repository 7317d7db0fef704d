// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package duplex

import "expvar"

var (
	duplexMetrics = new(expvar.Map)

	sessionsActiveGauge  = new(expvar.Int)
	sessionsFailedCount  = new(expvar.Int)
	messagesEncodedCount = new(expvar.Int)
	messagesDecodedCount = new(expvar.Int)
	decodeErrorsCount    = new(expvar.Int)
	bytesCopiedCount     = new(expvar.Int)
)

func init() {
	duplexMetrics.Set("sessions_active", sessionsActiveGauge)
	duplexMetrics.Set("sessions_failed", sessionsFailedCount)
	duplexMetrics.Set("messages_encoded", messagesEncodedCount)
	duplexMetrics.Set("messages_decoded", messagesDecodedCount)
	duplexMetrics.Set("decode_errors", decodeErrorsCount)
	duplexMetrics.Set("bytes_copied", bytesCopiedCount)
}

// Metrics returns a map of exported metrics for use with the expvar package.
// This map is shared among all endpoints, links and exchanges. The caller is
// free to add or remove metrics in the map, but note that such changes will
// affect all sessions.
//
// The caller is responsible for publishing the metrics to the exporter via
// expvar.Publish or similar.
func Metrics() *expvar.Map { return duplexMetrics }
