package conn

import (
	"github.com/voltdb/voltgo/internal/verr"
	"github.com/voltdb/voltgo/message"
)

// Server-reported status codes (spec §6 "Status codes").
const (
	ServerStatusSuccess           int8 = 1
	ServerStatusUserAbort         int8 = -1
	ServerStatusGracefulFailure   int8 = -2
	ServerStatusUnexpectedFailure int8 = -3
	ServerStatusConnectionLost    int8 = -4
	ServerStatusServerUnavailable int8 = -5
)

// translateServerStatus maps a response's server status onto the execution
// error taxonomy (spec §7 "Execution"). A nil return means the call
// succeeded and the callback receives resp with no error.
func translateServerStatus(resp *message.Response) error {
	switch resp.ServerStatus {
	case ServerStatusSuccess:
		return nil
	case ServerStatusUserAbort:
		return verr.New(verr.CodeAborted, "server reported user abort").
			WithField("status_string", resp.ServerStatusString).Err()
	case ServerStatusGracefulFailure:
		return verr.New(verr.CodeGracefulFailure, "server reported graceful failure").
			WithField("status_string", resp.ServerStatusString).Err()
	case ServerStatusUnexpectedFailure:
		return verr.New(verr.CodeUnexpectedFailure, "server reported unexpected failure").
			WithField("status_string", resp.ServerStatusString).Err()
	case ServerStatusConnectionLost:
		return verr.New(verr.CodeConnectionLost, "server reported connection lost").
			WithField("status_string", resp.ServerStatusString).Err()
	case ServerStatusServerUnavailable:
		return verr.New(verr.CodeServerUnavailable, "server unavailable").
			WithField("status_string", resp.ServerStatusString).Err()
	default:
		return verr.Newf(verr.CodeInternal, "unknown server status %d", resp.ServerStatus).Err()
	}
}
