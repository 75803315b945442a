package conn

import (
	"testing"

	"github.com/voltdb/voltgo/internal/verr"
	"github.com/voltdb/voltgo/message"
)

func TestTranslateServerStatus(t *testing.T) {
	cases := []struct {
		status int8
		code   verr.Code
	}{
		{ServerStatusSuccess, 0}, // special-cased below
		{ServerStatusUserAbort, verr.CodeAborted},
		{ServerStatusGracefulFailure, verr.CodeGracefulFailure},
		{ServerStatusUnexpectedFailure, verr.CodeUnexpectedFailure},
		{ServerStatusConnectionLost, verr.CodeConnectionLost},
		{ServerStatusServerUnavailable, verr.CodeServerUnavailable},
	}
	for _, c := range cases {
		resp := &message.Response{ServerStatus: c.status, ServerStatusString: "note"}
		err := translateServerStatus(resp)
		if c.status == ServerStatusSuccess {
			if err != nil {
				t.Fatalf("success status should yield nil error, got %v", err)
			}
			continue
		}
		if err == nil || verr.GetCode(err) != c.code {
			t.Fatalf("status %d: got %v, want code %v", c.status, err, c.code)
		}
	}
}

func TestTranslateServerStatusUnknown(t *testing.T) {
	resp := &message.Response{ServerStatus: 99}
	err := translateServerStatus(resp)
	if err == nil || verr.GetCode(err) != verr.CodeInternal {
		t.Fatalf("expected CodeInternal for unknown status, got %v", err)
	}
}
