package statusapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/coder/websocket"

	"github.com/quietshelf/fluidctl/internal/synth"
)

type wsRequest struct {
	Cmd        string `json:"cmd,omitempty"`
	Descriptor string `json:"descriptor,omitempty"`
	// Channel 0 means "not set": the cursor stays where it is. Anything
	// else must be 1..16 or the envelope is rejected.
	Channel int  `json:"channel,omitempty"`
	Status  bool `json:"status,omitempty"`
}

type wsResponse struct {
	Response string          `json:"response,omitempty"`
	Error    string          `json:"error,omitempty"`
	State    *statusResponse `json:"state,omitempty"`
}

// handleWS speaks a JSON envelope per message: a raw cmd runs a blocking
// transaction, descriptor/channel drive selection, status asks for a state
// push. Every reply carries the current state so stream consumers never
// poll.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // local tooling, any origin
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("ws accept failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	ctx := r.Context()
	for {
		_, msg, err := conn.Read(ctx)
		if err != nil {
			s.log.Debug().Err(err).Msg("ws read closed")
			return
		}
		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			_ = writeWS(ctx, conn, wsResponse{Error: "invalid json envelope"})
			continue
		}

		resp := s.dispatchWS(req)
		if err := writeWS(ctx, conn, resp); err != nil {
			s.log.Debug().Err(err).Msg("ws write closed")
			return
		}
	}
}

func (s *Server) dispatchWS(req wsRequest) wsResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	var resp wsResponse
	switch {
	case req.Channel != 0 && (req.Channel < 1 || req.Channel > synth.ChannelCount):
		// Stream callers get told instead of being clamped silently.
		resp.Error = fmt.Sprintf("channel %d out of range 1..%d", req.Channel, synth.ChannelCount)
	case req.Cmd != "":
		out, err := s.client.Exec(req.Cmd)
		resp.Response = out
		if err != nil {
			resp.Error = err.Error()
		}
	case req.Descriptor != "":
		if req.Channel != 0 {
			s.client.State().SetSelectedChannel(req.Channel)
		}
		if err := s.client.SelectInstrument(req.Descriptor); err != nil {
			resp.Error = err.Error()
		}
	case req.Channel != 0:
		s.client.State().SetSelectedChannel(req.Channel)
	case req.Status:
		// state push only
	default:
		resp.Error = "empty request"
	}

	snap := s.client.State().Snapshot()
	resp.State = &statusResponse{EngineAddr: s.engineAddr, State: snap}
	return resp
}

func writeWS(ctx context.Context, conn *websocket.Conn, resp wsResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, payload)
}
