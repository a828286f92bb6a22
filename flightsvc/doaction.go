package flightsvc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/apache/arrow-go/v18/arrow/flight"

	"github.com/flightcsv/flightcsv-server/internal/recovery"
)

// actionBodyCompressionThreshold is the size above which a DoAction
// response body is wrapped in a compressed envelope, and then only for
// clients that asked for it. Both actions list every registered dataset
// id, so this only engages for servers with a large catalog.
const actionBodyCompressionThreshold = 8192

// actionEnvelope is the wire shape a compressed DoAction response takes.
// Strictly opt-in: a client receives it only after declaring
// "flightcsv-accept-encoding: zstd" in its request metadata, so the
// default wire contract stays flat UTF-8 JSON at every size. Clients
// that opt in base64-decode compressed_body and zstd-inflate it to
// recover the flat JSON.
type actionEnvelope struct {
	Encoding       string `json:"encoding"`
	CompressedBody string `json:"compressed_body"`
}

// encodeActionBody marshals v to JSON. The result is wrapped in a
// compressed actionEnvelope only when the client opted into zstd via the
// flightcsv-accept-encoding header AND the flat encoding exceeds
// actionBodyCompressionThreshold; every other combination gets the flat
// JSON unchanged.
func (s *Server) encodeActionBody(ctx context.Context, v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if AcceptEncodingFromContext(ctx) != "zstd" || len(raw) <= actionBodyCompressionThreshold {
		return raw, nil
	}

	compressed, err := s.compressor.Compress(raw)
	if err != nil {
		s.logger.Warn("DoAction: zstd compression failed, falling back to flat body", "error", err)
		return raw, nil
	}
	return json.Marshal(actionEnvelope{
		Encoding:       "zstd",
		CompressedBody: base64.StdEncoding.EncodeToString(compressed),
	})
}

// actionDescriptions is the closed set of ActionTypes this dispatcher
// supports; ListActions enumerates it and DoAction's default case reports
// it back to callers of an unrecognized action.
var actionDescriptions = []struct {
	Type        string
	Description string
}{
	{"refresh-datasets", "Re-run dataset discovery, atomically replacing the registry and invalidating cached schemas."},
	{"get-server-info", "Report server identity, protocol version, and the currently registered dataset ids."},
}

// errorFrame is the in-band (not gRPC-level) response to an unrecognized
// action; it is never surfaced as a gRPC-level error.
type errorFrame struct {
	Type      string   `json:"type"`
	Message   string   `json:"message"`
	Available []string `json:"available_actions"`
}

type refreshResult struct {
	Status   string   `json:"status"`
	Message  string   `json:"message"`
	Datasets []string `json:"datasets"`
}

type serverInfoResult struct {
	Server        string   `json:"server"`
	Protocol      int      `json:"protocol_version"`
	DatasetCount  int      `json:"dataset_count"`
	Datasets      []string `json:"datasets"`
	Adapter       string   `json:"adapter"`
	Capabilities  []string `json:"capabilities"`
	UptimeSeconds int64    `json:"uptime_seconds"`
}

// DoAction dispatches by action.type. refresh-datasets and
// get-server-info are the closed action set; anything else
// produces an in-band error frame rather than a gRPC error.
func (s *Server) DoAction(action *flight.Action, stream flight.FlightService_DoActionServer) error {
	ctx := EnrichContextMetadata(stream.Context())
	actionType := action.GetType()
	s.logger.Debug("DoAction called", "trace_id", TraceIDFromContext(ctx), "type", actionType)

	switch actionType {
	case "refresh-datasets":
		return s.handleRefreshDatasets(ctx, stream)
	case "get-server-info":
		return s.handleGetServerInfo(ctx, stream)
	default:
		return s.handleUnknownAction(stream, actionType)
	}
}

func (s *Server) handleRefreshDatasets(ctx context.Context, stream flight.FlightService_DoActionServer) error {
	err := recovery.RecoverToError(s.logger, "Refresh", func() error {
		return s.registry.Refresh(ctx)
	})
	result := refreshResult{Datasets: s.DatasetIDs()}
	if err != nil {
		s.logger.Error("refresh-datasets failed", "error", err)
		result.Status = "error"
		result.Message = err.Error()
	} else {
		result.Status = "success"
		result.Message = "registry refreshed"
	}

	body, err := s.encodeActionBody(ctx, result)
	if err != nil {
		return toStatus(err)
	}
	return stream.Send(&flight.Result{Body: body})
}

func (s *Server) handleGetServerInfo(ctx context.Context, stream flight.FlightService_DoActionServer) error {
	caps := make([]string, len(capabilities))
	copy(caps, capabilities)

	body, err := s.encodeActionBody(ctx, serverInfoResult{
		Server:        serverID,
		Protocol:      protocolVersion,
		DatasetCount:  len(s.registry.List()),
		Datasets:      s.DatasetIDs(),
		Adapter:       s.adapter.Kind(),
		Capabilities:  caps,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	})
	if err != nil {
		return toStatus(err)
	}
	return stream.Send(&flight.Result{Body: body})
}

func (s *Server) handleUnknownAction(stream flight.FlightService_DoActionServer, actionType string) error {
	available := make([]string, len(actionDescriptions))
	for i, a := range actionDescriptions {
		available[i] = a.Type
	}

	body, err := json.Marshal(errorFrame{
		Type:      "error",
		Message:   "unknown action type: " + actionType,
		Available: available,
	})
	if err != nil {
		return toStatus(err)
	}
	return stream.Send(&flight.Result{Body: body})
}
