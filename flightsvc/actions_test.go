package flightsvc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/metadata"

	"github.com/flightcsv/flightcsv-server/internal/msgpack"
	"github.com/flightcsv/flightcsv-server/internal/serialize"
)

func TestListActions(t *testing.T) {
	client, _, _ := newTestServer(t, nil)

	stream, err := client.ListActions(context.Background(), &flight.Empty{})
	if err != nil {
		t.Fatalf("ListActions: %v", err)
	}

	got := map[string]string{}
	for {
		action, err := stream.Recv()
		if err != nil {
			break
		}
		got[action.Type] = action.Description
	}

	for _, want := range []string{"refresh-datasets", "get-server-info"} {
		if desc, ok := got[want]; !ok || desc == "" {
			t.Errorf("action %q missing or undescribed: %v", want, got)
		}
	}
	if len(got) != 2 {
		t.Errorf("got %d actions, want 2: %v", len(got), got)
	}
}

func TestGetServerInfoAction(t *testing.T) {
	client, _, _ := newTestServer(t, map[string]string{
		"people.csv": "name,age\nAlice,30\n",
	})

	stream, err := client.DoAction(context.Background(), &flight.Action{Type: "get-server-info"})
	if err != nil {
		t.Fatalf("DoAction: %v", err)
	}
	result, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}

	var parsed struct {
		Server       string   `json:"server"`
		Protocol     int      `json:"protocol_version"`
		DatasetCount int      `json:"dataset_count"`
		Datasets     []string `json:"datasets"`
		Adapter      string   `json:"adapter"`
		Capabilities []string `json:"capabilities"`
	}
	if err := json.Unmarshal(result.Body, &parsed); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}

	if parsed.Server != serverID {
		t.Errorf("server = %q, want %q", parsed.Server, serverID)
	}
	if parsed.Protocol != protocolVersion {
		t.Errorf("protocol_version = %d, want %d", parsed.Protocol, protocolVersion)
	}
	if parsed.DatasetCount != 1 || !containsString(parsed.Datasets, "people") {
		t.Errorf("datasets = %v (count %d), want [people]", parsed.Datasets, parsed.DatasetCount)
	}
	if parsed.Adapter != "csv" {
		t.Errorf("adapter = %q, want csv", parsed.Adapter)
	}
	if len(parsed.Capabilities) == 0 {
		t.Error("expected a non-empty capabilities list")
	}
}

// newLargeCatalogClient serves enough datasets that the refresh-datasets
// response body comfortably exceeds actionBodyCompressionThreshold.
func newLargeCatalogClient(t *testing.T) flight.FlightServiceClient {
	t.Helper()
	files := make(map[string]string, 450)
	for i := 0; i < 450; i++ {
		files[fmt.Sprintf("dataset_long_name_%04d.csv", i)] = "x\n1\n"
	}
	client, _, _ := newTestServer(t, files)
	return client
}

// TestLargeActionBodyStaysFlatJSON: without an opt-in header, a DoAction
// response beyond the compression threshold is still the plain UTF-8
// JSON body the protocol promises, at any size.
func TestLargeActionBodyStaysFlatJSON(t *testing.T) {
	client := newLargeCatalogClient(t)

	stream, err := client.DoAction(context.Background(), &flight.Action{Type: "refresh-datasets"})
	if err != nil {
		t.Fatalf("DoAction: %v", err)
	}
	result, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if len(result.Body) <= actionBodyCompressionThreshold {
		t.Fatalf("body is %d bytes, want > %d to exercise the threshold", len(result.Body), actionBodyCompressionThreshold)
	}

	var parsed struct {
		Status         string   `json:"status"`
		Datasets       []string `json:"datasets"`
		CompressedBody string   `json:"compressed_body"`
	}
	if err := json.Unmarshal(result.Body, &parsed); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if parsed.CompressedBody != "" {
		t.Fatal("got a compressed envelope without opting in")
	}
	if parsed.Status != "success" || len(parsed.Datasets) != 450 {
		t.Errorf("status = %q, datasets = %d, want success with 450", parsed.Status, len(parsed.Datasets))
	}
}

// TestLargeActionBodyCompressedOnOptIn: a client declaring
// flightcsv-accept-encoding: zstd receives the compressed envelope for
// an oversized body and can inflate it back to the flat JSON.
func TestLargeActionBodyCompressedOnOptIn(t *testing.T) {
	client := newLargeCatalogClient(t)
	ctx := metadata.AppendToOutgoingContext(context.Background(), HeaderAcceptEncoding, "zstd")

	stream, err := client.DoAction(ctx, &flight.Action{Type: "refresh-datasets"})
	if err != nil {
		t.Fatalf("DoAction: %v", err)
	}
	result, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}

	var envelope struct {
		Encoding       string `json:"encoding"`
		CompressedBody string `json:"compressed_body"`
	}
	if err := json.Unmarshal(result.Body, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.Encoding != "zstd" || envelope.CompressedBody == "" {
		t.Fatalf("expected a zstd envelope, got %+v", envelope)
	}

	compressed, err := base64.StdEncoding.DecodeString(envelope.CompressedBody)
	if err != nil {
		t.Fatalf("base64 decode: %v", err)
	}
	flat, err := serialize.Decompress(compressed)
	if err != nil {
		t.Fatalf("zstd inflate: %v", err)
	}

	var parsed struct {
		Status   string   `json:"status"`
		Datasets []string `json:"datasets"`
	}
	if err := json.Unmarshal(flat, &parsed); err != nil {
		t.Fatalf("unmarshal inflated body: %v", err)
	}
	if parsed.Status != "success" || len(parsed.Datasets) != 450 {
		t.Errorf("status = %q, datasets = %d, want success with 450", parsed.Status, len(parsed.Datasets))
	}
}

func TestDoPutCountsMessages(t *testing.T) {
	client, _, _ := newTestServer(t, nil)

	stream, err := client.DoPut(context.Background())
	if err != nil {
		t.Fatalf("DoPut: %v", err)
	}

	const n = 3
	for i := 0; i < n; i++ {
		if err := stream.Send(&flight.FlightData{DataBody: []byte{0x1}}); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	if err := stream.CloseSend(); err != nil {
		t.Fatalf("CloseSend: %v", err)
	}

	result, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}

	var parsed struct {
		Status           string `msgpack:"status"`
		MessagesReceived int    `msgpack:"messages_received"`
	}
	if err := msgpack.Decode(result.AppMetadata, &parsed); err != nil {
		t.Fatalf("decoding app_metadata: %v", err)
	}
	if parsed.Status != "success" {
		t.Errorf("status = %q, want success", parsed.Status)
	}
	if parsed.MessagesReceived != n {
		t.Errorf("messages_received = %d, want %d", parsed.MessagesReceived, n)
	}
}

func TestHandshakeMirrorsProtocolVersion(t *testing.T) {
	client, _, _ := newTestServer(t, nil)

	stream, err := client.Handshake(context.Background())
	if err != nil {
		t.Fatalf("Handshake: %v", err)
	}

	if err := stream.Send(&flight.HandshakeRequest{ProtocolVersion: 1}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	resp, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if resp.ProtocolVersion != 1 {
		t.Errorf("ProtocolVersion = %d, want 1", resp.ProtocolVersion)
	}
	if len(resp.Payload) == 0 {
		t.Error("expected a server-chosen payload")
	}

	if err := stream.CloseSend(); err != nil {
		t.Fatalf("CloseSend: %v", err)
	}
	if _, err := stream.Recv(); err != io.EOF {
		t.Errorf("after CloseSend, Recv err = %v, want io.EOF", err)
	}
}
