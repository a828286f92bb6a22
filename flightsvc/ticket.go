package flightsvc

import (
	"encoding/json"

	"github.com/apache/arrow-go/v18/arrow/flight"
)

// EncodeTicket returns the ticket bytes the server issues for id: the
// dataset id's raw UTF-8 bytes.
func EncodeTicket(id string) []byte {
	return []byte(id)
}

// DescriptorForID builds the PATH-form descriptor a FlightInfo carries
// for id.
func DescriptorForID(id string) *flight.FlightDescriptor {
	return &flight.FlightDescriptor{
		Type: flight.DescriptorPATH,
		Path: []string{id},
	}
}

// command is the shape of a CMD descriptor body or a ticket's JSON
// fallback: "dataset", "table", or "path" (first hit wins).
type command struct {
	Dataset string `json:"dataset"`
	Table   string `json:"table"`
	Path    string `json:"path"`
}

func (c command) id() (string, bool) {
	switch {
	case c.Dataset != "":
		return c.Dataset, true
	case c.Table != "":
		return c.Table, true
	case c.Path != "":
		return c.Path, true
	default:
		return "", false
	}
}

// commandID resolves a CMD body (or a ticket's JSON fallback) to a
// dataset id: parse as JSON and read dataset/table/path; if JSON parsing
// fails, or none of those keys are present, treat the body as a raw
// UTF-8 id.
func commandID(body []byte) string {
	var cmd command
	if err := json.Unmarshal(body, &cmd); err == nil {
		if id, ok := cmd.id(); ok {
			return id
		}
	}
	return string(body)
}

// DatasetIDFromDescriptor resolves a descriptor to a dataset id:
// PATH with at least one segment yields path[0]; CMD is parsed as JSON
// command body (or treated as a raw id string if parsing fails).
func DatasetIDFromDescriptor(desc *flight.FlightDescriptor) (string, error) {
	if desc == nil {
		return "", ErrInvalidDescriptor
	}
	switch desc.GetType() {
	case flight.DescriptorPATH:
		path := desc.GetPath()
		if len(path) == 0 {
			return "", ErrInvalidDescriptor
		}
		return path[0], nil
	case flight.DescriptorCMD:
		cmd := desc.GetCmd()
		if len(cmd) == 0 {
			return "", ErrInvalidDescriptor
		}
		return commandID(cmd), nil
	default:
		return "", ErrInvalidDescriptor
	}
}

// DatasetIDFromTicket resolves ticket bytes to a dataset id: try the
// raw UTF-8 bytes as an id first; registered reports whether a candidate
// id is known to the registry. If the raw bytes aren't a registered id,
// fall back to parsing them as a CMD-shaped JSON object. The raw-string
// candidate is always returned when it is already registered or when the
// JSON fallback yields nothing usable, so a raw string that happens to
// also be valid JSON resolves UTF-8-first.
func DatasetIDFromTicket(ticket []byte, registered func(string) bool) (string, error) {
	if len(ticket) == 0 {
		return "", ErrInvalidTicket
	}
	raw := string(ticket)
	if registered(raw) {
		return raw, nil
	}
	if id := commandID(ticket); id != "" && registered(id) {
		return id, nil
	}
	return raw, nil
}
