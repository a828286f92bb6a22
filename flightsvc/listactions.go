package flightsvc

import (
	"github.com/apache/arrow-go/v18/arrow/flight"
)

// ListActions enumerates the closed set of actions DoAction supports.
func (s *Server) ListActions(_ *flight.Empty, stream flight.FlightService_ListActionsServer) error {
	s.logger.Debug("ListActions called")
	for _, a := range actionDescriptions {
		if err := stream.Send(&flight.ActionType{Type: a.Type, Description: a.Description}); err != nil {
			return toStatus(err)
		}
	}
	return nil
}
