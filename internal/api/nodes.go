package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/homecontrol-core/internal/audit"
	"github.com/nerrad567/homecontrol-core/internal/device"
	"github.com/nerrad567/homecontrol-core/internal/node"
	"github.com/nerrad567/homecontrol-core/internal/smarthome"
)

// nodeResponse is one node with its advertised schema.
type nodeResponse struct {
	ID   string         `json:"id"`
	Kind smarthome.Kind `json:"kind,omitempty"`
	device.NodeDescription
}

// provisionRequest is the request body for POST /nodes.
type provisionRequest struct {
	ID     string          `json:"id"`
	Kind   smarthome.Kind  `json:"kind"`
	Name   string          `json:"name"`
	Config json.RawMessage `json:"config"`
}

// setRequest is the request body for POST .../set.
type setRequest struct {
	Payload *string `json:"payload"`
}

// eventResponse is one routed event.
type eventResponse struct {
	Node     string `json:"node"`
	Property string `json:"property"`
	Payload  string `json:"payload"`
	Type     string `json:"type"`
	Event    any    `json:"event"`
}

// handleGetDevice returns the device state, description and raised alerts.
func (s *Server) handleGetDevice(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          s.runtime.Device().ID(),
		"state":       s.runtime.State(),
		"description": s.runtime.Description(),
		"alerts":      s.runtime.Alerts(),
	})
}

// handleListNodes returns every node in description order.
func (s *Server) handleListNodes(w http.ResponseWriter, _ *http.Request) {
	nodes := s.runtime.Device().Nodes()
	desc := s.runtime.Description()

	resp := make([]nodeResponse, 0, len(nodes))
	for _, n := range nodes {
		resp = append(resp, newNodeResponse(n, desc))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"nodes": resp,
		"count": len(resp),
	})
}

// handleGetNode returns one node.
func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	n, ok := s.runtime.Device().Node(chi.URLParam(r, "node"))
	if !ok {
		writeNotFound(w, "node not found")
		return
	}
	writeJSON(w, http.StatusOK, newNodeResponse(n, s.runtime.Description()))
}

// handleProvisionNode builds, persists and advertises a new node.
func (s *Server) handleProvisionNode(w http.ResponseWriter, r *http.Request) {
	var req provisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if !req.Kind.Valid() {
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, fmt.Sprintf("unknown node kind %q", req.Kind))
		return
	}
	if req.ID == "" {
		req.ID, _ = smarthome.DefaultNodeID(req.Kind)
	}

	reg := &device.Registration{
		DeviceID: s.runtime.Device().ID(),
		NodeID:   req.ID,
		Kind:     req.Kind,
		Name:     req.Name,
		Config:   req.Config,
	}

	n, err := s.runtime.Provision(requestContext(r), reg)
	if err != nil && n == nil {
		s.writeDeviceError(w, r, err)
		return
	}
	if err != nil {
		// The node exists; its description goes out on the next reconnect.
		s.logger.Warn("node provisioned but not advertised", "node", reg.NodeID, "error", err)
	}
	s.auditLog(r, audit.ActionProvision, reg.NodeID, map[string]any{"kind": reg.Kind, "name": reg.Name})

	writeJSON(w, http.StatusCreated, newNodeResponse(n, s.runtime.Description()))
}

// handleDeprovisionNode removes a node and its registration.
func (s *Server) handleDeprovisionNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "node")
	if err := s.runtime.Deprovision(requestContext(r), nodeID); err != nil {
		s.writeDeviceError(w, r, err)
		return
	}
	s.auditLog(r, audit.ActionDeprovision, nodeID, nil)
	w.WriteHeader(http.StatusNoContent)
}

// handleSetProperty routes a set command through the device dispatcher.
//
// It answers 202 with the routed events, or 422 when the payload had no
// meaning for the node (invalid, out of range, or not settable).
func (s *Server) handleSetProperty(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "node")
	propertyID := chi.URLParam(r, "property")

	n, ok := s.runtime.Device().Node(nodeID)
	if !ok {
		writeNotFound(w, "node not found")
		return
	}
	if !n.Schema().Has(propertyID) {
		writeNotFound(w, "property not found")
		return
	}

	var req setRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Payload == nil {
		writeBadRequest(w, "payload is required")
		return
	}

	in := node.IncomingPropertySet{
		Address: n.Identity().Address(propertyID),
		Payload: *req.Payload,
	}
	events := s.runtime.Inject(requestContext(r), in)
	if len(events) == 0 {
		writeError(w, http.StatusUnprocessableEntity, ErrCodeNotApplicable, "payload produced no event")
		return
	}
	s.auditLog(r, audit.ActionSet, nodeID, map[string]any{"property": propertyID, "payload": in.Payload})

	resp := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		resp = append(resp, eventResponse{
			Node:     ev.Node.Node,
			Property: ev.Property,
			Payload:  ev.Payload,
			Type:     ev.Name(),
			Event:    ev.Event,
		})
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"events": resp,
	})
}

func newNodeResponse(n node.Node, desc device.Description) nodeResponse {
	id := n.Identity().Node
	kind, _ := smarthome.KindOf(n)
	return nodeResponse{
		ID:              id,
		Kind:            kind,
		NodeDescription: desc.Nodes[id],
	}
}

// requestContext keeps the request's values but not its cancellation, so
// publishes started by a handler complete after the response is written.
func requestContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}
