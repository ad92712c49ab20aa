// Package api is the HTTP wire format of the corkboard backend and a client
// for it.
//
// The server in pkg/server and [Client] share the request and response types
// declared here. Routes:
//
//	GET    /boards/{board}/items               -> ItemsResponse
//	PUT    /boards/{board}/items               <- PutItemsRequest
//	PUT    /boards/{board}/items/{id}/position <- PositionRequest
//	DELETE /boards/{board}/items/{id}
//
// Failures carry an [ErrorResponse] body.
package api

import "github.com/matzehuels/corkboard/pkg/board"

// ItemsResponse lists the items of one board ordered by id.
type ItemsResponse struct {
	Board string       `json:"board"`
	Items []board.Item `json:"items"`
}

// PutItemsRequest inserts or replaces items.
type PutItemsRequest struct {
	Items []board.Item `json:"items"`
}

// PositionRequest moves one item. Both fields are required.
type PositionRequest struct {
	Top  *float64 `json:"top"`
	Left *float64 `json:"left"`
}

// NewPositionRequest returns the request body for pos.
func NewPositionRequest(pos board.Position) PositionRequest {
	return PositionRequest{Top: &pos.Top, Left: &pos.Left}
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries an errors.Code and a human readable message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
