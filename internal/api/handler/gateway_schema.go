package handler

import "github.com/agriconnect/platform/internal/core/ports"

// The /api wire shapes. The query/run/execute/test envelopes are a fixed
// contract shared with the original proxy and the remote backend; the
// script/snapshot/reset shapes are gateway extensions.

type statementRequest struct {
	SQL    string `json:"sql" validate:"required"`
	Params []any  `json:"params"`
}

type rowsResponse struct {
	Success bool        `json:"success"`
	Data    []ports.Row `json:"data"`
}

type runResponse struct {
	Success      bool  `json:"success"`
	LastInsertID int64 `json:"lastInsertId"`
	Changes      int64 `json:"changes"`
	Deduped      bool  `json:"deduped,omitempty"`
}

type scriptRequest struct {
	Script string `json:"script" validate:"required"`
}

type snapshotResponse struct {
	Success  bool   `json:"success"`
	Snapshot string `json:"snapshot"` // base64-encoded database blob
}

type snapshotImportRequest struct {
	Snapshot string `json:"snapshot" validate:"required,base64"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type failureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
