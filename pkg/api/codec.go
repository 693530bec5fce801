// Package api defines the splitledger.v1 RPC surface: request and response
// messages, procedure names, handler constructors and typed clients.
//
// Messages are plain structs carried as JSON by Codec, so the Connect
// protocol works without generated protobuf code. Amounts travel as
// two-decimal strings such as "100.00".
package api

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// Codec marshals messages as JSON. It registers under the name "json", so
// Connect serves it for application/json requests.
type Codec struct{}

var _ connect.Codec = Codec{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", msg, err)
	}
	return data, nil
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %T: %w", msg, err)
	}
	return nil
}
