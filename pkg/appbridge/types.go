package appbridge

import "encoding/json"

// Connection is an authenticated account a connector acts on behalf of.
// SerializedData is a JSON document the connector interprets.
type Connection struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	SerializedData string `json:"serialized_data"`
}

// ActionContext identifies one action invocation.
type ActionContext struct {
	ActionID        string     `json:"action_id"`
	Connection      Connection `json:"connection"`
	SerializedInput string     `json:"serialized_input"`
}

// ActionResponse is the result of executing an action.
type ActionResponse struct {
	SerializedOutput string `json:"serialized_output"`
}

// Decode unmarshals the action output into v.
func (r ActionResponse) Decode(v any) error {
	return json.Unmarshal([]byte(r.SerializedOutput), v)
}

// TriggerContext identifies one trigger poll. Store is the state the
// previous poll returned, as JSON.
type TriggerContext struct {
	TriggerID       string     `json:"trigger_id"`
	Connection      Connection `json:"connection"`
	Store           string     `json:"store"`
	SerializedInput string     `json:"serialized_input"`
}

// TriggerEvent is one event produced by a trigger poll.
type TriggerEvent struct {
	ID             string `json:"id"`
	SerializedData string `json:"serialized_data"`
}

// TriggerResponse is the result of a trigger poll: new events and the
// state to pass as Store on the next poll.
type TriggerResponse struct {
	Store  string         `json:"store"`
	Events []TriggerEvent `json:"events"`
}
