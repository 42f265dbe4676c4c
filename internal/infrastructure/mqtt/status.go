package mqtt

import (
	"encoding/json"
	"time"
)

// Status reasons.
const (
	reasonUnexpected = "unexpected_disconnect"
	reasonShutdown   = "graceful_shutdown"
)

// Status is the payload of the system status topic.
type Status struct {
	Status    string `json:"status"`
	ClientID  string `json:"client_id"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

func statusPayload(status, clientID, reason string) []byte {
	b, err := json.Marshal(Status{
		Status:    status,
		ClientID:  clientID,
		Reason:    reason,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return []byte(`{"status":"` + status + `"}`)
	}
	return b
}

func onlinePayload(clientID string) []byte {
	return statusPayload("online", clientID, "")
}

func offlinePayload(clientID string) []byte {
	return statusPayload("offline", clientID, reasonShutdown)
}

func willPayload(clientID string) []byte {
	return statusPayload("offline", clientID, reasonUnexpected)
}
