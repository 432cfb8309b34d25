package realtime

import "fmt"

// Channel name helpers
//
// All Pub/Sub channels are namespaced so multiple ThinkEx deployments can
// share one Redis server.
//
// Pattern: thinkex:{namespace}:{label}

// ServerUpdateChannel returns the channel carrying server-update events.
// Pattern: thinkex:{namespace}:server-update
func ServerUpdateChannel(namespace string) string {
	return fmt.Sprintf("thinkex:%s:server-update", namespace)
}

// ClientMessageChannel returns the channel clients publish on.
// Pattern: thinkex:{namespace}:client-message
func ClientMessageChannel(namespace string) string {
	return fmt.Sprintf("thinkex:%s:client-message", namespace)
}
