package commsutil

import (
	"fmt"
	"strings"
)

// SubjectHubInbox is where workers publish REGISTER, RESPONSE, and HEARTBEAT
// traffic for the hub.
const SubjectHubInbox = "hub.inbox"

// BuildWorkerSubject builds the private inbox subject for a worker; the hub
// delivers REQUEST messages there.
func BuildWorkerSubject(workerID string) string {
	safe := strings.ReplaceAll(workerID, ".", "_")
	return fmt.Sprintf("hub.worker.%s", safe)
}
