package gate

import "context"

// Policy defines authorization rules for one resource type.
// U is the subject type (e.g., uint for a user id).
type Policy[U any] interface {
	// Can returns true if user may perform action on resource.
	// For list/create checks, resource may be nil.
	Can(ctx context.Context, user U, action Action, resource any) bool
}
