// ABOUTME: Gating rejections raised before any backend call is made
// ABOUTME: Diagnostic literals match the host contract exactly

package gateway

// RejectionCode is the code carried by every local gating rejection.
const RejectionCode = "400"

// Gating diagnostics. Each unmet precondition has its own literal; hosts
// match on these strings.
const (
	msgAccountNotInitialized  = "Account needs to be initialized first"
	msgVisitorFieldsRequired  = "name, email & phoneNumber required"
	msgVisitorInfoNotProvided = "visitor info is not provided"
	msgTagsRequired           = "tags required"
	msgFetchAccountFirst      = "fetch getAccount() first"
	msgNotChatting            = "can't change department while chatting"
	msgSetDepartmentFirst     = "Set Department first"
	msgSetVisitorInfoFirst    = "setVisitorInfo() first"
	msgAccountOnline          = "Account Status is ONLINE"
	msgDepartmentOnline       = "Department is ONLINE"
)

// Rejection is a precondition failure produced by this layer without
// contacting the backend. Deterministic and re-derivable from session
// state; retrying without changing state is pointless.
type Rejection struct {
	Code    string
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

func reject(message string) *Rejection {
	return &Rejection{Code: RejectionCode, Message: message}
}
