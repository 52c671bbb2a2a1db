package rbac

// CheckRequest asks whether the caller's role may perform an action.
type CheckRequest struct {
	Resource string `json:"resource" binding:"required,notblank"`
	Action   string `json:"action" binding:"required,notblank"`
}
