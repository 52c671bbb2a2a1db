package audit

type ListFilter struct {
	EmployeeID string `form:"employee_id"`
	Action     string `form:"action"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

type AuditLogResponse struct {
	ID         string  `json:"id"`
	Action     string  `json:"action"`
	ActorID    string  `json:"actor_id"`
	EmployeeID *string `json:"employee_id,omitempty"`
	SubjectID  *string `json:"subject_id,omitempty"`
	Reason     string  `json:"reason"`
	Meta       any     `json:"meta,omitempty"`
	Hash       string  `json:"hash"`
	PrevHash   string  `json:"prev_hash"`
	CreatedAt  string  `json:"created_at"`
}

type VerifyResponse struct {
	Entries  int     `json:"entries"`
	Intact   bool    `json:"intact"`
	BrokenAt *string `json:"broken_at,omitempty"`
}
