package progression

// GrantXPRequest credits reward points to a user. The caller applies any
// streak multiplier before granting.
type GrantXPRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
	Points int   `json:"points" validate:"required,gt=0,lte=100000"`
}

// ActivityResponse reports the streak state after recording activity.
type ActivityResponse struct {
	Change       ChangeKind   `json:"change"`
	NewMilestone int          `json:"new_milestone,omitempty"`
	Status       StreakStatus `json:"status"`
}
