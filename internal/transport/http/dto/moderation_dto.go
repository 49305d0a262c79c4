package dto

type ModerateFlagRequest struct {
	Action      string  `json:"action"`
	Notes       string  `json:"notes,omitempty"`
	IssueStrike bool    `json:"issue_strike,omitempty"`
	StrikeType  *string `json:"strike_type,omitempty"`
}

type ModerateFlagResponse struct {
	Flag        FlagResponse        `json:"flag"`
	Strike      *StrikeResponse     `json:"strike,omitempty"`
	Discipline  *DisciplineResponse `json:"discipline,omitempty"`
	StrikeError string              `json:"strike_error,omitempty"`
}

type BulkModerateRequest struct {
	FlagIDs []int64 `json:"flag_ids"`
	Action  string  `json:"action"`
	Notes   string  `json:"notes,omitempty"`
}

type BulkModerateResponse struct {
	Success int                 `json:"success"`
	Failed  int                 `json:"failed"`
	Errors  []BulkModerateError `json:"errors"`
}

type BulkModerateError struct {
	FlagID  int64  `json:"flag_id"`
	Message string `json:"message"`
}
