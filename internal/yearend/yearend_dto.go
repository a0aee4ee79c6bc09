package yearend

type RunRequest struct {
	TargetYear int `json:"target_year" binding:"required,min=2000"`
}

type EmployeeError struct {
	EmployeeCode string `json:"emp_id"`
	Error        string `json:"error"`
}

type Summary struct {
	TargetYear int             `json:"target_year"`
	Processed  int             `json:"processed"`
	Succeeded  int             `json:"succeeded"`
	Failed     int             `json:"failed"`
	Errors     []EmployeeError `json:"errors,omitempty"`
}
