package leave

type ApplyLeaveRequest struct {
	EmployeeRef  string `json:"emp_id" binding:"required"`
	LeaveType    string `json:"ltype" binding:"required"`
	FromDate     string `json:"fromdate" binding:"required"`
	ToDate       string `json:"todate" binding:"required"`
	IsHalfDay    bool   `json:"is_half_day"`
	// "1" first half, "2" second half; only meaningful for half-day requests.
	ShiftType    string `json:"shift_type" binding:"omitempty,oneof=1 2"`
	Comment      string `json:"comments" binding:"max=500"`
	DocumentPath string `json:"document_path" binding:"max=255"`
}

type TransitionRequest struct {
	Action  string `json:"action" binding:"required,oneof=approve reject"`
	Comment string `json:"comment" binding:"max=500"`
}

type ReportRequest struct {
	FromDate    string `form:"from" binding:"required"`
	ToDate      string `form:"to" binding:"required"`
	Status      string `form:"status"`
	EmployeeRef string `form:"emp_id"`
}

type ApplicationResponse struct {
	LeaveID      uint   `json:"leave_id"`
	EmployeeCode string `json:"emp_id"`
	EmployeeName string `json:"emp_name,omitempty"`
	LeaveType    string `json:"ltype"`
	FromDate     string `json:"fromdate"`
	ToDate       string `json:"todate"`
	Days         string `json:"days"`
	ShiftType    string `json:"shift_type,omitempty"`
	Status       string `json:"status"`
	Comment      string `json:"comments,omitempty"`
	AdminComment string `json:"admin_comments,omitempty"`
	DocumentPath string `json:"document_path,omitempty"`
	AppliedOn    string `json:"applied_on"`
	ApprovedBy   string `json:"approved_by,omitempty"`
	ApprovedOn   string `json:"approved_on,omitempty"`
}

func toApplicationResponse(a Application) ApplicationResponse {
	resp := ApplicationResponse{
		LeaveID:      a.ID,
		LeaveType:    a.LeaveType,
		FromDate:     a.FromDate.Format("2006-01-02"),
		ToDate:       a.ToDate.Format("2006-01-02"),
		Days:         a.Days.String(),
		ShiftType:    a.ShiftType,
		Status:       string(a.Status),
		Comment:      a.Comment,
		AdminComment: a.AdminComment,
		DocumentPath: a.DocumentPath,
		AppliedOn:    a.AppliedAt.Format("2006-01-02"),
		ApprovedBy:   a.ApprovedBy,
	}
	if a.Employee != nil {
		resp.EmployeeCode = a.Employee.Usercode
		resp.EmployeeName = a.Employee.Name
	}
	if a.ApprovedDate != nil {
		resp.ApprovedOn = a.ApprovedDate.Format("2006-01-02")
	}
	return resp
}
