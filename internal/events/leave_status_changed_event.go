package events

import "time"

type LeaveStatusChangedEvent struct {
	EventType    string    `json:"event_type"`
	LeaveID      uint      `json:"leave_id"`
	EmployeeCode string    `json:"employee_code"`
	EmployeeName string    `json:"employee_name"`
	LeaveType    string    `json:"leave_type"`
	FromDate     string    `json:"from_date"`
	ToDate       string    `json:"to_date"`
	NewStatus    string    `json:"new_status"`
	ActedBy      string    `json:"acted_by"`
	Comment      string    `json:"comment"`
	Recipients   []string  `json:"recipients"`
	OccurredAt   time.Time `json:"occurred_at"`
}
