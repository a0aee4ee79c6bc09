package events

import "time"

const LeaveNotificationTopic = "hr.leave.notification.v1"

type LeaveSubmittedEvent struct {
	EventType    string    `json:"event_type"`
	LeaveID      uint      `json:"leave_id"`
	EmployeeCode string    `json:"employee_code"`
	EmployeeName string    `json:"employee_name"`
	LeaveType    string    `json:"leave_type"`
	FromDate     string    `json:"from_date"`
	ToDate       string    `json:"to_date"`
	Days         string    `json:"days"`
	Recipients   []string  `json:"recipients"`
	OccurredAt   time.Time `json:"occurred_at"`
}
