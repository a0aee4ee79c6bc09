package employee

type CreateEmployeeRequest struct {
	Usercode           string `json:"usercode" binding:"required"`
	Name               string `json:"name" binding:"required"`
	Email              string `json:"email" binding:"required,email"`
	Gender             string `json:"gender" binding:"required,oneof=Male Female"`
	JoinDate           string `json:"join_date" binding:"required"`
	EmploymentCategory string `json:"employment_category" binding:"required,oneof='Core' 'Core Probation' 'Contractual'"`
	WorksSaturday      bool   `json:"works_saturday"`
	ReportingManager   string `json:"reporting_manager"`
	Post               string `json:"post"`
	Department         string `json:"department"`
	Designation        string `json:"designation"`
}

type UpdateEmployeeRequest struct {
	Name               string `json:"name" binding:"required"`
	Email              string `json:"email" binding:"required,email"`
	Gender             string `json:"gender" binding:"required,oneof=Male Female"`
	EmploymentCategory string `json:"employment_category" binding:"required,oneof='Core' 'Core Probation' 'Contractual'"`
	WorksSaturday      bool   `json:"works_saturday"`
	ReportingManager   string `json:"reporting_manager"`
	Post               string `json:"post"`
	Department         string `json:"department"`
	Designation        string `json:"designation"`
}

type EmployeeResponse struct {
	ID                 uint   `json:"id"`
	Usercode           string `json:"usercode"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Gender             string `json:"gender"`
	JoinDate           string `json:"join_date"`
	EmploymentCategory string `json:"employment_category"`
	WorksSaturday      bool   `json:"works_saturday"`
	ReportingManager   string `json:"reporting_manager"`
	Post               string `json:"post"`
	Department         string `json:"department"`
	Designation        string `json:"designation"`
	Status             string `json:"status"`
}
