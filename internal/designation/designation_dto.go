package designation

type CreateDesignationRequest struct {
	Name             string `json:"name" binding:"required,max=100"`
	Band             string `json:"band" binding:"max=20"`
	ProbationMonths  int    `json:"probation_months" binding:"min=0,max=36"`
	NoticePeriodDays int    `json:"notice_period_days" binding:"min=0,max=365"`
}

type UpdateDesignationRequest struct {
	Name             string `json:"name" binding:"required,max=100"`
	Band             string `json:"band" binding:"max=20"`
	ProbationMonths  int    `json:"probation_months" binding:"min=0,max=36"`
	NoticePeriodDays int    `json:"notice_period_days" binding:"min=0,max=365"`
}

type DesignationResponse struct {
	ID               uint   `json:"id"`
	Name             string `json:"name"`
	Band             string `json:"band,omitempty"`
	ProbationMonths  int    `json:"probation_months"`
	NoticePeriodDays int    `json:"notice_period_days"`
}

func toResponse(d Designation) DesignationResponse {
	return DesignationResponse{
		ID:               d.ID,
		Name:             d.Name,
		Band:             d.Band,
		ProbationMonths:  d.ProbationMonths,
		NoticePeriodDays: d.NoticePeriodDays,
	}
}
