package model

// Investigation is a third-party site investigation contracted for a
// project. It either references a catalog entry or carries a custom name.
type Investigation struct {
	Base
	ProjectID  uint                   `gorm:"index;not null" json:"projectId"`
	Project    *Project               `json:"-"`
	StandardID *uint                  `gorm:"comment:Ссылка на справочник изысканий" json:"standardId"`
	Standard   *StandardInvestigation `json:"-"`
	CustomName *string                `gorm:"type:varchar(256)" json:"customName"`
	IsCustom   bool                   `gorm:"not null;default:false" json:"isCustom"`
	Status     WorkStatus             `gorm:"type:varchar(32);not null;default:not_started" json:"status"`

	ContractorName    *string `gorm:"type:varchar(256)" json:"contractorName"`
	ContractorContact *string `gorm:"type:varchar(128)" json:"contractorContact"`
	ContractorPhone   *string `gorm:"type:varchar(32)" json:"contractorPhone"`
	ContractorEmail   *string `gorm:"type:varchar(128)" json:"contractorEmail"`
	ContractNumber    *string `gorm:"type:varchar(64)" json:"contractNumber"`
	ContractDate      *string `gorm:"type:varchar(32)" json:"contractDate"`
	ContractFile      *string `gorm:"type:varchar(256)" json:"contractFile"`
	ContractFileName  *string `gorm:"type:varchar(256)" json:"contractFileName"`
	ResultFile        *string `gorm:"type:varchar(256)" json:"resultFile"`
	ResultFileName    *string `gorm:"type:varchar(256)" json:"resultFileName"`

	StartDate   *string `gorm:"type:varchar(32)" json:"startDate"`
	EndDate     *string `gorm:"type:varchar(32)" json:"endDate"`
	Description *string `gorm:"type:text" json:"description"`
}

// DisplayName prefers the custom name and falls back to the catalog name.
func (i *Investigation) DisplayName() string {
	if i.CustomName != nil && *i.CustomName != "" {
		return *i.CustomName
	}
	if i.Standard != nil {
		return i.Standard.Name
	}
	return ""
}
