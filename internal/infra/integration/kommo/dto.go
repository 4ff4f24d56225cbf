package kommo

// CreateLeadInput describes a waitlist lead pushed to the CRM pipeline.
type CreateLeadInput struct {
	Name         string
	Email        string
	Phone        string
	Organization string
	JobTitle     string
	ToolsUsed    []string
	Score        int
	ReferralCode string
	Tags         []string
}

type embeddedIDs struct {
	Embedded struct {
		Leads []struct {
			ID int `json:"id"`
		} `json:"leads"`
		Contacts []struct {
			ID int `json:"id"`
		} `json:"contacts"`
	} `json:"_embedded"`
}
