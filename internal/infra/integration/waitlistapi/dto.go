package waitlistapi

type joinResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    *struct {
		ReferralCode string `json:"referralCode,omitempty"`
	} `json:"data,omitempty"`
}

type errorResponse struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type referralResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    struct {
		ReferralCode string `json:"referralCode"`
		Referrals    int    `json:"referrals"`
	} `json:"data"`
}

// JoinResult is what the backend answered to a successful submission.
type JoinResult struct {
	Message string
	// ReferralCode is empty when the backend did not issue one.
	ReferralCode string
	Attempts     int
}
