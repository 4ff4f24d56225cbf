package whatsapp

type SendMessageInput struct {
	PhoneNumber  string   // E.164 without the plus sign, e.g. "15551234567"
	TemplateName string   // e.g. "waitlist_welcome"
	Language     string   // defaults to en_US
	Parameters   []string // body placeholders in order
}

type SendMessageResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Contacts []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts"`
	Error *ErrorResponse `json:"error"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Type    string `json:"type"`
}
