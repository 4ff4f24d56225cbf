package mail

type WelcomeEmailData struct {
	Name         string
	ProductName  string
	ReferralLink string
}

type DesignPartnerEmailData struct {
	Name         string
	ProductName  string
	Organization string
}

type ReminderEmailData struct {
	Name         string
	ProductName  string
	ReferralLink string
	Referrals    int
}

type EmailSender struct {
	From        string
	ProductName string
	dialer      dialer
}
