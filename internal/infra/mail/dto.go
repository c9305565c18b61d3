package mail

import (
	"github.com/xavierca1/presale-funnel/internal/entity"
	"gopkg.in/gomail.v2"
)

type LeadConfirmationData struct {
	FirstName   string
	Phone       string
	ProjectName string
	ScheduleURL string
}

type OperatorAlertData struct {
	LeadID      string
	FullName    string
	Email       string
	Phone       string
	BuyerType   string
	LeadSource  string
	Timeline    string
	Budget      string
	Message     string
	UTMCampaign string
	LandingPage string
}

func newOperatorAlertData(l *entity.Lead) OperatorAlertData {
	return OperatorAlertData{
		LeadID:      l.ID,
		FullName:    l.FullName(),
		Email:       l.Email,
		Phone:       l.Phone,
		BuyerType:   string(l.BuyerType),
		LeadSource:  string(l.LeadSource),
		Timeline:    deref(l.Timeline),
		Budget:      deref(l.Budget),
		Message:     deref(l.Message),
		UTMCampaign: deref(l.UTMCampaign),
		LandingPage: deref(l.LandingPage),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type EmailSender struct {
	Host         string
	Port         int
	User         string
	Password     string
	From         string
	OperatorAddr string
	ProjectName  string
	ScheduleURL  string

	send func(m *gomail.Message) error
}
