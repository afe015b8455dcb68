// Package mailer sends the outbound notification mail over SMTP.
package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"lifelink-api-server/internal/models"
)

// Mailer implements the service notification boundary with gomail. Each send
// dials fresh; broadcast volume is low enough that connection reuse is not
// worth the bookkeeping.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func New(host string, port int, username, password, from string) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (m *Mailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.host, m.port, m.username, m.password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func (m *Mailer) EmergencyBroadcast(donor, org models.User, req models.EmergencyRequest) error {
	subject := fmt.Sprintf("URGENT: %s blood needed in %s", req.BloodGroup, req.City)
	body := fmt.Sprintf(
		"Hello %s,\n\n%s urgently needs %s blood (%d ml) in %s.\n\nReason: %s\nUrgency: %s\nLocation: %s\nContact: %s, %s\n\nIf you can donate, please respond through your LifeLink dashboard or contact the organisation directly.\n\nThank you,\nThe LifeLink Team",
		donor.Name, org.OrganisationName, req.BloodGroup, req.QuantityML, req.City,
		req.Reason, req.Urgency, req.Location, req.ContactPerson, req.ContactPhone,
	)
	return m.send(donor.Email, subject, body)
}

func (m *Mailer) EmergencyFulfilled(donor, org models.User, req models.EmergencyRequest) error {
	subject := fmt.Sprintf("Resolved: %s blood call in %s", req.BloodGroup, req.City)
	body := fmt.Sprintf(
		"Hello %s,\n\nThe urgent call for %s blood from %s has been fulfilled. Thank you for standing by.\n\nThe LifeLink Team",
		donor.Name, req.BloodGroup, org.OrganisationName,
	)
	return m.send(donor.Email, subject, body)
}

func (m *Mailer) CampAnnouncement(donor models.User, camp models.Camp) error {
	subject := fmt.Sprintf("Blood donation camp in %s: %s", camp.City, camp.Name)
	body := fmt.Sprintf(
		"Hello %s,\n\nA donation camp collecting your blood group is coming up.\n\n%s\n%s\nDate: %s, %s - %s\nLocation: %s, %s\nContact: %s, %s\n\nWe hope to see you there.\n\nThe LifeLink Team",
		donor.Name, camp.Name, camp.Description,
		camp.Date.Format("Monday, 2 January 2006"), camp.StartTime, camp.EndTime,
		camp.Location, camp.City, camp.ContactPerson, camp.ContactPhone,
	)
	return m.send(donor.Email, subject, body)
}

func (m *Mailer) DonorRequestReceived(org, donor models.User, req models.DonorRequest) error {
	subject := fmt.Sprintf("New donation offer %s", req.Code)
	body := fmt.Sprintf(
		"Hello %s,\n\n%s has offered to donate %s blood.\n\nRequest code: %s\n\nPlease review the offer and schedule an appointment from your dashboard.\n\nThe LifeLink Team",
		org.OrganisationName, donor.Name, req.BloodGroup, req.Code,
	)
	return m.send(org.Email, subject, body)
}

func (m *Mailer) DonorRequestDecided(donor, org models.User, req models.DonorRequest) error {
	subject := fmt.Sprintf("Update on your donation offer %s", req.Code)
	var body string
	if req.AppointmentDate != nil {
		body = fmt.Sprintf(
			"Hello %s,\n\n%s accepted your donation offer.\n\nAppointment: %s at %s\nLocation: %s\n\n%s\n\nThe LifeLink Team",
			donor.Name, org.OrganisationName,
			req.AppointmentDate.Format("Monday, 2 January 2006"), req.AppointmentTime,
			req.Location, req.ResponseNotes,
		)
	} else {
		body = fmt.Sprintf(
			"Hello %s,\n\n%s could not accept your donation offer at this time.\n\nNote: %s\n\nThe LifeLink Team",
			donor.Name, org.OrganisationName, req.ResponseNotes,
		)
	}
	return m.send(donor.Email, subject, body)
}
