package notify

import (
	"fmt"

	"water-delivery-api/config"
	"water-delivery-api/models"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"
)

// statusMail holds the fixed per-status email template
type statusMail struct {
	Subject string
	Body    string // fmt template, receives customer name and order id
}

var statusMails = map[models.OrderStatus]statusMail{
	models.StatusPending: {
		Subject: "Your order has been placed",
		Body:    "<h2>Thanks, %s!</h2><p>Your order #%d has been received and is waiting to be assigned to a delivery worker.</p>",
	},
	models.StatusAssigned: {
		Subject: "A delivery worker has been assigned",
		Body:    "<h2>Good news, %s!</h2><p>Order #%d now has a delivery worker and will be on its way soon.</p>",
	},
	models.StatusInTransit: {
		Subject: "Your water is on the way",
		Body:    "<h2>Heads up, %s!</h2><p>Order #%d is out for delivery.</p>",
	},
	models.StatusDelivered: {
		Subject: "Your order has been delivered",
		Body:    "<h2>Enjoy, %s!</h2><p>Order #%d has been delivered. Thank you for ordering with us.</p>",
	},
	models.StatusCancelled: {
		Subject: "Your order has been cancelled",
		Body:    "<h2>Hi %s,</h2><p>Order #%d has been cancelled. If this wasn't you, please contact support.</p>",
	},
}

// SendStatusEmail mails the customer the fixed template for the order's new
// status. Fire-and-forget: failures are logged, never surfaced.
func SendStatusEmail(customer models.User, orderID uint, status models.OrderStatus) {
	tpl, ok := statusMails[status]
	if !ok {
		return
	}
	body := fmt.Sprintf(tpl.Body, customer.Name, orderID)
	go func() {
		if err := sendMail(customer.Email, tpl.Subject, body); err != nil {
			log.Warn().Err(err).Str("to", customer.Email).Uint("order_id", orderID).
				Msg("status email failed")
		}
	}()
}

// SendResetEmail mails a password reset token to the user
func SendResetEmail(user models.User, token string) {
	body := fmt.Sprintf(
		"<h2>Hi %s,</h2><p>Use this token to reset your password: <b>%s</b></p><p>It expires in one hour.</p>",
		user.Name, token)
	go func() {
		if err := sendMail(user.Email, "Password reset", body); err != nil {
			log.Warn().Err(err).Str("to", user.Email).Msg("reset email failed")
		}
	}()
}

func sendMail(to, subject, htmlBody string) error {
	if config.Mail.Host == "" {
		log.Debug().Str("to", to).Str("subject", subject).Msg("smtp not configured, mail skipped")
		return nil
	}
	m := gomail.NewMessage()
	m.SetHeader("From", config.Mail.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	d := gomail.NewDialer(config.Mail.Host, config.Mail.Port, config.Mail.User, config.Mail.Pass)
	return d.DialAndSend(m)
}
