package auth

import (
	"fmt"
	"net/smtp"

	"contest-app/config"
)

func SendOtpEmail(to string, otp string) error {
	subject := "Your password reset code"
	body := fmt.Sprintf("Your one-time code is: %s\n\nIt expires in 10 minutes.", otp)
	return sendMail(to, subject, body)
}

func SendWinnerEmail(to, firstName, productName string) error {
	subject := "Congratulations! You won this month's contest"
	body := fmt.Sprintf("Hi %s,\n\nYour vote for %s made you this month's winner. We'll be in touch with the details.\n", firstName, productName)
	return sendMail(to, subject, body)
}

func sendMail(to, subject, body string) error {
	from := config.SMTP_FROM
	password := config.SMTP_PASSWORD
	host := config.SMTP_HOST
	port := config.SMTP_PORT

	if host == "" || from == "" {
		// Local/dev setup without SMTP: log instead of failing the request.
		fmt.Printf("mail to %s: %s\n%s\n", to, subject, body)
		return nil
	}

	auth := smtp.PlainAuth("", from, password, host)

	message := []byte("Subject: " + subject + "\r\n" +
		"From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body + "\r\n")

	err := smtp.SendMail(host+":"+port, auth, from, []string{to}, message)
	if err != nil {
		fmt.Println("SMTP error:", err)
	}
	return err
}
