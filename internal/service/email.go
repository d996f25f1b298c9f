package service

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"librental-backend/internal/domain"
)

type emailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmailService(host string, port int, username, password, from string) EmailService {
	return &emailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *emailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}

func (s *emailService) SendRequestSubmittedNotification(ctx context.Context, managerEmail, facultyName, studentName, bookTitle string, reqType domain.RequestType) error {
	subject := fmt.Sprintf("New %s request pending approval", reqType)
	body := fmt.Sprintf("Hello,\n\n%s has submitted a %s request for '%s' on behalf of %s.\n\nPlease review it in the dashboard.\n\nBest regards,\nThe Library Team", facultyName, reqType, bookTitle, studentName)
	return s.send(managerEmail, subject, body)
}

func (s *emailService) SendRequestApprovedNotification(ctx context.Context, facultyEmail, studentName, bookTitle string, reqType domain.RequestType, notes string) error {
	subject := fmt.Sprintf("Your %s request was approved", reqType)
	body := fmt.Sprintf("Hello,\n\nYour %s request for '%s' (student: %s) has been approved.", reqType, bookTitle, studentName)
	if notes != "" {
		body += fmt.Sprintf("\n\nManager notes: %s", notes)
	}
	body += "\n\nBest regards,\nThe Library Team"
	return s.send(facultyEmail, subject, body)
}

func (s *emailService) SendRequestRejectedNotification(ctx context.Context, facultyEmail, studentName, bookTitle string, reqType domain.RequestType, notes string) error {
	subject := fmt.Sprintf("Your %s request was rejected", reqType)
	body := fmt.Sprintf("Hello,\n\nYour %s request for '%s' (student: %s) has been rejected.", reqType, bookTitle, studentName)
	if notes != "" {
		body += fmt.Sprintf("\n\nManager notes: %s", notes)
	}
	body += "\n\nBest regards,\nThe Library Team"
	return s.send(facultyEmail, subject, body)
}

func (s *emailService) SendRentalAssignedNotification(ctx context.Context, userEmail, userName, bookTitle string, dueOn time.Time) error {
	subject := "Book issued to you"
	body := fmt.Sprintf("Hello %s,\n\n'%s' has been issued to you. It is due on %s.\n\nBest regards,\nThe Library Team", userName, bookTitle, dueOn.Format("2006-01-02"))
	return s.send(userEmail, subject, body)
}

func (s *emailService) SendReturnConfirmation(ctx context.Context, userEmail, userName, bookTitle string) error {
	subject := "Book return confirmed"
	body := fmt.Sprintf("Hello %s,\n\nYour return of '%s' has been recorded.\n\nBest regards,\nThe Library Team", userName, bookTitle)
	return s.send(userEmail, subject, body)
}

func (s *emailService) SendDueSoonReminder(ctx context.Context, userEmail, userName, bookTitle string, dueOn time.Time) error {
	subject := "Book due soon"
	body := fmt.Sprintf("Hello %s,\n\n'%s' is due on %s. Please return it on time to avoid penalties.\n\nBest regards,\nThe Library Team", userName, bookTitle, dueOn.Format("2006-01-02"))
	return s.send(userEmail, subject, body)
}

func (s *emailService) SendOverdueReminder(ctx context.Context, userEmail, userName, bookTitle string, dueOn time.Time) error {
	subject := "Book overdue"
	body := fmt.Sprintf("Hello %s,\n\n'%s' was due on %s and has not been returned. Please return it as soon as possible.\n\nBest regards,\nThe Library Team", userName, bookTitle, dueOn.Format("2006-01-02"))
	return s.send(userEmail, subject, body)
}
