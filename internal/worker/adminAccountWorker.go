package worker

import (
	"encoding/json"
	"log"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/cradoe/indigene/internal/handler"
	"github.com/cradoe/indigene/internal/stream"
)

// AdminInvitationWorker delivers the generated temporary password to a
// newly invited official.
func (wk *Worker) AdminInvitationWorker() {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: adminInvitationGroupID,
		Topic:   stream.AdminInvitationTopic,
	})

	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}
	defer consumer.Close()

	for {
		select {
		case <-wk.Ctx.Done():
			log.Println("AdminInvitationWorker received cancellation signal, shutting down...")
			return
		default:
			event := consumer.Poll(100)
			switch e := event.(type) {
			case *kafka.Message:
				var invitationEvent handler.AdminInvitationEvent
				if err := json.Unmarshal(e.Value, &invitationEvent); err != nil {
					log.Printf("Error decoding admin-invitation event: %v", err)
					continue
				}

				wk.Helper.BackgroundTask(nil, func() error {
					emailData := wk.Helper.NewEmailData()
					emailData["Name"] = invitationEvent.Name
					emailData["Email"] = invitationEvent.Email
					emailData["Password"] = invitationEvent.Password

					err := wk.Mailer.Send(invitationEvent.Email, emailData, "admin-invitation.tmpl")
					if err != nil {
						log.Printf("Error sending admin invitation email: %v", err)
						return err
					}

					return nil
				})
			case kafka.Error:
				log.Printf("Error: %v\n", e)
			case *kafka.AssignedPartitions:
				consumer.Assign(e.Partitions)
			case *kafka.RevokedPartitions:
				consumer.Unassign()
			}
		}
	}
}

// ForgotPasswordWorker emails password reset codes. The OTP inside the
// event is the plaintext code; only its hash is ever stored.
func (wk *Worker) ForgotPasswordWorker() {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: forgotPasswordGroupID,
		Topic:   stream.ForgotPasswordTopic,
	})

	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}
	defer consumer.Close()

	for {
		select {
		case <-wk.Ctx.Done():
			log.Println("ForgotPasswordWorker received cancellation signal, shutting down...")
			return
		default:
			event := consumer.Poll(100)
			switch e := event.(type) {
			case *kafka.Message:
				var forgotEvent handler.ForgotPasswordEvent
				if err := json.Unmarshal(e.Value, &forgotEvent); err != nil {
					log.Printf("Error decoding forgot-password event: %v", err)
					continue
				}

				wk.Helper.BackgroundTask(nil, func() error {
					emailData := wk.Helper.NewEmailData()
					emailData["Name"] = forgotEvent.Name
					emailData["Otp"] = forgotEvent.Otp

					err := wk.Mailer.Send(forgotEvent.Email, emailData, "forgot-password.tmpl")
					if err != nil {
						log.Printf("Error sending forgot-password email: %v", err)
						return err
					}

					return nil
				})
			case kafka.Error:
				log.Printf("Error: %v\n", e)
			case *kafka.AssignedPartitions:
				consumer.Assign(e.Partitions)
			case *kafka.RevokedPartitions:
				consumer.Unassign()
			}
		}
	}
}
